package bot_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pardaaf/backoffice/pkg/botstate"
	"github.com/pardaaf/backoffice/pkg/catalog"
	"github.com/pardaaf/backoffice/pkg/dbpool"
	"github.com/pardaaf/backoffice/svc/bot"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []string
}

func (r *recordingSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		r.sent = append(r.sent, m.Text)
	}
	return tgbotapi.Message{}, nil
}

func (r *recordingSender) last(t *testing.T) string {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.sent)
	return r.sent[len(r.sent)-1]
}

type stubDirectory struct{}

func (stubDirectory) Resolve(_ context.Context, codename string) (catalog.Gallery, error) {
	if codename == "gallery_a" {
		return catalog.Gallery{Codename: "gallery_a", DBName: "pardaaf_gallery_a", Name: "Gallery A"}, nil
	}
	return catalog.Gallery{}, catalog.ErrGalleryNotFound
}

func newTestBot(t *testing.T) (*bot.Service, *recordingSender, *botstate.Store) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	states := botstate.New(client)

	// Port 1 is never a Postgres server; DB paths surface as unavailable.
	registry := dbpool.NewRegistry(dbpool.Config{
		Host: "127.0.0.1", Port: 1, User: "x", Password: "x", SSLMode: "disable",
		MinConns: 0, MaxConns: 1, AcquireTimeout: 200 * time.Millisecond,
	}, nil)
	t.Cleanup(registry.CloseAll)

	sender := &recordingSender{}
	return bot.New(sender, stubDirectory{}, registry, states, nil), sender, states
}

func command(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: chatID},
		Entities: []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: len(text)},
		},
	}}
}

func plain(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: chatID},
	}}
}

func TestCommandsSetDialogueState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cases := []struct {
		command string
		state   botstate.State
	}{
		{"/link", botstate.AwaitingUsername},
		{"/checkbillstatus", botstate.AwaitingBillCheck},
		{"/notify", botstate.AwaitingBillNumber},
	}
	for i, tc := range cases {
		t.Run(tc.command, func(t *testing.T) {
			t.Parallel()
			svc, sender, states := newTestBot(t)
			chatID := int64(100 + i)

			svc.HandleUpdate(ctx, command(chatID, tc.command))

			state, err := states.Get(ctx, chatID)
			require.NoError(t, err)
			assert.Equal(t, tc.state, state)
			assert.NotEmpty(t, sender.last(t))
		})
	}
}

func TestStartResetsDialogue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, sender, states := newTestBot(t)

	svc.HandleUpdate(ctx, command(7, "/link"))
	svc.HandleUpdate(ctx, command(7, "/start"))

	state, err := states.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, botstate.Idle, state)
	assert.Contains(t, sender.last(t), "Welcome")
}

func TestIdleTextShowsHelp(t *testing.T) {
	t.Parallel()
	svc, sender, _ := newTestBot(t)

	svc.HandleUpdate(context.Background(), plain(8, "hello?"))
	assert.Contains(t, sender.last(t), "/link")
}

func TestLinkRejectsMalformedReference(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, sender, states := newTestBot(t)

	svc.HandleUpdate(ctx, command(9, "/link"))
	svc.HandleUpdate(ctx, plain(9, "no-at-sign"))

	assert.Contains(t, sender.last(t), "value@gallery")

	// A malformed reference keeps the dialogue open for a retry.
	state, err := states.Get(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, botstate.AwaitingUsername, state)
}

func TestLinkUnknownGallery(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, sender, _ := newTestBot(t)

	svc.HandleUpdate(ctx, command(10, "/link"))
	svc.HandleUpdate(ctx, plain(10, "basir@no_such_gallery"))

	assert.Contains(t, sender.last(t), "no_such_gallery")
}

func TestLinkBackendUnreachable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, sender, _ := newTestBot(t)

	svc.HandleUpdate(ctx, command(11, "/link"))
	svc.HandleUpdate(ctx, plain(11, "basir@gallery_a"))

	assert.Contains(t, sender.last(t), "not reachable")
}

func TestUpdateWithoutMessageIsIgnored(t *testing.T) {
	t.Parallel()
	svc, sender, _ := newTestBot(t)

	svc.HandleUpdate(context.Background(), tgbotapi.Update{})

	sender.mu.Lock()
	defer sender.mu.Unlock()
	assert.Empty(t, sender.sent)
}
