package mailer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pardaaf/backoffice/pkg/mailer"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("dev mode needs no relay credentials", func(t *testing.T) {
		t.Parallel()
		sender, err := mailer.New(mailer.Config{DevMode: true}, nil)
		require.NoError(t, err)
		assert.IsType(t, &mailer.DevSender{}, sender)

		require.NoError(t, sender.SendEmail(context.Background(), mailer.SendEmailParams{
			SendTo:  "admin@pardaaf.example",
			Subject: "daily salaries",
		}))
	})

	t.Run("relay mode rejects incomplete config", func(t *testing.T) {
		t.Parallel()
		_, err := mailer.New(mailer.Config{Host: "smtp.example.com"}, nil)
		require.ErrorIs(t, err, mailer.ErrInvalidConfig)
	})

	t.Run("relay mode builds smtp sender", func(t *testing.T) {
		t.Parallel()
		sender, err := mailer.New(mailer.Config{
			Host:      "smtp.example.com",
			Username:  "pardaaf",
			Password:  "secret",
			FromEmail: "no-reply@pardaaf.example",
		}, nil)
		require.NoError(t, err)
		assert.IsType(t, &mailer.SMTPSender{}, sender)
	})
}
