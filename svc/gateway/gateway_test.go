package gateway_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pardaaf/backoffice/pkg/catalog"
	"github.com/pardaaf/backoffice/pkg/dbpool"
	"github.com/pardaaf/backoffice/pkg/printqueue"
	"github.com/pardaaf/backoffice/pkg/token"
	"github.com/pardaaf/backoffice/svc/gateway"
)

type stubDirectory struct {
	galleries map[string]catalog.Gallery
	rates     []catalog.Rate
}

func (d stubDirectory) Resolve(_ context.Context, codename string) (catalog.Gallery, error) {
	if g, ok := d.galleries[codename]; ok {
		return g, nil
	}
	return catalog.Gallery{}, catalog.ErrGalleryNotFound
}

func (d stubDirectory) LatestRates(_ context.Context) ([]catalog.Rate, error) {
	return d.rates, nil
}

// failingDirectory simulates a main-database outage: every resolution
// fails with the configured error.
type failingDirectory struct {
	stubDirectory
	resolveErr error
}

func (d failingDirectory) Resolve(_ context.Context, _ string) (catalog.Gallery, error) {
	return catalog.Gallery{}, d.resolveErr
}

// countingDirectory counts how many resolutions reach the catalog.
type countingDirectory struct {
	stubDirectory
	resolves int
}

func (d *countingDirectory) Resolve(ctx context.Context, codename string) (catalog.Gallery, error) {
	d.resolves++
	return d.stubDirectory.Resolve(ctx, codename)
}

func testGalleries() stubDirectory {
	return stubDirectory{
		galleries: map[string]catalog.Gallery{
			"gallery_a": {Codename: "gallery_a", DBName: "pardaaf_gallery_a"},
		},
		rates: []catalog.Rate{
			{Base: "USD", Quote: "AFN", Rate: 68.5, FetchedAt: time.Now()},
		},
	}
}

func newTestGateway(t *testing.T) (*gateway.Service, *token.Service) {
	t.Helper()
	return newTestGatewayWith(t, testGalleries())
}

func newTestGatewayWith(t *testing.T, dir gateway.Directory) (*gateway.Service, *token.Service) {
	t.Helper()

	tokens, err := token.New(token.Config{Secret: "test-secret"})
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := gateway.New(gateway.Config{RequestTimeout: 5 * time.Second}, gateway.Deps{
		Catalog: dir,
		Tokens:  tokens,
		Queue:   printqueue.New(client),
	})
	return svc, tokens
}

func issueToken(t *testing.T, tokens *token.Service, level int) string {
	t.Helper()
	pair, err := tokens.Issue(token.Principal{
		UserID: "7", Username: "basir", Level: level, Tenant: "gallery_a",
	})
	require.NoError(t, err)
	return pair.AccessToken
}

func doJSON(t *testing.T, h http.Handler, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware(t *testing.T) {
	t.Parallel()

	svc, tokens := newTestGateway(t)
	router := svc.Router()

	t.Run("missing token", func(t *testing.T) {
		t.Parallel()
		rec := doJSON(t, router, http.MethodPost, "/is-token-valid", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		t.Parallel()
		rec := doJSON(t, router, http.MethodPost, "/is-token-valid", "not.a.token", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		t.Parallel()
		rec := doJSON(t, router, http.MethodPost, "/is-token-valid", issueToken(t, tokens, 1), nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"result": true}`, rec.Body.String())
	})

	t.Run("insufficient level", func(t *testing.T) {
		t.Parallel()
		rec := doJSON(t, router, http.MethodPost, "/add-print-job", issueToken(t, tokens, 1),
			map[string]any{"fileName": "a.pdf", "payload": []byte{1}})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unknown tenant in token", func(t *testing.T) {
		t.Parallel()
		pair, err := tokens.Issue(token.Principal{
			UserID: "1", Username: "ghost", Level: 5, Tenant: "no_such_gallery",
		})
		require.NoError(t, err)
		rec := doJSON(t, router, http.MethodPost, "/is-token-valid", pair.AccessToken, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()
		shortLived, err := token.New(token.Config{Secret: "test-secret", AccessTTL: -time.Minute})
		require.NoError(t, err)
		pair, err := shortLived.Issue(token.Principal{
			UserID: "7", Username: "basir", Level: 3, Tenant: "gallery_a",
		})
		require.NoError(t, err)
		rec := doJSON(t, router, http.MethodPost, "/is-token-valid", pair.AccessToken, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthCatalogOutage(t *testing.T) {
	t.Parallel()

	svc, tokens := newTestGatewayWith(t, failingDirectory{resolveErr: dbpool.ErrUnavailable})
	router := svc.Router()

	t.Run("middleware reports unavailability, not a bad token", func(t *testing.T) {
		t.Parallel()
		rec := doJSON(t, router, http.MethodPost, "/is-token-valid", issueToken(t, tokens, 5), nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("refresh reports unavailability, not a bad token", func(t *testing.T) {
		t.Parallel()
		pair, err := tokens.Issue(token.Principal{
			UserID: "7", Username: "basir", Level: 3, Tenant: "gallery_a",
		})
		require.NoError(t, err)
		rec := doJSON(t, router, http.MethodPost, "/refresh-token", "",
			map[string]string{"refreshToken": pair.RefreshToken})
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestTenantResolutionCached(t *testing.T) {
	t.Parallel()

	dir := &countingDirectory{stubDirectory: testGalleries()}
	svc, tokens := newTestGatewayWith(t, dir)
	router := svc.Router()
	bearer := issueToken(t, tokens, 1)

	for range 3 {
		rec := doJSON(t, router, http.MethodPost, "/is-token-valid", bearer, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, 1, dir.resolves)
}

func TestLoginValidation(t *testing.T) {
	t.Parallel()

	svc, _ := newTestGateway(t)
	router := svc.Router()

	t.Run("missing fields", func(t *testing.T) {
		t.Parallel()
		rec := doJSON(t, router, http.MethodPost, "/login", "",
			map[string]string{"tenant": "gallery_a"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown tenant", func(t *testing.T) {
		t.Parallel()
		rec := doJSON(t, router, http.MethodPost, "/login", "",
			map[string]string{"tenant": "nope_gallery", "username": "basir", "password": "pw"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid codename shape", func(t *testing.T) {
		t.Parallel()
		rec := doJSON(t, router, http.MethodPost, "/login", "",
			map[string]string{"tenant": "Not A Codename!", "username": "basir", "password": "pw"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestPrintJobRoutes(t *testing.T) {
	t.Parallel()

	svc, tokens := newTestGateway(t)
	router := svc.Router()
	bearer := issueToken(t, tokens, 2)

	rec := doJSON(t, router, http.MethodPost, "/add-print-job", bearer,
		map[string]any{"fileName": "invoice-1.pdf", "payload": []byte{0x01}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id": 1}`, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/add-print-job", bearer,
		map[string]any{"fileName": "invoice-2.pdf", "payload": []byte{0x02}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id": 2}`, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/get-print-jobs?since=0", bearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var polled struct {
		Jobs []printqueue.Job `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &polled))
	require.Len(t, polled.Jobs, 2)
	assert.Equal(t, "invoice-1.pdf", polled.Jobs[0].FileName)
	assert.Equal(t, "invoice-2.pdf", polled.Jobs[1].FileName)

	rec = doJSON(t, router, http.MethodPost, "/mark-printed", bearer,
		map[string]any{"jobId": 1})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/get-print-jobs", bearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &polled))
	require.Len(t, polled.Jobs, 1)
	assert.Equal(t, int64(2), polled.Jobs[0].ID)

	t.Run("bad since", func(t *testing.T) {
		t.Parallel()
		rec := doJSON(t, router, http.MethodGet, "/get-print-jobs?since=abc", bearer, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing file name", func(t *testing.T) {
		t.Parallel()
		rec := doJSON(t, router, http.MethodPost, "/add-print-job", bearer,
			map[string]any{"payload": []byte{0x01}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLatestRates(t *testing.T) {
	t.Parallel()

	svc, _ := newTestGateway(t)
	rec := doJSON(t, svc.Router(), http.MethodGet, "/fx/latest", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var rates []catalog.Rate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rates))
	require.Len(t, rates, 1)
	assert.Equal(t, "AFN", rates[0].Quote)
	assert.InDelta(t, 68.5, rates[0].Rate, 0.001)
}

func TestTelegramWebhookAlwaysAcks(t *testing.T) {
	t.Parallel()

	svc, _ := newTestGateway(t)
	router := svc.Router()

	req := httptest.NewRequest(http.MethodPost, "/telegram-webhook", bytes.NewBufferString("{broken"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
