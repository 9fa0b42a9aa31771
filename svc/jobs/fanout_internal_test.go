package jobs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pardaaf/backoffice/pkg/catalog"
	"github.com/pardaaf/backoffice/pkg/tenantctx"
)

type fakeDirectory struct {
	mu        sync.Mutex
	databases []string
	galleries []catalog.Gallery
	upserts   []catalog.Rate
	listErr   error
}

func (d *fakeDirectory) Galleries(context.Context) ([]catalog.Gallery, error) {
	return d.galleries, d.listErr
}

func (d *fakeDirectory) Databases(context.Context) ([]string, error) {
	return d.databases, d.listErr
}

func (d *fakeDirectory) UpsertRate(_ context.Context, r catalog.Rate) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.upserts = append(d.upserts, r)
	return nil
}

func TestEachTenantContinuesPastFailures(t *testing.T) {
	t.Parallel()

	directory := &fakeDirectory{databases: []string{"t1", "t2", "t3"}}
	svc := New(Deps{Catalog: directory})

	var visited []string
	err := svc.eachTenant(context.Background(), "test", func(ctx context.Context, dbName string) error {
		bound, err := tenantctx.Database(ctx)
		require.NoError(t, err)
		assert.Equal(t, dbName, bound)

		visited = append(visited, dbName)
		if dbName == "t2" {
			return errors.New("injected failure")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2", "t3"}, visited)
}

func TestEachTenantPropagatesEnumerationFailure(t *testing.T) {
	t.Parallel()

	directory := &fakeDirectory{listErr: errors.New("catalog down")}
	svc := New(Deps{Catalog: directory})

	err := svc.eachTenant(context.Background(), "test", func(context.Context, string) error {
		t.Fatal("body must not run when enumeration fails")
		return nil
	})
	require.Error(t, err)
}

func TestFxFetchAdjustsAFNOnly(t *testing.T) {
	t.Parallel()

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-app-id", r.URL.Query().Get("app_id"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base":"USD","rates":{"AFN":70.0,"EUR":0.9}}`))
	}))
	defer provider.Close()

	directory := &fakeDirectory{}
	svc := New(Deps{
		Catalog: directory,
		Fx: FxConfig{
			AppID:    "test-app-id",
			Endpoint: provider.URL,
			Timeout:  5 * time.Second,
			Quotes:   []string{"AFN", "EUR", "PKR"},
		},
	})

	require.NoError(t, svc.runFxFetch(context.Background()))

	require.Len(t, directory.upserts, 2)
	byQuote := map[string]float64{}
	for _, r := range directory.upserts {
		assert.Equal(t, "USD", r.Base)
		byQuote[r.Quote] = r.Rate
	}
	assert.InDelta(t, 70.0*0.975, byQuote["AFN"], 0.0001)
	assert.InDelta(t, 0.9, byQuote["EUR"], 0.0001)
}

func TestFxFetchMissingAFNNotFatal(t *testing.T) {
	t.Parallel()

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base":"USD","rates":{"EUR":0.9}}`))
	}))
	defer provider.Close()

	directory := &fakeDirectory{}
	svc := New(Deps{
		Catalog: directory,
		Fx: FxConfig{
			AppID:    "x",
			Endpoint: provider.URL,
			Timeout:  5 * time.Second,
			Quotes:   []string{"AFN", "EUR"},
		},
	})

	require.NoError(t, svc.runFxFetch(context.Background()))
	require.Len(t, directory.upserts, 1)
	assert.Equal(t, "EUR", directory.upserts[0].Quote)
}

func TestFxFetchProviderError(t *testing.T) {
	t.Parallel()

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer provider.Close()

	svc := New(Deps{
		Catalog: &fakeDirectory{},
		Fx:      FxConfig{AppID: "x", Endpoint: provider.URL, Timeout: 5 * time.Second},
	})
	require.Error(t, svc.runFxFetch(context.Background()))
}
