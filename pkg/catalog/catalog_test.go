package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pardaaf/backoffice/pkg/catalog"
	"github.com/pardaaf/backoffice/pkg/dbpool"
)

// Codename validation must reject anything that is not the short lowercase
// login identifier before the registry is ever consulted.
func TestResolveCodenameValidation(t *testing.T) {
	t.Parallel()

	cfg := dbpool.Config{
		Host: "localhost", Port: 1, // unreachable; validation fires first
		User: "u", Password: "p", SSLMode: "disable",
		MinConns: 1, MaxConns: 2, AcquireTimeout: 50 * time.Millisecond,
	}
	c := catalog.New(dbpool.NewRegistry(cfg, nil))

	bad := []string{
		"",
		"A",
		"Gallery",
		"gallery a",
		"gallery;drop table galleries",
		"-lead",
		"a", // too short: one char cannot match two-part pattern
	}
	for _, codename := range bad {
		_, err := c.Resolve(context.Background(), codename)
		require.ErrorIs(t, err, catalog.ErrInvalidCodename, "codename %q", codename)
	}
}

// A well-formed codename passes validation and proceeds to the database,
// which is unreachable in this test and reports unavailability.
func TestResolveUnreachableDatabase(t *testing.T) {
	t.Parallel()

	cfg := dbpool.Config{
		Host: "localhost", Port: 1,
		User: "u", Password: "p", SSLMode: "disable",
		MinConns: 1, MaxConns: 2, AcquireTimeout: 50 * time.Millisecond,
	}
	c := catalog.New(dbpool.NewRegistry(cfg, nil))

	_, err := c.Resolve(context.Background(), "gallerya")
	require.ErrorIs(t, err, dbpool.ErrUnavailable)
}
