package catalog

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/pardaaf/backoffice/pkg/dbpool"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies the main-database schema. Tenant database schemas are
// owned by their stored procedures and are never migrated from here.
func Migrate(ctx context.Context, registry *dbpool.Registry, log *slog.Logger) error {
	pool, err := registry.PoolFor(ctx, dbpool.MainDatabase)
	if err != nil {
		return errors.Join(ErrMigrationsFail, err)
	}

	// goose expects a database/sql handle; bridge the pgx pool.
	db := stdlib.OpenDBFromPool(pool)
	defer func() { _ = db.Close() }()

	goose.SetLogger(gooseSlog{log: log})
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrMigrationsFail, err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return errors.Join(ErrMigrationsFail, err)
	}
	return nil
}

// gooseSlog bridges goose's Printf-style logging onto slog.
type gooseSlog struct {
	log *slog.Logger
}

func (g gooseSlog) Fatalf(format string, v ...any) {
	g.log.Error(fmt.Sprintf(format, v...))
}

func (g gooseSlog) Printf(format string, v ...any) {
	g.log.Info(fmt.Sprintf(format, v...))
}
