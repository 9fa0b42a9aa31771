package catalog

import (
	"context"
	"errors"
	"regexp"

	"github.com/jackc/pgx/v5"

	"github.com/pardaaf/backoffice/pkg/dbpool"
	"github.com/pardaaf/backoffice/pkg/tenantctx"
)

// codenameRE matches the short lowercase identifier users type at login.
var codenameRE = regexp.MustCompile(`^[a-z][a-z0-9_]{1,31}$`)

// Gallery is one tenant: a row of the master gallery table.
type Gallery struct {
	Codename   string
	DBName     string
	Name       string
	AdminEmail string
	ChatID     int64
}

// Catalog reads the master database through the shared pool registry.
type Catalog struct {
	registry *dbpool.Registry
}

// New creates a catalog backed by the registry's main-database pool.
func New(registry *dbpool.Registry) *Catalog {
	return &Catalog{registry: registry}
}

// mainCtx rebinds the context to the main database regardless of the
// caller's tenant binding. Catalog reads never touch tenant databases.
func mainCtx(ctx context.Context) context.Context {
	return tenantctx.WithDatabase(ctx, dbpool.MainDatabase)
}

// Resolve maps a login codename to its gallery row. The codename shape is
// validated before the query, so user input never reaches the registry as
// a pool key.
func (c *Catalog) Resolve(ctx context.Context, codename string) (Gallery, error) {
	if !codenameRE.MatchString(codename) {
		return Gallery{}, ErrInvalidCodename
	}

	conn, err := c.registry.Acquire(mainCtx(ctx))
	if err != nil {
		return Gallery{}, err
	}
	defer conn.Release()

	var g Gallery
	err = conn.QueryRow(ctx,
		`SELECT codename, db_name, name, admin_email, COALESCE(chat_id, 0)
		   FROM galleries WHERE codename = $1`, codename).
		Scan(&g.Codename, &g.DBName, &g.Name, &g.AdminEmail, &g.ChatID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Gallery{}, ErrGalleryNotFound
	}
	if err != nil {
		return Gallery{}, err
	}
	return g, nil
}

// Galleries lists every tenant row, ordered by codename for deterministic
// fan-out runs.
func (c *Catalog) Galleries(ctx context.Context) ([]Gallery, error) {
	conn, err := c.registry.Acquire(mainCtx(ctx))
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx,
		`SELECT codename, db_name, name, admin_email, COALESCE(chat_id, 0)
		   FROM galleries ORDER BY codename`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var galleries []Gallery
	for rows.Next() {
		var g Gallery
		if err := rows.Scan(&g.Codename, &g.DBName, &g.Name, &g.AdminEmail, &g.ChatID); err != nil {
			return nil, err
		}
		galleries = append(galleries, g)
	}
	return galleries, rows.Err()
}

// Databases returns the db_name list for fan-out jobs.
func (c *Catalog) Databases(ctx context.Context) ([]string, error) {
	galleries, err := c.Galleries(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(galleries))
	for _, g := range galleries {
		names = append(names, g.DBName)
	}
	return names, nil
}
