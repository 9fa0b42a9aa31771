package jobs

import (
	"context"
	"log/slog"

	"github.com/pardaaf/backoffice/pkg/dbpool"
	"github.com/pardaaf/backoffice/pkg/tenantctx"
)

// eachTenant runs body once per tenant database, sequentially. The body
// receives a context bound to its tenant; a failing tenant is logged and
// the run continues. The enumeration itself happens under the main
// binding, and derived contexts guarantee the main binding is intact when
// eachTenant returns.
func (s *Service) eachTenant(ctx context.Context, job string, body func(ctx context.Context, dbName string) error) error {
	mainCtx := tenantctx.WithDatabase(ctx, dbpool.MainDatabase)

	dbNames, err := s.catalog.Databases(mainCtx)
	if err != nil {
		return err
	}

	for _, dbName := range dbNames {
		tenantCtx := tenantctx.WithDatabase(mainCtx, dbName)
		if err := body(tenantCtx, dbName); err != nil {
			s.logger.ErrorContext(tenantCtx, "tenant job body failed",
				slog.String("job", job),
				slog.String("db_name", dbName),
				slog.String("error", err.Error()))
			continue
		}
		s.logger.InfoContext(tenantCtx, "tenant job body finished",
			slog.String("job", job),
			slog.String("db_name", dbName))
	}
	return nil
}
