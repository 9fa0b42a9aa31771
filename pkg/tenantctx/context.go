package tenantctx

import (
	"context"
	"log/slog"
)

// contextKey is a private type to prevent collisions with other context keys.
type contextKey struct{}

// WithDatabase binds a tenant database name to the context. Every request
// and every fan-out iteration gets its own derived context, so bindings
// never leak across concurrent tasks.
func WithDatabase(ctx context.Context, dbName string) context.Context {
	return context.WithValue(ctx, contextKey{}, dbName)
}

// Database returns the database name bound to the context.
// Returns ErrNotBound if no binding is present.
func Database(ctx context.Context) (string, error) {
	dbName, ok := ctx.Value(contextKey{}).(string)
	if !ok || dbName == "" {
		return "", ErrNotBound
	}
	return dbName, nil
}

// MustDatabase returns the bound database name or panics.
// Use only in handlers that run behind the auth middleware,
// which guarantees a binding before dispatch.
func MustDatabase(ctx context.Context) string {
	dbName, err := Database(ctx)
	if err != nil {
		panic("tenantctx: no database in context")
	}
	return dbName
}

// LoggerExtractor returns a logger context extractor that annotates every
// log record with the bound tenant database.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if dbName, err := Database(ctx); err == nil {
			return slog.String("tenant_db", dbName), true
		}
		return slog.Attr{}, false
	}
}
