package gateway

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// rowsToMaps materializes a result set as JSON-ready maps keyed by column
// name. Handlers are stored-procedure pass-throughs, so the column set is
// whatever the procedure returns.
func rowsToMaps(rows pgx.Rows) ([]map[string]any, error) {
	defer rows.Close()

	fields := rows.FieldDescriptions()
	out := make([]map[string]any, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(map[string]any, len(fields))
		for i, fd := range fields {
			row[fd.Name] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// queryMaps runs a query on the tenant bound to ctx and returns its rows
// as maps.
func (s *Service) queryMaps(ctx context.Context, sql string, args ...any) ([]map[string]any, error) {
	conn, err := s.registry.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return rowsToMaps(rows)
}

// queryRow runs a single-row query on the tenant bound to ctx.
func (s *Service) queryRow(ctx context.Context, sql string, args []any, dest ...any) error {
	conn, err := s.registry.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	return conn.QueryRow(ctx, sql, args...).Scan(dest...)
}

// exec runs a statement on the tenant bound to ctx.
func (s *Service) exec(ctx context.Context, sql string, args ...any) error {
	conn, err := s.registry.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, sql, args...)
	return err
}
