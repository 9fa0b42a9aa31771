package catalog

import (
	"context"
	"time"
)

// Rate is one cached FX quote against a base currency.
type Rate struct {
	Base      string    `json:"base"`
	Quote     string    `json:"quote"`
	Rate      float64   `json:"rate"`
	FetchedAt time.Time `json:"fetched_at"`
	IsManual  bool      `json:"is_manual"`
}

// UpsertRate writes a quote into the FX cache. Manually pinned rows are
// left alone so an operator override survives the hourly fetch.
func (c *Catalog) UpsertRate(ctx context.Context, r Rate) error {
	conn, err := c.registry.Acquire(mainCtx(ctx))
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx,
		`INSERT INTO fx_current_rates (base, quote, rate, fetched_at, is_manual)
		 VALUES ($1, $2, $3, $4, false)
		 ON CONFLICT (base, quote) DO UPDATE
		    SET rate = EXCLUDED.rate, fetched_at = EXCLUDED.fetched_at
		  WHERE fx_current_rates.is_manual = false`,
		r.Base, r.Quote, r.Rate, r.FetchedAt)
	return err
}

// LatestRates returns the full FX cache for the public /fx/latest route.
func (c *Catalog) LatestRates(ctx context.Context) ([]Rate, error) {
	conn, err := c.registry.Acquire(mainCtx(ctx))
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx,
		`SELECT base, quote, rate, fetched_at, is_manual
		   FROM fx_current_rates ORDER BY quote`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rates []Rate
	for rows.Next() {
		var r Rate
		if err := rows.Scan(&r.Base, &r.Quote, &r.Rate, &r.FetchedAt, &r.IsManual); err != nil {
			return nil, err
		}
		rates = append(rates, r)
	}
	return rates, rows.Err()
}
