package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/pardaaf/backoffice/pkg/catalog"
)

// afnAdjustment is the fixed haircut applied to the AFN quote before it is
// cached. Market rates run above what local exchanges actually pay.
const afnAdjustment = 0.975

// FxConfig describes the rate provider.
type FxConfig struct {
	AppID    string        `env:"FX_APP_ID,required"`
	Endpoint string        `env:"FX_ENDPOINT" envDefault:"https://openexchangerates.org/api/latest.json"`
	Timeout  time.Duration `env:"FX_TIMEOUT" envDefault:"10s"`
	Quotes   []string      `env:"FX_QUOTES" envDefault:"AFN,EUR,PKR,IRR"`
}

type fxResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// runFxFetch pulls the latest USD quotes and upserts the configured ones
// into the FX cache. A missing AFN quote is logged but does not fail the
// run; the other quotes still land.
func (s *Service) runFxFetch(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.fx.Timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s?app_id=%s", s.fx.Endpoint, url.QueryEscape(s.fx.AppID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("fx fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fx fetch: provider returned %s", resp.Status)
	}

	var payload fxResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("fx fetch: %w", err)
	}

	base := payload.Base
	if base == "" {
		base = "USD"
	}
	fetchedAt := time.Now()

	for _, quote := range s.fx.Quotes {
		rate, ok := payload.Rates[quote]
		if !ok {
			if quote == "AFN" {
				s.logger.WarnContext(ctx, "fx provider returned no AFN quote")
			}
			continue
		}
		if quote == "AFN" {
			rate *= afnAdjustment
		}

		err := s.catalog.UpsertRate(ctx, catalog.Rate{
			Base: base, Quote: quote, Rate: rate, FetchedAt: fetchedAt,
		})
		if err != nil {
			s.logger.ErrorContext(ctx, "fx upsert failed",
				slog.String("quote", quote),
				slog.String("error", err.Error()))
		}
	}
	return nil
}
