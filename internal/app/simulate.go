package app

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"gpu-stock-alerts/internal/fetcher"
	"gpu-stock-alerts/internal/monitor"
)

// SimulateAlert drives one synthetic in-stock tick through the engine
// and the real notifier to verify alert delivery end to end.
func (a *App) SimulateAlert(ctx context.Context) error {
	if !a.Config.Alerting.Enabled {
		return errors.New("alerting is not enabled")
	}

	notifier := a.newNotifier()
	if notifier == nil {
		return errors.New("no alert channel configured")
	}

	gpu := a.Config.Monitor.GPUs[0]
	static := &staticFetcher{listings: []fetcher.Listing{{
		SKU:          "TEST-SKU",
		Title:        "Simulated " + gpu,
		GPU:          gpu,
		Manufacturer: a.Config.Monitor.Manufacturer,
		Available:    true,
		Price:        decimal.NewFromInt(1999),
		PurchaseLink: "https://example.com/simulated",
	}}}

	engine := monitor.New(a.Config, nil, static, notifier, nil, nil, a.Logger)
	return engine.Tick(ctx, time.Now().UTC())
}

type staticFetcher struct {
	listings []fetcher.Listing
}

func (s *staticFetcher) FetchProducts(ctx context.Context) ([]fetcher.Listing, error) {
	return s.listings, nil
}

var _ fetcher.ProductFetcher = (*staticFetcher)(nil)
