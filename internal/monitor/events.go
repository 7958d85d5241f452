package monitor

import (
	"context"
	"time"

	"gpu-stock-alerts/internal/fetcher"
)

// AlertKind enumerates the alert types the engine can emit.
type AlertKind int

const (
	// AlertProductAvailable fires when a monitored listing enters the
	// matched set.
	AlertProductAvailable AlertKind = iota
	// AlertAPIDown fires once per down episode when consecutive fetch
	// failures reach the configured threshold.
	AlertAPIDown
	// AlertAPIRecovered fires on the first success after a down episode.
	AlertAPIRecovered
	// AlertSKUSetChanged fires when the observed SKU set differs from
	// the last known one, after the baseline is established.
	AlertSKUSetChanged
)

func (k AlertKind) String() string {
	switch k {
	case AlertProductAvailable:
		return "product_available"
	case AlertAPIDown:
		return "api_down"
	case AlertAPIRecovered:
		return "api_recovered"
	case AlertSKUSetChanged:
		return "sku_set_changed"
	}
	return "unknown"
}

// AlertEvent is constructed per tick and handed to the Notifier; it is
// never retained by the engine.
type AlertEvent struct {
	Kind     AlertKind
	Listing  fetcher.Listing // set for AlertProductAvailable
	Added    []string        // set for AlertSKUSetChanged
	Removed  []string        // set for AlertSKUSetChanged
	Failures int             // set for AlertAPIDown
	At       time.Time
}

// Notifier delivers an alert out-of-band. Delivery failures are
// non-fatal to the caller.
type Notifier interface {
	Notify(ctx context.Context, event AlertEvent) error
}
