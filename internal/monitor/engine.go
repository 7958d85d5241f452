package monitor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"gpu-stock-alerts/internal/config"
	"gpu-stock-alerts/internal/fetcher"
	"gpu-stock-alerts/internal/scheduler"
	"gpu-stock-alerts/internal/storage"
)

// Engine orchestrates the poll/evaluate/notify cycle. It exclusively
// owns all mutable run state; a process restart always starts clean.
type Engine struct {
	scheduler *scheduler.Scheduler
	fetcher   fetcher.ProductFetcher
	matcher   *Matcher
	tracker   *FailureTracker
	detector  *ChangeDetector
	notifier  Notifier
	samples   storage.CheckSampleStore
	alerts    storage.AlertStore
	logger    zerolog.Logger

	// notified drives edge-triggered product alerts: a SKU alerts when
	// it enters the matched set and re-arms when it leaves.
	notified map[string]struct{}
}

// New constructs the monitoring engine. notifier, samples, and alerts
// may be nil; the loop then runs without delivery or auditing.
func New(cfg *config.Config, sched *scheduler.Scheduler, pf fetcher.ProductFetcher, notifier Notifier, samples storage.CheckSampleStore, alerts storage.AlertStore, logger zerolog.Logger) *Engine {
	return &Engine{
		scheduler: sched,
		fetcher:   pf,
		matcher:   NewMatcher(cfg.Monitor.GPUs, cfg.Monitor.Manufacturer, cfg.Monitor.MatchSubstring),
		tracker:   NewFailureTracker(cfg.Monitor.MaxFailures),
		detector:  NewChangeDetector(),
		notifier:  notifier,
		samples:   samples,
		alerts:    alerts,
		logger:    logger.With().Str("component", "engine").Logger(),
		notified:  make(map[string]struct{}),
	}
}

// Run executes the poll loop until ctx is cancelled. It never returns
// on its own; transient fetch, parse, and send failures are absorbed.
func (e *Engine) Run(ctx context.Context) error {
	if e.scheduler == nil {
		return fmt.Errorf("scheduler not configured")
	}
	return e.scheduler.Run(ctx, e.Tick)
}

// Tick performs exactly one fetch and evaluates the outcome. On success
// the change detector runs before the matcher; on failure only the
// failure tracker is consulted.
func (e *Engine) Tick(ctx context.Context, now time.Time) error {
	listings, err := e.fetcher.FetchProducts(ctx)
	if err != nil {
		e.observeFailure(ctx, now, err)
		return nil
	}
	e.observeSuccess(ctx, now, listings)
	return nil
}

func (e *Engine) observeFailure(ctx context.Context, now time.Time, fetchErr error) {
	downEdge := e.tracker.Fail()
	e.logger.Warn().
		Err(fetchErr).
		Int("consecutive_failures", e.tracker.Failures()).
		Bool("down", e.tracker.Down()).
		Msg("fetch failed")

	if downEdge {
		e.dispatch(ctx, AlertEvent{
			Kind:     AlertAPIDown,
			Failures: e.tracker.Failures(),
			At:       now,
		})
	}

	msg := fetchErr.Error()
	e.recordSample(ctx, storage.CheckSample{
		TickTS:   now,
		Status:   storage.SampleStatusError,
		Failures: e.tracker.Failures(),
		Error:    &msg,
	})
}

func (e *Engine) observeSuccess(ctx context.Context, now time.Time, listings []fetcher.Listing) {
	skus := make([]string, len(listings))
	for i, l := range listings {
		skus[i] = l.SKU
	}

	if added, removed, changed := e.detector.Observe(skus); changed {
		e.dispatch(ctx, AlertEvent{
			Kind:    AlertSKUSetChanged,
			Added:   added,
			Removed: removed,
			At:      now,
		})
	}

	matched := e.matcher.Evaluate(listings)
	current := make(map[string]struct{}, len(matched))
	for _, l := range matched {
		current[l.SKU] = struct{}{}
		if _, seen := e.notified[l.SKU]; seen {
			continue
		}
		e.notified[l.SKU] = struct{}{}
		e.dispatch(ctx, AlertEvent{
			Kind:    AlertProductAvailable,
			Listing: l,
			At:      now,
		})
	}
	// SKUs that left the matched set may alert again later.
	for sku := range e.notified {
		if _, ok := current[sku]; !ok {
			delete(e.notified, sku)
		}
	}

	if e.tracker.Succeed() {
		e.dispatch(ctx, AlertEvent{Kind: AlertAPIRecovered, At: now})
	}

	e.logger.Info().
		Int("listings", len(listings)).
		Int("matched", len(matched)).
		Msg("tick complete")

	e.recordSample(ctx, storage.CheckSample{
		TickTS:       now,
		Status:       storage.SampleStatusOK,
		ListingCount: len(listings),
		MatchedCount: len(matched),
	})
}

// dispatch audits and delivers one alert. Neither a failed audit write
// nor a failed send escalates: both are logged and swallowed, and they
// never feed the failure tracker.
func (e *Engine) dispatch(ctx context.Context, event AlertEvent) {
	e.logger.Info().
		Str("kind", event.Kind.String()).
		Strs("added", event.Added).
		Strs("removed", event.Removed).
		Str("sku", event.Listing.SKU).
		Msg("alert raised")

	if e.alerts != nil {
		if _, err := e.alerts.InsertAlert(ctx, auditRecord(event)); err != nil {
			e.logger.Error().Err(err).Str("kind", event.Kind.String()).Msg("failed to persist alert record")
		}
	}

	if e.notifier == nil {
		return
	}
	if err := e.notifier.Notify(ctx, event); err != nil {
		e.logger.Error().Err(err).Str("kind", event.Kind.String()).Msg("failed to dispatch alert")
	}
}

func (e *Engine) recordSample(ctx context.Context, sample storage.CheckSample) {
	if e.samples == nil {
		return
	}
	if err := e.samples.InsertCheckSample(ctx, sample); err != nil {
		e.logger.Error().Err(err).Time("tick", sample.TickTS).Msg("failed to persist check sample")
	}
}

func auditRecord(event AlertEvent) storage.AlertRecord {
	rec := storage.AlertRecord{Kind: event.Kind.String()}
	switch event.Kind {
	case AlertProductAvailable:
		rec.SKUs = []string{event.Listing.SKU}
		rec.Detail = fmt.Sprintf("%s (%s) available", event.Listing.Title, event.Listing.GPU)
		if event.Listing.PurchaseLink != "" {
			rec.Detail += " at " + event.Listing.PurchaseLink
		}
	case AlertAPIDown:
		rec.Detail = fmt.Sprintf("%d consecutive fetch failures", event.Failures)
	case AlertAPIRecovered:
		rec.Detail = "fetch succeeded after down episode"
	case AlertSKUSetChanged:
		rec.SKUs = append(append([]string{}, event.Added...), event.Removed...)
		rec.Detail = fmt.Sprintf("added [%s] removed [%s]",
			strings.Join(event.Added, ", "), strings.Join(event.Removed, ", "))
	}
	return rec
}
