package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"gpu-stock-alerts/internal/alerting"
	"gpu-stock-alerts/internal/config"
	"gpu-stock-alerts/internal/fetcher"
	"gpu-stock-alerts/internal/headers"
	"gpu-stock-alerts/internal/monitor"
	"gpu-stock-alerts/internal/scheduler"
	"gpu-stock-alerts/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newFetcher() (fetcher.ProductFetcher, error) {
	builder := headers.NewBuilder(a.Config.API.UserAgent, a.Config.API.Headers)
	return fetcher.NewNvidia(fetcher.NvidiaOptions{
		URL:     a.Config.API.URL(),
		Timeout: a.Config.API.RequestTimeout,
		Headers: builder,
	}, a.Logger)
}

func (a *App) newNotifier() monitor.Notifier {
	if !a.Config.Alerting.Enabled {
		return nil
	}
	switch a.Config.Alerting.Channel {
	case "telegram":
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger)
	default:
		return alerting.NewEmailNotifier(a.Config.Email, a.Logger)
	}
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

// Run executes the long-running monitoring service. It returns nil on a
// graceful signal-triggered shutdown and an error only for startup
// failures.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		a.Logger.Warn().Msg("database.dsn not configured; alert auditing disabled")
	}
	if closeStore != nil {
		defer closeStore()
	}

	// One monitor instance per database: the lock is held for the whole
	// run so two deployments never double-alert.
	if store != nil && a.Config.Database.AdvisoryLockKey != 0 {
		unlock, acquired, lockErr := store.TryAdvisoryLock(ctx, a.Config.Database.AdvisoryLockKey)
		if lockErr != nil {
			return lockErr
		}
		if !acquired {
			return errors.New("advisory lock held elsewhere; another instance is running")
		}
		defer unlock()
	}

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Monitor.CheckInterval,
		StartupDelay: a.Config.Monitor.StartupDelay,
	}, a.Logger)

	pf, err := a.newFetcher()
	if err != nil {
		return err
	}
	notifier := a.newNotifier()
	if notifier == nil {
		a.Logger.Warn().Msg("alerting disabled; events will only be logged")
	}

	var samples storage.CheckSampleStore
	var alerts storage.AlertStore
	if store != nil {
		samples = store
		alerts = store
	}

	engine := monitor.New(a.Config, sched, pf, notifier, samples, alerts, a.Logger)

	a.Logger.Info().
		Strs("gpus", a.Config.Monitor.GPUs).
		Str("manufacturer", a.Config.Monitor.Manufacturer).
		Dur("check_interval", a.Config.Monitor.CheckInterval).
		Int("max_failures", a.Config.Monitor.MaxFailures).
		Msg("starting monitoring engine")

	err = engine.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("engine terminated with error")
		return err
	}

	a.Logger.Info().Msg("monitoring engine stopped")
	return nil
}

// ExportOptions hold parameters for exporting historical check samples.
type ExportOptions struct {
	From      *time.Time
	To        *time.Time
	PNGPath   string
	CSVPath   string
	MaxPoints int
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Limit   int
	Samples bool
}
