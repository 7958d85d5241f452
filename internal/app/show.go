package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"gpu-stock-alerts/internal/storage"
)

type alertLister interface {
	ListRecentAlerts(ctx context.Context, limit int) ([]storage.AlertRecord, error)
}

type sampleLister interface {
	ListRecentSamples(ctx context.Context, limit int) ([]storage.CheckSample, error)
}

// Show prints recent alert records, or recent check samples with
// opts.Samples set.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; nothing to show")
	}
	if closeStore != nil {
		defer closeStore()
	}

	if opts.Samples {
		return showSamples(ctx, store, opts.Limit)
	}
	return showAlerts(ctx, store, opts.Limit)
}

func showAlerts(ctx context.Context, store alertLister, limit int) error {
	alerts, err := store.ListRecentAlerts(ctx, limit)
	if err != nil {
		return err
	}
	if len(alerts) == 0 {
		fmt.Fprintln(os.Stdout, "no alerts found")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Time (UTC)\tKind\tSKUs\tDetail")
	for _, alert := range alerts {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n",
			alert.CreatedAt.UTC().Format(time.RFC3339),
			alert.Kind,
			strings.Join(alert.SKUs, ","),
			sanitizeInline(alert.Detail),
		)
	}
	return writer.Flush()
}

func showSamples(ctx context.Context, store sampleLister, limit int) error {
	samples, err := store.ListRecentSamples(ctx, limit)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		fmt.Fprintln(os.Stdout, "no samples found")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Time (UTC)\tStatus\tListings\tMatched\tFailures\tError")
	for _, sample := range samples {
		errMsg := ""
		if sample.Error != nil {
			errMsg = sanitizeInline(*sample.Error)
		}
		fmt.Fprintf(writer, "%s\t%s\t%d\t%d\t%d\t%s\n",
			sample.TickTS.UTC().Format(time.RFC3339),
			sample.Status,
			sample.ListingCount,
			sample.MatchedCount,
			sample.Failures,
			errMsg,
		)
	}
	return writer.Flush()
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	return cleaned
}
