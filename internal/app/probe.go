package app

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
)

// Probe performs one fetch and prints the parsed listing set without
// touching monitor state or sending alerts. Useful for verifying the
// endpoint, locale, and header profile before starting the engine.
func (a *App) Probe(ctx context.Context) error {
	pf, err := a.newFetcher()
	if err != nil {
		return err
	}

	listings, err := pf.FetchProducts(ctx)
	if err != nil {
		return err
	}

	if len(listings) == 0 {
		fmt.Fprintln(os.Stdout, "no listings returned")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "SKU\tGPU\tManufacturer\tAvailable\tPrice\tLink")
	for _, l := range listings {
		price := ""
		if !l.Price.IsZero() {
			price = "$" + l.Price.StringFixed(2)
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\t%t\t%s\t%s\n",
			l.SKU, l.GPU, l.Manufacturer, l.Available, price, l.PurchaseLink)
	}
	return writer.Flush()
}
