package alerting

import (
	"fmt"
	"html"
	"strings"
	"time"

	"gpu-stock-alerts/internal/monitor"
)

// RenderHTML produces the email body for an alert event.
func RenderHTML(event monitor.AlertEvent) string {
	switch event.Kind {
	case monitor.AlertProductAvailable:
		l := event.Listing
		title := html.EscapeString(l.Title)
		if title == "" {
			title = html.EscapeString(l.GPU)
		}
		body := fmt.Sprintf("<p>Product in stock: <b>%s</b> (%s)", title, html.EscapeString(l.GPU))
		if !l.Price.IsZero() {
			body += " at $" + l.Price.StringFixed(2)
		}
		body += "</p>"
		if l.PurchaseLink != "" {
			body += fmt.Sprintf("<p>Link: <a href='%s'>Click here</a></p>", l.PurchaseLink)
		}
		return body
	case monitor.AlertAPIDown:
		return fmt.Sprintf("<p>Alert: the marketplace API is down after %d consecutive failed checks. Please check API status and connectivity.</p>", event.Failures)
	case monitor.AlertAPIRecovered:
		return "<p>The marketplace API is reachable again.</p>"
	case monitor.AlertSKUSetChanged:
		return fmt.Sprintf("<p>The monitored SKU set changed.</p><p>Added: %s</p><p>Removed: %s</p>",
			htmlList(event.Added), htmlList(event.Removed))
	}
	return "<p>Unknown alert.</p>"
}

// RenderText produces the plain-text body used by chat channels.
func RenderText(event monitor.AlertEvent) string {
	b := strings.Builder{}
	b.WriteString("[gpuwatcher] ")
	switch event.Kind {
	case monitor.AlertProductAvailable:
		l := event.Listing
		fmt.Fprintf(&b, "Product in stock: %s (%s)", l.Title, l.GPU)
		if !l.Price.IsZero() {
			fmt.Fprintf(&b, " at $%s", l.Price.StringFixed(2))
		}
		if l.PurchaseLink != "" {
			b.WriteString("\n" + l.PurchaseLink)
		}
	case monitor.AlertAPIDown:
		fmt.Fprintf(&b, "API down after %d consecutive failed checks", event.Failures)
	case monitor.AlertAPIRecovered:
		b.WriteString("API recovered")
	case monitor.AlertSKUSetChanged:
		fmt.Fprintf(&b, "SKU set changed: added [%s] removed [%s]",
			strings.Join(event.Added, ", "), strings.Join(event.Removed, ", "))
	}
	fmt.Fprintf(&b, "\nAt: %s UTC", event.At.UTC().Format(time.RFC3339))
	return b.String()
}

func htmlList(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	escaped := make([]string, len(items))
	for i, item := range items {
		escaped[i] = html.EscapeString(item)
	}
	return strings.Join(escaped, ", ")
}
