package monitor

import (
	"strings"

	"gpu-stock-alerts/internal/fetcher"
)

// Matcher evaluates a listing set against the configured target
// criteria.
type Matcher struct {
	names        []string
	manufacturer string
	substring    bool
}

// NewMatcher builds a matcher. When substring is true a target name
// matches anywhere inside the listing's GPU name; otherwise the names
// must be equal. Manufacturer comparison is always case-sensitive.
func NewMatcher(names []string, manufacturer string, substring bool) *Matcher {
	trimmed := make([]string, 0, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			trimmed = append(trimmed, name)
		}
	}
	return &Matcher{names: trimmed, manufacturer: manufacturer, substring: substring}
}

// Evaluate returns the listings that are available, carry the target
// manufacturer, and match one of the target names. Input order is
// preserved; the result is empty when nothing matches.
func (m *Matcher) Evaluate(listings []fetcher.Listing) []fetcher.Listing {
	var matched []fetcher.Listing
	for _, l := range listings {
		if !l.Available {
			continue
		}
		if l.Manufacturer != m.manufacturer {
			continue
		}
		if !m.nameMatches(l.GPU) {
			continue
		}
		matched = append(matched, l)
	}
	return matched
}

func (m *Matcher) nameMatches(gpu string) bool {
	for _, name := range m.names {
		if m.substring {
			if strings.Contains(gpu, name) {
				return true
			}
		} else if gpu == name {
			return true
		}
	}
	return false
}
