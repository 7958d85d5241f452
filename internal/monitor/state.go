package monitor

import "sort"

type healthState int

const (
	stateHealthy healthState = iota
	stateFailing
	stateDown
)

// FailureTracker counts consecutive fetch failures and decides when a
// down episode starts and ends. Alerts are strictly edge-triggered: one
// down signal per episode, one recovery signal on the way out.
type FailureTracker struct {
	maxFailures int
	failures    int
	state       healthState
}

// NewFailureTracker builds a tracker with the given threshold
// (minimum 1).
func NewFailureTracker(maxFailures int) *FailureTracker {
	if maxFailures < 1 {
		maxFailures = 1
	}
	return &FailureTracker{maxFailures: maxFailures}
}

// Fail records one failed fetch. It reports true only on the tick that
// crosses the threshold; subsequent failures within the same episode
// report false.
func (t *FailureTracker) Fail() bool {
	t.failures++
	if t.state == stateDown {
		return false
	}
	if t.failures >= t.maxFailures {
		t.state = stateDown
		return true
	}
	t.state = stateFailing
	return false
}

// Succeed resets the streak. It reports true when the success ends a
// down episode.
func (t *FailureTracker) Succeed() bool {
	recovered := t.state == stateDown
	t.failures = 0
	t.state = stateHealthy
	return recovered
}

// Failures returns the current consecutive failure count.
func (t *FailureTracker) Failures() int {
	return t.failures
}

// Down reports whether a down episode is in progress.
func (t *FailureTracker) Down() bool {
	return t.state == stateDown
}

// ChangeDetector tracks the SKU snapshot across ticks. The baseline is
// an explicit tagged state: an empty listing set on the first success
// still establishes it, and is distinct from "no baseline yet".
type ChangeDetector struct {
	established bool
	known       map[string]struct{}
}

// NewChangeDetector starts with no baseline.
func NewChangeDetector() *ChangeDetector {
	return &ChangeDetector{}
}

// Observe compares the current SKU set against the last known one. The
// first observation seeds the baseline silently. Later observations
// report the sorted symmetric difference and replace the snapshot.
func (d *ChangeDetector) Observe(current []string) (added, removed []string, changed bool) {
	set := make(map[string]struct{}, len(current))
	for _, sku := range current {
		set[sku] = struct{}{}
	}

	if !d.established {
		d.known = set
		d.established = true
		return nil, nil, false
	}

	for sku := range set {
		if _, ok := d.known[sku]; !ok {
			added = append(added, sku)
		}
	}
	for sku := range d.known {
		if _, ok := set[sku]; !ok {
			removed = append(removed, sku)
		}
	}
	if len(added) == 0 && len(removed) == 0 {
		return nil, nil, false
	}

	sort.Strings(added)
	sort.Strings(removed)
	d.known = set
	return added, removed, true
}

// Established reports whether the baseline snapshot exists.
func (d *ChangeDetector) Established() bool {
	return d.established
}
