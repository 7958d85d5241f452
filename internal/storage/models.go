package storage

import "time"

// CheckSample records the outcome of one poll tick for auditing and
// export. The engine only ever writes these; monitor state is never
// restored from them.
type CheckSample struct {
	TickTS       time.Time
	Status       string
	ListingCount int
	MatchedCount int
	Failures     int
	Error        *string
	CreatedAt    time.Time
}

// Sample status values.
const (
	SampleStatusOK    = "ok"
	SampleStatusError = "error"
)

// AlertRecord captures an emitted alert for auditing.
type AlertRecord struct {
	ID        int64
	Kind      string
	SKUs      []string
	Detail    string
	CreatedAt time.Time
}
