package fetcher

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Listing is one marketplace product as observed by a single fetch.
// Values are never mutated after parsing.
type Listing struct {
	SKU          string
	Title        string
	GPU          string
	Manufacturer string
	Available    bool
	Price        decimal.Decimal
	PurchaseLink string
}

// ProductFetcher retrieves the current listing set from the upstream
// search API.
type ProductFetcher interface {
	FetchProducts(ctx context.Context) ([]Listing, error)
}

// ErrorKind classifies a failed fetch.
type ErrorKind int

const (
	// KindTimeout covers deadline expiry on the request.
	KindTimeout ErrorKind = iota
	// KindHTTP covers non-2xx upstream responses.
	KindHTTP
	// KindMalformed covers undecodable bodies and listings missing a
	// mandatory field.
	KindMalformed
)

func (k ErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindHTTP:
		return "http"
	case KindMalformed:
		return "malformed"
	}
	return "unknown"
}

// FetchError is the typed failure returned by ProductFetcher
// implementations. Status is set for KindHTTP only.
type FetchError struct {
	Kind   ErrorKind
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case KindHTTP:
		return fmt.Sprintf("fetch failed: upstream status %d", e.Status)
	default:
		return fmt.Sprintf("fetch failed (%s): %v", e.Kind, e.Err)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
