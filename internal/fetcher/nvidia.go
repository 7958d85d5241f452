package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"gpu-stock-alerts/internal/headers"
)

// NvidiaOptions parameterise the marketplace fetcher.
type NvidiaOptions struct {
	URL     string
	Timeout time.Duration
	Headers *headers.Builder
}

// Nvidia fetches product listings from the NVIDIA marketplace search
// API through a browser-impersonating TLS client.
type Nvidia struct {
	opts   NvidiaOptions
	logger zerolog.Logger
	client httpDoer
}

// httpDoer abstracts the tls-client for tests.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewNvidia constructs the fetcher. The TLS client mimics a Chrome
// handshake; request headers come from the profile builder.
func NewNvidia(opts NvidiaOptions, logger zerolog.Logger) (*Nvidia, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	opts.Timeout = timeout

	jar := tls_client.NewCookieJar()
	client, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(),
		tls_client.WithTimeoutSeconds(int(timeout/time.Second)+1),
		tls_client.WithClientProfile(profiles.Chrome_120),
		tls_client.WithNotFollowRedirects(),
		tls_client.WithCookieJar(jar),
	)
	if err != nil {
		return nil, err
	}

	return &Nvidia{
		opts:   opts,
		logger: logger.With().Str("component", "nvidia_fetcher").Logger(),
		client: client,
	}, nil
}

// FetchProducts performs one search request and parses the listing set.
// Every failure is reported as a *FetchError.
func (n *Nvidia) FetchProducts(ctx context.Context) ([]Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, n.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.opts.URL, nil)
	if err != nil {
		return nil, &FetchError{Kind: KindMalformed, Err: err}
	}
	if n.opts.Headers != nil {
		req.Header = n.opts.Headers.Build()
	}

	resp, err := n.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return nil, &FetchError{Kind: KindTimeout, Err: err}
		}
		return nil, &FetchError{Kind: KindMalformed, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &FetchError{Kind: KindTimeout, Err: err}
		}
		return nil, &FetchError{Kind: KindMalformed, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		n.logger.Warn().Int("status", resp.StatusCode).Str("body_sample", sample(body)).Msg("upstream returned error status")
		return nil, &FetchError{Kind: KindHTTP, Status: resp.StatusCode}
	}

	listings, err := parseSearchResponse(body)
	if err != nil {
		n.logger.Warn().Err(err).Str("body_sample", sample(body)).Msg("unparseable search response")
		return nil, &FetchError{Kind: KindMalformed, Err: err}
	}

	n.logger.Debug().Int("listings", len(listings)).Int("status", resp.StatusCode).Msg("search fetch complete")
	return listings, nil
}

type searchResponse struct {
	SearchedProducts struct {
		ProductDetails []productDetail `json:"productDetails"`
	} `json:"searchedProducts"`
}

type productDetail struct {
	ProductSKU       string `json:"productSKU"`
	ProductTitle     string `json:"productTitle"`
	GPU              string `json:"gpu"`
	Manufacturer     string `json:"manufacturer"`
	ProductAvailable *bool  `json:"productAvailable"`
	ProductPrice     string `json:"productPrice"`
	Retailers        []struct {
		IsAvailable  bool   `json:"isAvailable"`
		PurchaseLink string `json:"purchaseLink"`
	} `json:"retailers"`
}

func parseSearchResponse(body []byte) ([]Listing, error) {
	var res searchResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, err
	}

	details := res.SearchedProducts.ProductDetails
	listings := make([]Listing, 0, len(details))
	for i, d := range details {
		// SKU, GPU name, manufacturer, and availability are mandatory;
		// one undecidable listing poisons the whole fetch.
		if d.ProductSKU == "" || d.GPU == "" || d.Manufacturer == "" || d.ProductAvailable == nil {
			return nil, fmt.Errorf("listing %d is missing a mandatory field", i)
		}

		listing := Listing{
			SKU:          d.ProductSKU,
			Title:        d.ProductTitle,
			GPU:          d.GPU,
			Manufacturer: d.Manufacturer,
			Available:    *d.ProductAvailable,
			Price:        parsePrice(d.ProductPrice),
		}
		for _, r := range d.Retailers {
			if r.IsAvailable && r.PurchaseLink != "" {
				listing.PurchaseLink = r.PurchaseLink
				break
			}
		}
		listings = append(listings, listing)
	}
	return listings, nil
}

// parsePrice reads display prices such as "$1,999.00". Price is
// optional metadata; undecodable values collapse to zero.
func parsePrice(raw string) decimal.Decimal {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(raw)
	if cleaned == "" {
		return decimal.Decimal{}
	}
	price, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}
	}
	return price
}

func sample(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}

var _ ProductFetcher = (*Nvidia)(nil)
