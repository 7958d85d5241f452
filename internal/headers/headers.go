package headers

import (
	"fmt"
	"math/rand"
	"strings"

	http "github.com/bogdanfinn/fhttp"
)

// Builder produces browser-like request headers for the marketplace
// search API. A fixed profile is drawn per process so consecutive polls
// look like one browser session, then config overrides are layered on.
type Builder struct {
	userAgent string
	secCHUA   string
	language  string
	accept    string
	encoding  string
	overrides map[string]string
}

var (
	chromeVersions = []string{"134.0.0.0", "135.0.0.0", "136.0.0.0", "137.0.0.0"}
	platforms      = []string{"Windows NT 10.0; Win64; x64", "Macintosh; Intel Mac OS X 10_15_7", "X11; Linux x86_64"}
	languageOpts   = []string{
		"en-US,en;q=0.9",
		"en-US,en;q=0.8",
		"en-GB,en;q=0.9,en-US;q=0.8",
		"en,en-US;q=0.9",
	}
	acceptOpts = []string{
		"application/json",
		"application/json, text/plain, */*",
	}
	encodingOpts = []string{
		"gzip, deflate, br",
		"gzip, deflate, br, zstd",
	}

	headerOrder = []string{
		"accept",
		"accept-language",
		"accept-encoding",
		"user-agent",
		"sec-ch-ua",
		"sec-ch-ua-mobile",
		"sec-ch-ua-platform",
		"sec-fetch-site",
		"sec-fetch-mode",
		"sec-fetch-dest",
		"origin",
		"referer",
	}
)

// NewBuilder draws a random browser profile. userAgent, when non-empty,
// pins the User-Agent instead of a generated one; overrides are applied
// verbatim on top of the profile.
func NewBuilder(userAgent string, overrides map[string]string) *Builder {
	version := chromeVersions[rand.Intn(len(chromeVersions))]
	platform := platforms[rand.Intn(len(platforms))]

	ua := userAgent
	if ua == "" {
		ua = fmt.Sprintf(
			"Mozilla/5.0 (%s) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/%s Safari/537.36",
			platform, version,
		)
	}

	major := version
	if idx := strings.Index(version, "."); idx != -1 {
		major = version[:idx]
	}

	return &Builder{
		userAgent: ua,
		secCHUA:   fmt.Sprintf(`"Chromium";v="%s", "Google Chrome";v="%s", "Not:A-Brand";v="24"`, major, major),
		language:  languageOpts[rand.Intn(len(languageOpts))],
		accept:    acceptOpts[rand.Intn(len(acceptOpts))],
		encoding:  encodingOpts[rand.Intn(len(encodingOpts))],
		overrides: overrides,
	}
}

// Build returns the headers for one request, including the header order
// hint honoured by fhttp.
func (b *Builder) Build() http.Header {
	h := http.Header{
		"accept":             {b.accept},
		"accept-language":    {b.language},
		"accept-encoding":    {b.encoding},
		"user-agent":         {b.userAgent},
		"sec-ch-ua":          {b.secCHUA},
		"sec-ch-ua-mobile":   {"?0"},
		"sec-ch-ua-platform": {`"Windows"`},
		"sec-fetch-site":     {"same-site"},
		"sec-fetch-mode":     {"cors"},
		"sec-fetch-dest":     {"empty"},
		"origin":             {"https://store.nvidia.com"},
		"referer":            {"https://store.nvidia.com/"},
		http.HeaderOrderKey:  headerOrder,
	}

	// Lowercase keys keep fhttp from re-canonicalising; the wire order
	// list above matches them case-insensitively.
	for key, value := range b.overrides {
		h[strings.ToLower(key)] = []string{value}
	}

	return h
}

// UserAgent exposes the pinned or generated User-Agent for logging.
func (b *Builder) UserAgent() string {
	return b.userAgent
}
