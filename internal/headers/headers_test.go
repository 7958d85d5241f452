package headers

import (
	"strings"
	"testing"

	http "github.com/bogdanfinn/fhttp"
)

func TestBuildWithPinnedUserAgent(t *testing.T) {
	b := NewBuilder("TestAgent/1.0", nil)

	h := b.Build()
	if got := h["user-agent"]; len(got) != 1 || got[0] != "TestAgent/1.0" {
		t.Fatalf("pinned User-Agent not honoured: %v", got)
	}
	if b.UserAgent() != "TestAgent/1.0" {
		t.Fatalf("UserAgent() should report the pinned value, got %s", b.UserAgent())
	}
}

func TestBuildGeneratesChromeUserAgent(t *testing.T) {
	b := NewBuilder("", nil)

	ua := b.UserAgent()
	if !strings.Contains(ua, "Chrome/") || !strings.Contains(ua, "Mozilla/5.0") {
		t.Fatalf("generated User-Agent should look like Chrome: %s", ua)
	}

	// Consecutive builds reuse the drawn profile.
	if b.Build()["user-agent"][0] != b.Build()["user-agent"][0] {
		t.Fatal("profile must be stable across builds")
	}
}

func TestBuildAppliesOverrides(t *testing.T) {
	b := NewBuilder("", map[string]string{
		"Accept-Language": "de-DE,de;q=0.9",
		"x-api-key":       "abc",
	})

	h := b.Build()
	if got := h["accept-language"]; len(got) != 1 || got[0] != "de-DE,de;q=0.9" {
		t.Fatalf("override should replace the profile value under a lowercase key: %v", h)
	}
	if got := h["x-api-key"]; len(got) != 1 || got[0] != "abc" {
		t.Fatalf("custom header missing: %v", h)
	}
	if _, exists := h["Accept-Language"]; exists {
		t.Fatal("overrides must not introduce canonicalised duplicates")
	}
}

func TestBuildCarriesHeaderOrder(t *testing.T) {
	h := NewBuilder("", nil).Build()

	order, ok := h[http.HeaderOrderKey]
	if !ok || len(order) == 0 {
		t.Fatal("header order hint missing")
	}
	for _, key := range order {
		if key != strings.ToLower(key) {
			t.Fatalf("order entries must be lowercase, got %q", key)
		}
	}
	if order[len(order)-1] != "referer" {
		t.Fatalf("referer should close the order, got %v", order)
	}
}
