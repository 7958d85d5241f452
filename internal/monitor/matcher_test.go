package monitor

import (
	"testing"

	"gpu-stock-alerts/internal/fetcher"
)

func TestMatcherExactName(t *testing.T) {
	m := NewMatcher([]string{"RTX 5090", "RTX 5080"}, "NVIDIA", false)

	listings := []fetcher.Listing{
		listing("A", "RTX 5090", "NVIDIA", true),
		listing("B", "RTX 5090 Founders", "NVIDIA", true),
		listing("C", "RTX 5080", "NVIDIA", false),
	}

	matched := m.Evaluate(listings)
	if len(matched) != 1 || matched[0].SKU != "A" {
		t.Fatalf("expected only SKU A to match, got %v", matched)
	}
}

func TestMatcherSubstringName(t *testing.T) {
	m := NewMatcher([]string{"RTX 5090"}, "NVIDIA", true)

	listings := []fetcher.Listing{
		listing("A", "GeForce RTX 5090 Founders Edition", "NVIDIA", true),
		listing("B", "GeForce RTX 5080", "NVIDIA", true),
	}

	matched := m.Evaluate(listings)
	if len(matched) != 1 || matched[0].SKU != "A" {
		t.Fatalf("expected substring match on SKU A, got %v", matched)
	}
}

func TestMatcherManufacturerCaseSensitive(t *testing.T) {
	m := NewMatcher([]string{"RTX 5090"}, "NVIDIA", false)

	if matched := m.Evaluate([]fetcher.Listing{listing("A", "RTX 5090", "Nvidia", true)}); len(matched) != 0 {
		t.Fatalf("Nvidia must not match NVIDIA, got %v", matched)
	}
}

func TestMatcherRequiresAvailability(t *testing.T) {
	m := NewMatcher([]string{"RTX 5090"}, "NVIDIA", false)

	if matched := m.Evaluate([]fetcher.Listing{listing("A", "RTX 5090", "NVIDIA", false)}); len(matched) != 0 {
		t.Fatalf("unavailable listing must not match, got %v", matched)
	}
}

func TestMatcherEmptyResult(t *testing.T) {
	m := NewMatcher([]string{"RTX 5090"}, "NVIDIA", false)
	if matched := m.Evaluate(nil); len(matched) != 0 {
		t.Fatalf("expected empty result for empty input, got %v", matched)
	}
}

func TestMatcherTrimsConfiguredNames(t *testing.T) {
	m := NewMatcher([]string{" RTX 5090 ", ""}, "NVIDIA", false)

	if matched := m.Evaluate([]fetcher.Listing{listing("A", "RTX 5090", "NVIDIA", true)}); len(matched) != 1 {
		t.Fatalf("padded config names should be trimmed, got %v", matched)
	}
}
