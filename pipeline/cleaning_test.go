package pipeline

import (
	"testing"

	"github.com/lploc94/cloudflare-sentinel/ml"
)

func TestCleanerDefaultRules(t *testing.T) {
	cleaner := NewCleaner()
	samples := []ml.Sample{
		{Text: "  GET /api/users?id=1  ", Label: "safe"},
		{Text: "GET /api/users?id=1", Label: "safe"}, // dup after trim
		{Text: "ab", Label: "safe"},                  // too short
		{Text: "   ", Label: "safe"},                 // empty after trim
		{Text: "' OR '1'='1", Label: "sqli"},
	}

	cleaned := cleaner.Clean(samples)
	if len(cleaned) != 2 {
		t.Fatalf("expected 2 samples, got %d: %+v", len(cleaned), cleaned)
	}
	if cleaned[0].Text != "GET /api/users?id=1" {
		t.Fatalf("expected trimmed text, got %q", cleaned[0].Text)
	}

	stats := cleaner.Stats()
	if stats.TotalProcessed != 5 || stats.Passed != 2 || stats.Rejected != 3 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.RejectedByRule["dedupe"] != 1 {
		t.Fatalf("expected 1 dedupe rejection, got %d", stats.RejectedByRule["dedupe"])
	}
}

func TestDedupeIsPerLabel(t *testing.T) {
	cleaner := NewCleaner(NewDedupeRule())
	samples := []ml.Sample{
		{Text: "same text", Label: "safe"},
		{Text: "same text", Label: "sqli"},
	}
	if cleaned := cleaner.Clean(samples); len(cleaned) != 2 {
		t.Fatalf("same text under different labels must both survive, got %d", len(cleaned))
	}
}
