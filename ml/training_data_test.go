package ml

import (
	"os"
	"path/filepath"
	"testing"
)

func writeDataset(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.jsonl")
	if err := os.WriteFile(path, []byte(lines), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return path
}

func TestLoadDataset(t *testing.T) {
	path := writeDataset(t, `{"text":"GET /api/users?id=1","label":"safe"}

{"text":"GET /api/users?id=1' OR '1'='1","label":"attack"}
`)
	samples, err := LoadDataset(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}
	if samples[0].Label != "safe" || samples[1].Label != "attack" {
		t.Fatalf("unexpected labels: %+v", samples)
	}
}

func TestLoadDatasetRejectsMalformedLine(t *testing.T) {
	path := writeDataset(t, `{"text":"ok","label":"safe"}
{not json}
`)
	if _, err := LoadDataset(path); err == nil {
		t.Fatal("expected error for malformed line")
	}
}

func TestLoadDatasetRejectsMissingLabel(t *testing.T) {
	path := writeDataset(t, `{"text":"no label here"}`+"\n")
	if _, err := LoadDataset(path); err == nil {
		t.Fatal("expected error for missing label")
	}
}

func TestLoadDatasetRejectsEmpty(t *testing.T) {
	path := writeDataset(t, "\n\n")
	if _, err := LoadDataset(path); err == nil {
		t.Fatal("expected error for empty dataset")
	}
}

func TestSplitDataset(t *testing.T) {
	samples := make([]Sample, 100)
	for i := range samples {
		samples[i] = Sample{Text: "x", Label: "safe"}
	}
	train, test := SplitDataset(samples, 0.2, 42)
	if len(train) != 80 || len(test) != 20 {
		t.Fatalf("unexpected split: %d/%d", len(train), len(test))
	}

	// Same seed, same split.
	train2, test2 := SplitDataset(samples, 0.2, 42)
	if len(train2) != len(train) || len(test2) != len(test) {
		t.Fatalf("split is not deterministic")
	}
}

func TestEvaluateModel(t *testing.T) {
	model := sqliProbeModel()
	v := newTestVectorizer(t)
	samples := []Sample{
		{Text: "union select", Label: "attack"},
		{Text: "hello world", Label: "safe"},
		{Text: "good morning", Label: "safe"},
	}
	metrics, err := EvaluateModel(model, v, samples)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if metrics.Accuracy != 1.0 {
		t.Fatalf("expected accuracy 1.0, got %f", metrics.Accuracy)
	}
	if metrics.Precision["attack"] != 1.0 || metrics.Recall["safe"] != 1.0 {
		t.Fatalf("unexpected metrics: %+v", metrics)
	}
}

func TestMetricsMacroAverages(t *testing.T) {
	metrics := Metrics{
		Precision: map[string]float64{"attack": 1.0, "safe": 0.5},
		Recall:    map[string]float64{"attack": 0.75, "safe": 0.25},
	}
	if got := metrics.MacroPrecision(); got != 0.75 {
		t.Fatalf("macro precision = %f, expected 0.75", got)
	}
	if got := metrics.MacroRecall(); got != 0.5 {
		t.Fatalf("macro recall = %f, expected 0.5", got)
	}

	// No evaluated classes means no signal, not NaN.
	if got := (Metrics{}).MacroPrecision(); got != 0 {
		t.Fatalf("empty macro precision = %f, expected 0", got)
	}
}
