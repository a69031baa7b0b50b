package ml

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
)

func TestModelRoundTrip(t *testing.T) {
	model := sqliProbeModel()
	model.Bias = []float64{-0.125, 0.125}
	path := filepath.Join(t.TempDir(), "classifier.json")

	if err := SaveModelFile(model, path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loaded, err := LoadModelFile(path, DefaultVectorizerConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Scoring a probe set must yield identical decisions and scores
	// before and after serialization.
	v := newTestVectorizer(t)
	probes := []string{"", "hello world", "union select", "GET /api/users?id=1", "你好"}
	for _, text := range probes {
		vector := v.Transform(text)
		before, err := model.Predict(vector)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		after, err := loaded.Predict(vector)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if before.Label != after.Label {
			t.Fatalf("decision changed after round-trip for %q: %q != %q", text, before.Label, after.Label)
		}
		for i := range before.Scores {
			if before.Scores[i] != after.Scores[i] {
				t.Fatalf("score %d changed after round-trip for %q", i, text)
			}
		}
	}
}

func TestParseModelMalformed(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"not json", "{"},
		{"non-numeric weight", `{"type":"logistic_regression","classes":["a","b"],"weights":[["x"]],"bias":[0,0],"vectorizer":{"nFeatures":4096,"ngramRange":[3,5],"analyzer":"char_wb"}}`},
		{"missing bias", `{"type":"logistic_regression","classes":["a","b"],"weights":[[],[]],"vectorizer":{"nFeatures":4096,"ngramRange":[3,5],"analyzer":"char_wb"}}`},
		{"missing type", `{"classes":["a","b"],"weights":[[],[]],"bias":[0,0],"vectorizer":{"nFeatures":4096,"ngramRange":[3,5],"analyzer":"char_wb"}}`},
	}
	for _, tc := range cases {
		_, err := ParseModel([]byte(tc.data), DefaultVectorizerConfig())
		if !errors.Is(err, ErrModelLoad) {
			t.Fatalf("%s: expected ErrModelLoad, got %v", tc.name, err)
		}
	}
}

func TestParseModelConfigMismatch(t *testing.T) {
	// An artifact hashed into 2048 features must be refused by an engine
	// compiled for 4096, before any scoring happens.
	model := sqliProbeModel()
	model.Vectorizer.NFeatures = 2048
	for i := range model.Weights {
		model.Weights[i] = model.Weights[i][:2048]
	}
	data, err := json.Marshal(model)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = ParseModel(data, DefaultVectorizerConfig())
	if !errors.Is(err, ErrConfigMismatch) {
		t.Fatalf("expected ErrConfigMismatch, got %v", err)
	}
}

func TestSaveModelFileRefusesInvalid(t *testing.T) {
	model := sqliProbeModel()
	model.Bias = model.Bias[:1]
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := SaveModelFile(model, path); err == nil {
		t.Fatal("expected error saving malformed model")
	}
}
