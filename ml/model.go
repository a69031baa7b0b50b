package ml

import (
	"errors"
	"fmt"
	"math"
)

const ModelTypeLogisticRegression = "logistic_regression"

var (
	// ErrModelLoad reports a structurally invalid model artifact.
	ErrModelLoad = errors.New("invalid model artifact")
	// ErrConfigMismatch reports a model whose vectorizer configuration
	// disagrees with the engine's compiled-in configuration.
	ErrConfigMismatch = errors.New("vectorizer config mismatch")
)

// Model is the trained artifact: one weight row and one bias per class,
// aligned by position with Classes. Immutable after load and safe for
// concurrent use.
type Model struct {
	Type       string         `json:"type"`
	Classes    []string       `json:"classes"`
	Weights    [][]float64    `json:"weights"`
	Bias       []float64      `json:"bias"`
	Vectorizer VectorizerInfo `json:"vectorizer"`
}

// VectorizerInfo is the vectorizer configuration as persisted in the
// artifact.
type VectorizerInfo struct {
	NFeatures  int    `json:"nFeatures"`
	NgramRange [2]int `json:"ngramRange"`
	Analyzer   string `json:"analyzer"`
}

// Prediction is the decision for a single input. Scores are the raw
// linear scores the argmax was computed from; Confidence is the softmax
// probability of the chosen class, for reporting only.
type Prediction struct {
	Label      string    `json:"label"`
	Index      int       `json:"index"`
	Confidence float64   `json:"confidence"`
	Scores     []float64 `json:"scores"`
}

// Validate checks the artifact against the engine configuration. Shape
// problems are ErrModelLoad, configuration disagreement is
// ErrConfigMismatch; both are fatal before any scoring.
func (m *Model) Validate(engine VectorizerConfig) error {
	if m.Type != ModelTypeLogisticRegression {
		return fmt.Errorf("%w: unsupported type %q", ErrModelLoad, m.Type)
	}
	if len(m.Classes) < 2 {
		return fmt.Errorf("%w: need at least 2 classes, got %d", ErrModelLoad, len(m.Classes))
	}
	if len(m.Weights) != len(m.Classes) || len(m.Bias) != len(m.Classes) {
		return fmt.Errorf("%w: classes=%d weights=%d bias=%d", ErrModelLoad,
			len(m.Classes), len(m.Weights), len(m.Bias))
	}
	seen := make(map[string]bool, len(m.Classes))
	for _, class := range m.Classes {
		if seen[class] {
			return fmt.Errorf("%w: duplicate class %q", ErrModelLoad, class)
		}
		seen[class] = true
	}
	for i, row := range m.Weights {
		if len(row) != m.Vectorizer.NFeatures {
			return fmt.Errorf("%w: weights[%d] has %d features, expected %d", ErrModelLoad,
				i, len(row), m.Vectorizer.NFeatures)
		}
		for _, w := range row {
			if math.IsNaN(w) || math.IsInf(w, 0) {
				return fmt.Errorf("%w: non-finite weight in row %d", ErrModelLoad, i)
			}
		}
	}
	for i, b := range m.Bias {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			return fmt.Errorf("%w: non-finite bias[%d]", ErrModelLoad, i)
		}
	}
	if len(m.Classes) == 2 {
		if err := m.checkBinaryExpansion(); err != nil {
			return err
		}
	}

	if m.Vectorizer.NFeatures != engine.NFeatures {
		return fmt.Errorf("%w: model nFeatures=%d, engine=%d", ErrConfigMismatch,
			m.Vectorizer.NFeatures, engine.NFeatures)
	}
	if m.Vectorizer.NgramRange != engine.NgramRange {
		return fmt.Errorf("%w: model ngramRange=%v, engine=%v", ErrConfigMismatch,
			m.Vectorizer.NgramRange, engine.NgramRange)
	}
	if m.Vectorizer.Analyzer != engine.Analyzer {
		return fmt.Errorf("%w: model analyzer=%q, engine=%q", ErrConfigMismatch,
			m.Vectorizer.Analyzer, engine.Analyzer)
	}
	return nil
}

// A two-class model must already be expanded to two symmetric rows by the
// exporter. The engine never special-cases class count.
func (m *Model) checkBinaryExpansion() error {
	for i := range m.Weights[0] {
		if m.Weights[1][i] != -m.Weights[0][i] {
			return fmt.Errorf("%w: binary weights not symmetric at feature %d", ErrModelLoad, i)
		}
	}
	if m.Bias[1] != -m.Bias[0] {
		return fmt.Errorf("%w: binary bias not symmetric", ErrModelLoad)
	}
	return nil
}

// Score computes the raw per-class linear scores for a feature vector,
// accumulating in ascending feature index so rounding is reproducible.
// It fails closed on any length mismatch.
func (m *Model) Score(vector []float64) ([]float64, error) {
	if len(m.Weights) != len(m.Classes) || len(m.Bias) != len(m.Classes) {
		return nil, fmt.Errorf("%w: classes=%d weights=%d bias=%d", ErrModelLoad,
			len(m.Classes), len(m.Weights), len(m.Bias))
	}
	scores := make([]float64, len(m.Classes))
	for c, row := range m.Weights {
		if len(row) != len(vector) {
			return nil, fmt.Errorf("%w: weights[%d] has %d features, vector has %d", ErrModelLoad,
				c, len(row), len(vector))
		}
		score := 0.0
		for i := 0; i < len(vector); i++ {
			score += row[i] * vector[i]
		}
		scores[c] = score + m.Bias[c]
	}
	return scores, nil
}

// Predict applies the argmax decision rule to the raw scores. Ties break
// to the lowest class index; the softmax confidence never influences the
// decision.
func (m *Model) Predict(vector []float64) (Prediction, error) {
	scores, err := m.Score(vector)
	if err != nil {
		return Prediction{}, err
	}

	best := 0
	for c := 1; c < len(scores); c++ {
		if scores[c] > scores[best] {
			best = c
		}
	}

	return Prediction{
		Label:      m.Classes[best],
		Index:      best,
		Confidence: softmax(scores)[best],
		Scores:     scores,
	}, nil
}

func softmax(scores []float64) []float64 {
	max := scores[0]
	for _, s := range scores[1:] {
		if s > max {
			max = s
		}
	}
	probs := make([]float64, len(scores))
	sum := 0.0
	for i, s := range scores {
		probs[i] = math.Exp(s - max)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}
