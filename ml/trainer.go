package ml

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// TrainerConfig controls the SGD optimizer. Seeded shuffling keeps runs
// reproducible.
type TrainerConfig struct {
	Epochs       int
	LearningRate float64
	L2           float64
	Seed         int64
}

func DefaultTrainerConfig() TrainerConfig {
	return TrainerConfig{
		Epochs:       30,
		LearningRate: 0.1,
		L2:           1e-4,
		Seed:         42,
	}
}

// Trainer fits a logistic-regression model over hashed features. Two-class
// problems are fitted as a single sigmoid row and expanded to two
// symmetric rows at export, so the artifact always satisfies the
// multi-class decision rule.
type Trainer struct {
	config     TrainerConfig
	vectorizer *HashingVectorizer
}

func NewTrainer(config TrainerConfig) (*Trainer, error) {
	if config.Epochs <= 0 {
		return nil, errors.New("epochs must be positive")
	}
	if config.LearningRate <= 0 {
		return nil, errors.New("learning rate must be positive")
	}
	vectorizer, err := NewHashingVectorizer(DefaultVectorizerConfig())
	if err != nil {
		return nil, err
	}
	return &Trainer{config: config, vectorizer: vectorizer}, nil
}

func (t *Trainer) Vectorizer() *HashingVectorizer {
	return t.vectorizer
}

// Train fits a model on the samples. Classes are ordered
// lexicographically, matching the ordering the artifact consumers expect.
func (t *Trainer) Train(samples []Sample) (*Model, error) {
	if len(samples) == 0 {
		return nil, errors.New("no training samples")
	}

	classes := collectClasses(samples)
	if len(classes) < 2 {
		return nil, fmt.Errorf("need at least 2 classes, got %d", len(classes))
	}
	classIndex := make(map[string]int, len(classes))
	for i, class := range classes {
		classIndex[class] = i
	}

	vectors := make([][]float64, len(samples))
	labels := make([]int, len(samples))
	for i, sample := range samples {
		vectors[i] = t.vectorizer.Transform(sample.Text)
		labels[i] = classIndex[sample.Label]
	}

	nFeatures := t.vectorizer.Config().NFeatures
	var weights [][]float64
	var bias []float64
	if len(classes) == 2 {
		row, b := t.fitBinary(vectors, labels, nFeatures)
		weights = [][]float64{negated(row), row}
		bias = []float64{-b, b}
	} else {
		weights, bias = t.fitMulticlass(vectors, labels, nFeatures, len(classes))
	}

	config := t.vectorizer.Config()
	return &Model{
		Type:    ModelTypeLogisticRegression,
		Classes: classes,
		Weights: weights,
		Bias:    bias,
		Vectorizer: VectorizerInfo{
			NFeatures:  config.NFeatures,
			NgramRange: config.NgramRange,
			Analyzer:   config.Analyzer,
		},
	}, nil
}

// fitBinary runs SGD on log loss for the positive class (index 1).
func (t *Trainer) fitBinary(vectors [][]float64, labels []int, nFeatures int) ([]float64, float64) {
	weights := make([]float64, nFeatures)
	bias := 0.0
	rnd := rand.New(rand.NewSource(t.config.Seed))
	lr := t.config.LearningRate
	l2 := t.config.L2

	for epoch := 0; epoch < t.config.Epochs; epoch++ {
		for _, i := range rnd.Perm(len(vectors)) {
			z := bias
			for j, x := range vectors[i] {
				if x != 0 {
					z += weights[j] * x
				}
			}
			grad := sigmoid(z) - float64(labels[i])
			for j, x := range vectors[i] {
				if x != 0 {
					weights[j] -= lr * (grad*x + l2*weights[j])
				}
			}
			bias -= lr * grad
		}
	}
	return weights, bias
}

// fitMulticlass runs SGD on the softmax cross-entropy, one row per class.
func (t *Trainer) fitMulticlass(vectors [][]float64, labels []int, nFeatures, nClasses int) ([][]float64, []float64) {
	weights := make([][]float64, nClasses)
	for c := range weights {
		weights[c] = make([]float64, nFeatures)
	}
	bias := make([]float64, nClasses)
	rnd := rand.New(rand.NewSource(t.config.Seed))
	lr := t.config.LearningRate
	l2 := t.config.L2

	scores := make([]float64, nClasses)
	for epoch := 0; epoch < t.config.Epochs; epoch++ {
		for _, i := range rnd.Perm(len(vectors)) {
			for c := 0; c < nClasses; c++ {
				z := bias[c]
				for j, x := range vectors[i] {
					if x != 0 {
						z += weights[c][j] * x
					}
				}
				scores[c] = z
			}
			probs := softmax(scores)
			for c := 0; c < nClasses; c++ {
				grad := probs[c]
				if c == labels[i] {
					grad -= 1
				}
				for j, x := range vectors[i] {
					if x != 0 {
						weights[c][j] -= lr * (grad*x + l2*weights[c][j])
					}
				}
				bias[c] -= lr * grad
			}
		}
	}
	return weights, bias
}

func collectClasses(samples []Sample) []string {
	seen := make(map[string]bool)
	var classes []string
	for _, sample := range samples {
		if !seen[sample.Label] {
			seen[sample.Label] = true
			classes = append(classes, sample.Label)
		}
	}
	sort.Strings(classes)
	return classes
}

func negated(row []float64) []float64 {
	out := make([]float64, len(row))
	for i, w := range row {
		out[i] = -w
	}
	return out
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
