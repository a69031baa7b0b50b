package ml

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
)

// Sample is one training record, the contract the dataset producers feed
// the vectorizer: one JSON object per line.
type Sample struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// LoadDataset reads a JSONL dataset. Blank lines are skipped; a malformed
// line fails the whole load so a truncated dataset is never trained on
// silently.
func LoadDataset(path string) ([]Sample, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var samples []Sample
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var sample Sample
		if err := json.Unmarshal(raw, &sample); err != nil {
			return nil, fmt.Errorf("dataset line %d: %w", line, err)
		}
		if sample.Label == "" {
			return nil, fmt.Errorf("dataset line %d: missing label", line)
		}
		samples = append(samples, sample)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, errors.New("dataset is empty")
	}
	return samples, nil
}

// SplitDataset shuffles with the given seed and splits into train/test.
func SplitDataset(samples []Sample, testRatio float64, seed int64) (train, test []Sample) {
	if testRatio <= 0 || testRatio >= 1 {
		testRatio = 0.2
	}
	rnd := rand.New(rand.NewSource(seed))
	indices := rnd.Perm(len(samples))

	split := int(math.Round(float64(len(samples)) * (1 - testRatio)))
	for i, idx := range indices {
		if i < split {
			train = append(train, samples[idx])
		} else {
			test = append(test, samples[idx])
		}
	}
	return train, test
}

// Metrics summarizes model quality on a held-out set.
type Metrics struct {
	Accuracy  float64            `json:"accuracy"`
	Samples   int                `json:"samples"`
	Precision map[string]float64 `json:"precision"`
	Recall    map[string]float64 `json:"recall"`
}

// MacroPrecision averages precision over the classes that appear in the
// report.
func (m Metrics) MacroPrecision() float64 {
	return macroAverage(m.Precision)
}

// MacroRecall averages recall over the classes that appear in the report.
func (m Metrics) MacroRecall() float64 {
	return macroAverage(m.Recall)
}

func macroAverage(values map[string]float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0.0
	for _, value := range values {
		total += value
	}
	return total / float64(len(values))
}

// EvaluateModel scores every sample and reports accuracy plus per-class
// precision and recall.
func EvaluateModel(model *Model, vectorizer *HashingVectorizer, samples []Sample) (Metrics, error) {
	metrics := Metrics{
		Samples:   len(samples),
		Precision: make(map[string]float64),
		Recall:    make(map[string]float64),
	}
	if len(samples) == 0 {
		return metrics, nil
	}

	correct := 0
	truePositive := make(map[string]int)
	predicted := make(map[string]int)
	actual := make(map[string]int)
	for _, sample := range samples {
		prediction, err := model.Predict(vectorizer.Transform(sample.Text))
		if err != nil {
			return Metrics{}, err
		}
		predicted[prediction.Label]++
		actual[sample.Label]++
		if prediction.Label == sample.Label {
			correct++
			truePositive[sample.Label]++
		}
	}

	metrics.Accuracy = float64(correct) / float64(len(samples))
	for _, class := range model.Classes {
		if predicted[class] > 0 {
			metrics.Precision[class] = float64(truePositive[class]) / float64(predicted[class])
		}
		if actual[class] > 0 {
			metrics.Recall[class] = float64(truePositive[class]) / float64(actual[class])
		}
	}
	return metrics, nil
}
