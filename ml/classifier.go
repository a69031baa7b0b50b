package ml

import (
	"errors"
	"sync/atomic"
	"time"
)

// Classifier binds the hashing vectorizer to an atomically swappable
// model. Classification is pure and lock-free; Reload validates the new
// artifact completely before swapping, so in-flight calls always see a
// self-consistent model.
type Classifier struct {
	vectorizer *HashingVectorizer
	path       string

	model    atomic.Pointer[Model]
	loadedAt atomic.Pointer[time.Time]
}

func NewClassifier(path string) (*Classifier, error) {
	vectorizer, err := NewHashingVectorizer(DefaultVectorizerConfig())
	if err != nil {
		return nil, err
	}
	c := &Classifier{vectorizer: vectorizer, path: path}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-reads the artifact from disk and swaps it in. On failure the
// previous model stays active.
func (c *Classifier) Reload() error {
	model, err := LoadModelFile(c.path, c.vectorizer.Config())
	if err != nil {
		return err
	}
	now := time.Now()
	c.model.Store(model)
	c.loadedAt.Store(&now)
	return nil
}

// Classify vectorizes text and applies the decision rule. Empty text is
// valid: the all-zero vector makes the decision bias-driven.
func (c *Classifier) Classify(text string) (Prediction, error) {
	model := c.model.Load()
	if model == nil {
		return Prediction{}, errors.New("no model loaded")
	}
	return model.Predict(c.vectorizer.Transform(text))
}

// Model returns the currently active model.
func (c *Classifier) Model() *Model {
	return c.model.Load()
}

// Path returns the artifact path the classifier loads from.
func (c *Classifier) Path() string {
	return c.path
}

// LoadedAt reports when the active model was swapped in.
func (c *Classifier) LoadedAt() time.Time {
	if ts := c.loadedAt.Load(); ts != nil {
		return *ts
	}
	return time.Time{}
}
