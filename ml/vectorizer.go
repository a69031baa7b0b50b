package ml

import (
	"errors"
	"fmt"
)

const (
	// AnalyzerCharWB is the only analyzer this engine implements.
	AnalyzerCharWB = "char_wb"

	// DefaultNFeatures is the compiled-in hashed feature space size.
	DefaultNFeatures = 4096
)

// VectorizerConfig enumerates exactly the options the engine recognizes.
// AlternateSign and Norm exist so artifacts that request either behavior
// are rejected instead of silently vectorized differently.
type VectorizerConfig struct {
	NFeatures     int
	NgramRange    [2]int
	Analyzer      string
	AlternateSign bool
	Norm          string
}

// DefaultVectorizerConfig returns the configuration this engine is
// compiled for. A loaded model must declare the identical configuration.
func DefaultVectorizerConfig() VectorizerConfig {
	return VectorizerConfig{
		NFeatures:  DefaultNFeatures,
		NgramRange: [2]int{3, 5},
		Analyzer:   AnalyzerCharWB,
	}
}

func (c VectorizerConfig) Validate() error {
	if c.NFeatures <= 0 {
		return fmt.Errorf("nFeatures must be positive, got %d", c.NFeatures)
	}
	if c.NgramRange[0] <= 0 || c.NgramRange[1] < c.NgramRange[0] {
		return fmt.Errorf("invalid ngram range [%d,%d]", c.NgramRange[0], c.NgramRange[1])
	}
	if c.Analyzer != AnalyzerCharWB {
		return fmt.Errorf("unsupported analyzer %q", c.Analyzer)
	}
	if c.AlternateSign {
		return errors.New("alternate_sign is not supported")
	}
	if c.Norm != "" {
		return fmt.Errorf("normalization %q is not supported", c.Norm)
	}
	return nil
}

// HashingVectorizer turns text into a fixed-length term-frequency vector
// using the hashing trick: index = murmur3(token) mod NFeatures. Collisions
// accumulate; repeated n-grams increment rather than set a presence flag.
// The counting convention is part of the model contract and must not be
// simplified.
type HashingVectorizer struct {
	config VectorizerConfig
}

func NewHashingVectorizer(config VectorizerConfig) (*HashingVectorizer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &HashingVectorizer{config: config}, nil
}

func (v *HashingVectorizer) Config() VectorizerConfig {
	return v.config
}

// Transform vectorizes text. Pure function of (text, config); empty text
// yields an all-zero vector. Every produced index lies in [0, NFeatures).
func (v *HashingVectorizer) Transform(text string) []float64 {
	vector := make([]float64, v.config.NFeatures)
	tokens := TokenizeCharWB(SanitizeText(text), v.config.NgramRange[0], v.config.NgramRange[1])
	for _, token := range tokens {
		idx := HashToken(token) % uint32(v.config.NFeatures)
		vector[idx]++
	}
	return vector
}
