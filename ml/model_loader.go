package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ParseModel decodes and validates a model artifact against the engine
// configuration. A malformed artifact or a configuration mismatch rejects
// the whole model; there is no partial load.
func ParseModel(data []byte, engine VectorizerConfig) (*Model, error) {
	var model Model
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelLoad, err)
	}
	if err := model.Validate(engine); err != nil {
		return nil, err
	}
	return &model, nil
}

// LoadModelFile reads a model artifact from disk.
func LoadModelFile(path string, engine VectorizerConfig) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	return ParseModel(data, engine)
}

// SaveModelFile writes the artifact in the shape the training exporter
// and the Workers runtime agree on. The model is validated first so a
// broken trainer cannot persist an artifact the engine would refuse.
func SaveModelFile(model *Model, path string) error {
	if err := model.Validate(DefaultVectorizerConfig()); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(model, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}
