package ml

import (
	"context"
	"fmt"
	"math"
	"os"

	"ipl-win-predictor/internal/features"

	"gopkg.in/yaml.v3"
)

// LogisticModel is the persisted form of a one-hot encoded logistic
// regression. Categories missing from Categorical contribute nothing, which
// matches an encoder that ignores unknown values.
type LogisticModel struct {
	Version     string                        `yaml:"version" json:"version"`
	Intercept   float64                       `yaml:"intercept" json:"intercept"`
	Numeric     map[string]float64            `yaml:"numeric" json:"numeric"`
	Categorical map[string]map[string]float64 `yaml:"categorical" json:"categorical"`
}

// LogisticClassifier scores feature vectors with a LogisticModel.
type LogisticClassifier struct {
	model LogisticModel
}

// ParseLogistic decodes a model artifact. YAML and JSON are both accepted.
func ParseLogistic(data []byte) (*LogisticClassifier, error) {
	var m LogisticModel
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse model artifact: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid model artifact: %w", err)
	}
	return &LogisticClassifier{model: m}, nil
}

// LoadLogisticFile reads and parses a model artifact from disk.
func LoadLogisticFile(path string) (*LogisticClassifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}
	return ParseLogistic(data)
}

func (m LogisticModel) validate() error {
	if m.Version == "" {
		return fmt.Errorf("version is required")
	}
	if !finite(m.Intercept) {
		return fmt.Errorf("intercept is not finite")
	}

	known := make(map[string]bool, len(features.NumericColumns))
	for _, c := range features.NumericColumns {
		known[c] = true
	}
	for col, w := range m.Numeric {
		if !known[col] {
			return fmt.Errorf("unknown numeric column %q", col)
		}
		if !finite(w) {
			return fmt.Errorf("numeric coefficient %q is not finite", col)
		}
	}

	knownCat := map[string]bool{}
	for _, c := range features.CategoricalColumns {
		knownCat[c] = true
	}
	for col, levels := range m.Categorical {
		if !knownCat[col] {
			return fmt.Errorf("unknown categorical column %q", col)
		}
		for level, w := range levels {
			if !finite(w) {
				return fmt.Errorf("coefficient %s=%q is not finite", col, level)
			}
		}
	}
	return nil
}

// Version returns the artifact version.
func (c *LogisticClassifier) Version() string {
	return c.model.Version
}

// Estimate implements Classifier.
func (c *LogisticClassifier) Estimate(ctx context.Context, v features.Vector) (Probabilities, error) {
	if c == nil {
		return Probabilities{}, ErrClassifierUnavailable
	}
	if err := ctx.Err(); err != nil {
		return Probabilities{}, err
	}

	// Columns are summed in pipeline order so repeated calls give
	// bit-identical results.
	z := c.model.Intercept
	num := v.Numeric()
	for _, col := range features.NumericColumns {
		z += c.model.Numeric[col] * num[col]
	}
	cat := v.Categorical()
	for _, col := range features.CategoricalColumns {
		z += c.model.Categorical[col][cat[col]]
	}
	if !finite(z) {
		return Probabilities{}, fmt.Errorf("%w: non-finite score for %+v", ErrInferenceFailed, v)
	}

	win := sigmoid(z)
	return Probabilities{Loss: 1 - win, Win: win}, nil
}

// sigmoid converts a score to a probability
func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
