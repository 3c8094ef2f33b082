package model

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/citysafe/crimebot/internal/domain/predictor"
)

// expectedFeatures is the feature ordering the service encodes. An artifact
// declaring a different ordering is rejected at load time rather than
// silently producing garbage.
var expectedFeatures = []string{"cos_hour", "sin_hour", "cos_weekday", "sin_weekday", "longitude", "latitude"}

// wellKnownPaths are probed in order when no explicit path is configured.
var wellKnownPaths = []string{
	"crime_model.json",
	filepath.Join("models", "crime_model.json"),
	filepath.Join("data", "models", "crime_model.json"),
}

type artifactFile struct {
	FeatureNames []string  `json:"feature_names"`
	Weights      []float64 `json:"weights"`
	Intercept    float64   `json:"intercept"`
}

// LogisticModel is the classifier artifact: a logistic regression over the
// six encoded features. Immutable after load.
type LogisticModel struct {
	weights   predictor.FeatureVector
	intercept float64
}

// PredictProbability implements predictor.Model.
func (m *LogisticModel) PredictProbability(features predictor.FeatureVector) (float64, error) {
	logit := m.intercept
	for i, w := range m.weights {
		logit += w * features[i]
	}
	return 1.0 / (1.0 + math.Exp(-logit)), nil
}

// Load reads and validates a classifier artifact from disk.
func Load(path string) (*LogisticModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	var file artifactFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse model artifact: %w", err)
	}
	if len(file.Weights) != predictor.FeatureCount {
		return nil, fmt.Errorf("model artifact has %d weights, expected %d", len(file.Weights), predictor.FeatureCount)
	}
	if len(file.FeatureNames) > 0 {
		if len(file.FeatureNames) != predictor.FeatureCount {
			return nil, fmt.Errorf("model artifact declares %d feature names, expected %d", len(file.FeatureNames), predictor.FeatureCount)
		}
		for i, name := range file.FeatureNames {
			if name != expectedFeatures[i] {
				return nil, fmt.Errorf("model artifact feature order mismatch at %d: got %q, expected %q", i, name, expectedFeatures[i])
			}
		}
	}

	loaded := &LogisticModel{intercept: file.Intercept}
	copy(loaded.weights[:], file.Weights)
	return loaded, nil
}

// Locate resolves the artifact path, trying the configured location first
// and then the well-known search locations.
func Locate(configuredPath string) (string, bool) {
	candidates := wellKnownPaths
	if configuredPath != "" {
		candidates = append([]string{configuredPath}, candidates...)
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}
