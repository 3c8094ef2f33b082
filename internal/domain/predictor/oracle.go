package predictor

import (
	"context"
	"log/slog"

	apperrors "github.com/citysafe/crimebot/pkg/errors"
)

// Model is the opaque trained classifier. Implementations are loaded once at
// process start and treated as immutable afterwards.
type Model interface {
	PredictProbability(features FeatureVector) (float64, error)
}

// Oracle adapts the classifier artifact to the rest of the pipeline. The
// returned probability is always clamped to [0,1]; an unloaded artifact
// yields a model_unavailable error on every call rather than a default.
type Oracle struct {
	model  Model
	logger *slog.Logger
}

// NewOracle wraps the classifier. A nil model is allowed so the service can
// start without an artifact and report the condition per request.
func NewOracle(model Model, logger *slog.Logger) *Oracle {
	return &Oracle{model: model, logger: logger.With("component", "predictor.oracle")}
}

// Available reports whether an artifact is loaded.
func (o *Oracle) Available() bool {
	return o.model != nil
}

// Predict runs the classifier over one encoded feature vector.
func (o *Oracle) Predict(_ context.Context, features FeatureVector) (float64, error) {
	if o.model == nil {
		return 0, apperrors.Wrap(apperrors.CodeModelUnavailable,
			"crime prediction model is not loaded", nil)
	}
	prob, err := o.model.PredictProbability(features)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeOracleError, "classifier prediction failed", err)
	}
	if prob < 0 {
		o.logger.Warn("classifier returned probability below 0, clamping", "probability", prob)
		prob = 0
	}
	if prob > 1 {
		o.logger.Warn("classifier returned probability above 1, clamping", "probability", prob)
		prob = 1
	}
	return prob, nil
}
