package chat

import (
	"fmt"
	"time"
)

// riskLevel buckets a percentage into the wording used by the explanation
// template.
func riskLevel(percent float64) string {
	switch {
	case percent < 20:
		return "very low"
	case percent < 40:
		return "low"
	case percent < 60:
		return "moderate"
	case percent < 80:
		return "high"
	default:
		return "very high"
	}
}

// timeContext names the part of day a prediction falls into.
func timeContext(hour int) string {
	switch {
	case hour < 6:
		return "late night/early morning"
	case hour < 12:
		return "morning"
	case hour < 18:
		return "afternoon"
	default:
		return "evening"
	}
}

// buildExplanation produces the deterministic gloss of a point prediction.
// It always restates the exact probability value used; this string is the
// single source of truth the prose layer must not rescale.
func buildExplanation(probability, lat, lon float64, date time.Time, hour int) string {
	percent := probability * 100
	return fmt.Sprintf(
		"For the location at coordinates (%.4f, %.4f) on %s at %02d:00, "+
			"the model predicts a %s risk of crime with a probability of %.1f%%. "+
			"The prediction takes into account that this is a %s %s.",
		lat, lon, date.Format("2006-01-02"), hour,
		riskLevel(percent), percent,
		date.Weekday().String(), timeContext(hour))
}
