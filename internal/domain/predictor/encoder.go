package predictor

import (
	"fmt"
	"math"
	"time"

	apperrors "github.com/citysafe/crimebot/pkg/errors"
	"github.com/citysafe/crimebot/pkg/util"
)

// FeatureCount is the width of the classifier input vector.
const FeatureCount = 6

// FeatureVector is the ordered input expected by the classifier:
// [cos(hour), sin(hour), cos(weekday), sin(weekday), longitude, latitude].
// The ordering is a hard contract with the trained artifact and must never
// be permuted.
type FeatureVector [FeatureCount]float64

// Encode turns a calendar day, hour of day and coordinate pair into the
// classifier feature vector. Hour and weekday are projected onto the unit
// circle so that 23:00 and 00:00 stay numerically adjacent.
func Encode(date time.Time, hour int, longitude, latitude float64) (FeatureVector, error) {
	if hour < 0 || hour > 23 {
		return FeatureVector{}, apperrors.Wrap(apperrors.CodeInvalidInput,
			fmt.Sprintf("hour must be within [0,23], got %d", hour), nil)
	}
	if longitude < -180 || longitude > 180 {
		return FeatureVector{}, apperrors.Wrap(apperrors.CodeInvalidInput,
			fmt.Sprintf("longitude must be within [-180,180], got %g", longitude), nil)
	}
	if latitude < -90 || latitude > 90 {
		return FeatureVector{}, apperrors.Wrap(apperrors.CodeInvalidInput,
			fmt.Sprintf("latitude must be within [-90,90], got %g", latitude), nil)
	}

	hourAngle := 2 * math.Pi * float64(hour) / 24.0
	weekdayAngle := 2 * math.Pi * float64(util.WeekdayIndex(date)) / 7.0

	return FeatureVector{
		math.Cos(hourAngle),
		math.Sin(hourAngle),
		math.Cos(weekdayAngle),
		math.Sin(weekdayAngle),
		longitude,
		latitude,
	}, nil
}
