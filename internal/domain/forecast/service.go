package forecast

import (
	"context"
	"log/slog"
	"sort"

	"github.com/citysafe/crimebot/internal/domain/predictor"
	apperrors "github.com/citysafe/crimebot/pkg/errors"
	"github.com/citysafe/crimebot/pkg/metrics"
	"github.com/citysafe/crimebot/pkg/util"
)

// gridHourStep is the sampling interval when no hour filter is active:
// 4 points per day, 28 across the week.
const gridHourStep = 6

// forecastDays is the fixed length of the forecast window.
const forecastDays = 7

// Oracle is the prediction dependency consumed by the engine.
type Oracle interface {
	Predict(ctx context.Context, features predictor.FeatureVector) (float64, error)
}

// Service produces weekly crime forecasts.
type Service interface {
	Forecast(ctx context.Context, req Request) (Forecast, error)
}

type engine struct {
	oracle Oracle
	logger *slog.Logger
}

// NewEngine wires the forecast engine.
func NewEngine(oracle Oracle, logger *slog.Logger) Service {
	return &engine{oracle: oracle, logger: logger.With("component", "forecast.engine")}
}

// Forecast builds the 7-day time grid, invokes the oracle once per distinct
// feature vector, and reduces the raw points into day/hour summaries. The
// call is atomic: any oracle failure aborts the whole batch, because a
// partially aggregated week would be statistically misleading.
func (e *engine) Forecast(ctx context.Context, req Request) (Forecast, error) {
	start := util.DateOnly(req.StartDate)

	hours := gridHours(req.HourFilter)
	points := make([]Point, 0, forecastDays*len(hours))

	// Memoized per call only: the cache key is a feature vector, which is
	// valid under exactly one reference date and location.
	memo := make(map[predictor.FeatureVector]float64, forecastDays*len(hours))
	usage := metrics.OracleUsage{}

	for day := 0; day < forecastDays; day++ {
		date := start.AddDate(0, 0, day)
		for _, hour := range hours {
			usage.PointsRequested++
			features, err := predictor.Encode(date, hour, req.Longitude, req.Latitude)
			if err != nil {
				// Ranges were validated upstream; reaching this is a defect.
				e.logger.Error("grid point failed encoding", "date", date, "hour", hour, "error", err)
				return Forecast{}, apperrors.Wrap(apperrors.CodeInvalidInput,
					"forecast grid point could not be encoded", err)
			}

			prob, hit := memo[features]
			if !hit {
				prob, err = e.oracle.Predict(ctx, features)
				if err != nil {
					return Forecast{}, apperrors.Wrap(apperrors.CodeOracleError,
						"weekly forecast aborted, no partial summaries are produced", err)
				}
				memo[features] = prob
				usage.OracleCalls++
			} else {
				usage.CacheHits++
			}

			points = append(points, Point{Date: date, Hour: hour, Probability: prob})
		}
	}

	result := Forecast{
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		StartDate:  start,
		HourFilter: req.HourFilter,
		Points:     points,
		ByDay:      groupByDay(points),
		ByHour:     groupByHour(points),
		Usage:      usage,
	}
	result.SafestDay, result.RiskiestDay = rankDays(result.weekOrder(), result.ByDay)
	result.SafestHour, result.RiskiestHour = rankHours(result.ByHour)

	e.logger.Info("weekly forecast complete",
		"points", usage.PointsRequested,
		"oracle_calls", usage.OracleCalls,
		"cache_hits", usage.CacheHits)
	return result, nil
}

func gridHours(hourFilter *int) []int {
	if hourFilter != nil {
		return []int{*hourFilter}
	}
	hours := make([]int, 0, 24/gridHourStep)
	for h := 0; h < 24; h += gridHourStep {
		hours = append(hours, h)
	}
	return hours
}

func groupByDay(points []Point) map[string]Stats {
	grouped := make(map[string][]float64, forecastDays)
	for _, pt := range points {
		day := pt.Date.Weekday().String()
		grouped[day] = append(grouped[day], pt.Probability)
	}
	stats := make(map[string]Stats, len(grouped))
	for day, probs := range grouped {
		stats[day] = summarize(probs)
	}
	return stats
}

func groupByHour(points []Point) map[int]Stats {
	grouped := make(map[int][]float64)
	for _, pt := range points {
		grouped[pt.Hour] = append(grouped[pt.Hour], pt.Probability)
	}
	stats := make(map[int]Stats, len(grouped))
	for hour, probs := range grouped {
		stats[hour] = summarize(probs)
	}
	return stats
}

// rankDays resolves safest/riskiest by average, ties broken toward the
// earlier day in the forecast window.
func rankDays(weekOrder []string, byDay map[string]Stats) (safest, riskiest string) {
	for _, day := range weekOrder {
		stats, ok := byDay[day]
		if !ok {
			continue
		}
		if safest == "" || stats.Average < byDay[safest].Average {
			safest = day
		}
		if riskiest == "" || stats.Average > byDay[riskiest].Average {
			riskiest = day
		}
	}
	return safest, riskiest
}

// rankHours resolves safest/riskiest by average, ties broken toward the
// earlier hour of the day.
func rankHours(byHour map[int]Stats) (safest, riskiest int) {
	hours := make([]int, 0, len(byHour))
	for hour := range byHour {
		hours = append(hours, hour)
	}
	sort.Ints(hours)
	if len(hours) == 0 {
		return 0, 0
	}
	safest, riskiest = hours[0], hours[0]
	for _, hour := range hours[1:] {
		if byHour[hour].Average < byHour[safest].Average {
			safest = hour
		}
		if byHour[hour].Average > byHour[riskiest].Average {
			riskiest = hour
		}
	}
	return safest, riskiest
}
