package forecast

import (
	"fmt"
	"strings"
	"time"

	"github.com/citysafe/crimebot/pkg/metrics"
	"github.com/citysafe/crimebot/pkg/util"
)

// Request describes one weekly forecast run. StartDate is the first of the
// seven calendar days covered.
type Request struct {
	Latitude   float64
	Longitude  float64
	StartDate  time.Time
	HourFilter *int
}

// Point is one prediction on the weekly time grid.
type Point struct {
	Date        time.Time `json:"date"`
	Hour        int       `json:"hour"`
	Probability float64   `json:"probability"`
}

// Stats summarizes the point probabilities within one grouping.
type Stats struct {
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Samples int     `json:"samples"`
}

// Forecast is the reduced result of a weekly batch: the raw grid points plus
// per-day and per-hour summaries and a risk ranking.
type Forecast struct {
	Latitude     float64             `json:"latitude"`
	Longitude    float64             `json:"longitude"`
	StartDate    time.Time           `json:"startDate"`
	HourFilter   *int                `json:"hourFilter,omitempty"`
	Points       []Point             `json:"points"`
	ByDay        map[string]Stats    `json:"byDay"`
	ByHour       map[int]Stats       `json:"byHour"`
	SafestDay    string              `json:"safestDay"`
	RiskiestDay  string              `json:"riskiestDay"`
	SafestHour   int                 `json:"safestHour"`
	RiskiestHour int                 `json:"riskiestHour"`
	Usage        metrics.OracleUsage `json:"usage"`
}

// Format renders the deterministic text block describing the forecast.
// Downstream prose generation must preserve the percentages verbatim.
func (f Forecast) Format() string {
	endDate := f.StartDate.AddDate(0, 0, 6)

	var b strings.Builder
	b.WriteString("Weekly Crime Probability Forecast\n")
	fmt.Fprintf(&b, "Location: (%.4f, %.4f)\n", f.Latitude, f.Longitude)
	fmt.Fprintf(&b, "Period: %s to %s\n", f.StartDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
	if f.HourFilter != nil {
		fmt.Fprintf(&b, "Time: %s each day\n", util.Clock12(*f.HourFilter))
		fmt.Fprintf(&b, "Samples: 7 days at the same hour (%d total predictions)\n", len(f.Points))
	} else {
		fmt.Fprintf(&b, "Samples: every %d hours, %d total predictions\n", gridHourStep, len(f.Points))
	}

	overall := summarize(probabilities(f.Points))
	b.WriteString("\nOverall Summary:\n")
	fmt.Fprintf(&b, "- Average probability: %.1f%%\n", overall.Average*100)
	fmt.Fprintf(&b, "- Range: %.1f%% to %.1f%%\n", overall.Min*100, overall.Max*100)

	b.WriteString("\nDaily Breakdown:\n")
	for _, day := range f.weekOrder() {
		stats := f.ByDay[day]
		if f.HourFilter != nil {
			fmt.Fprintf(&b, "- %s: %.1f%% crime probability\n", day, stats.Average*100)
		} else {
			fmt.Fprintf(&b, "- %s: %.1f%% avg (%.1f%% to %.1f%%)\n",
				day, stats.Average*100, stats.Min*100, stats.Max*100)
		}
	}

	b.WriteString("\nRisk Assessment:\n")
	fmt.Fprintf(&b, "- Safest day: %s\n", f.SafestDay)
	fmt.Fprintf(&b, "- Highest risk day: %s\n", f.RiskiestDay)
	if f.HourFilter == nil {
		fmt.Fprintf(&b, "- Safest time: %s\n", util.Clock12(f.SafestHour))
		fmt.Fprintf(&b, "- Highest risk time: %s", util.Clock12(f.RiskiestHour))
	} else {
		b.WriteString(fmt.Sprintf("- Forecast hour: %s", util.Clock12(*f.HourFilter)))
	}
	return b.String()
}

// weekOrder lists the weekday names in grid order, starting at StartDate.
func (f Forecast) weekOrder() []string {
	order := make([]string, 0, 7)
	for day := 0; day < 7; day++ {
		order = append(order, f.StartDate.AddDate(0, 0, day).Weekday().String())
	}
	return order
}

func probabilities(points []Point) []float64 {
	probs := make([]float64, len(points))
	for i, pt := range points {
		probs[i] = pt.Probability
	}
	return probs
}

func summarize(probs []float64) Stats {
	if len(probs) == 0 {
		return Stats{}
	}
	stats := Stats{Min: probs[0], Max: probs[0], Samples: len(probs)}
	total := 0.0
	for _, p := range probs {
		total += p
		if p < stats.Min {
			stats.Min = p
		}
		if p > stats.Max {
			stats.Max = p
		}
	}
	stats.Average = total / float64(len(probs))
	return stats
}
