package query

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/citysafe/crimebot/pkg/util"
)

// WeeklyDirective is the command prefix that routes an utterance straight to
// forecast mode.
const WeeklyDirective = "/weekly"

// nightHour is the representative hour contributed by "tonight" when no
// explicit time is present.
const nightHour = 22

var (
	coordLatFirstRe = regexp.MustCompile(`(?i)\blat(?:itude)?\s+(-?\d{1,3}(?:\.\d+)?)\s*,?\s*(?:lng|lon|long(?:itude)?)\s+(-?\d{1,3}(?:\.\d+)?)`)
	coordLonFirstRe = regexp.MustCompile(`(?i)\b(?:lng|lon|long(?:itude)?)\s+(-?\d{1,3}(?:\.\d+)?)\s*,?\s*lat(?:itude)?\s+(-?\d{1,3}(?:\.\d+)?)`)
	coordPairRe     = regexp.MustCompile(`(-?\d{1,3}\.\d+)\s*(?:,\s*|\s+and\s+|\s+)(-?\d{1,3}\.\d+)`)

	placeRe      = regexp.MustCompile(`(?i)\b(?:in|at|near|around|for)\s+(?:the\s+)?([A-Za-z][A-Za-z'-]*(?:\s+[A-Za-z][A-Za-z'-]*){0,3})`)
	placeTokenRe = regexp.MustCompile(`^[A-Za-z][A-Za-z'-]*$`)

	isoDateRe      = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	usDateRe       = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	monthDayRe     = regexp.MustCompile(`\b(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{1,2})(?:st|nd|rd|th)?\b`)
	weekdayRe      = regexp.MustCompile(`\b(next\s+|last\s+)?(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	clockMinuteRe  = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\s*(am|pm)?\b`)
	clockAmPmRe    = regexp.MustCompile(`\b(\d{1,2})\s*(am|pm)\b`)
	periodRe       = regexp.MustCompile(`\b(morning|afternoon|evening|night|dawn|dusk)\b`)
	weeklyPhraseRe = regexp.MustCompile(`\b(?:weekly|week'?s)\s+(?:crime\s+)?forecast\b|\bforecast\s+for\s+the\s+week\b`)
)

var weekdayNames = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

var monthNames = []string{"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december"}

// periodHours maps named periods of the day to their canonical representative
// hour.
var periodHours = map[string]int{
	"morning":   8,
	"afternoon": 14,
	"evening":   19,
	"night":     nightHour,
	"dawn":      6,
	"dusk":      20,
}

// phraseStoppers terminate a place noun phrase; anything date- or time-like
// that follows a location preposition is not part of the place name.
var phraseStoppers = map[string]struct{}{
	"today": {}, "tonight": {}, "tomorrow": {}, "yesterday": {},
	"morning": {}, "afternoon": {}, "evening": {}, "night": {},
	"dawn": {}, "dusk": {}, "noon": {}, "midnight": {},
	"week": {}, "weekly": {}, "forecast": {},
	"at": {}, "on": {}, "in": {}, "during": {}, "next": {}, "last": {},
	"monday": {}, "tuesday": {}, "wednesday": {}, "thursday": {},
	"friday": {}, "saturday": {}, "sunday": {},
	"january": {}, "february": {}, "march": {}, "april": {}, "may": {},
	"june": {}, "july": {}, "august": {}, "september": {}, "october": {},
	"november": {}, "december": {},
}

// Extractor locates coordinates, place phrases, dates and times in raw user
// text using an ordered list of deterministic pattern rules. Malformed input
// never raises; undetected fields simply remain absent.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor constructs the extractor.
func NewExtractor(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logger.With("component", "query.extractor")}
}

// Extract resolves every recognizable field against the reference clock and
// returns a partially populated ParameterSet. Rule priority: coordinate pairs
// beat place phrases, explicit clock times beat period words, and the first
// occurrence of a field type wins.
func (e *Extractor) Extract(text string, now time.Time) ParameterSet {
	var params ParameterSet
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)

	directive := false
	if rest, ok := strings.CutPrefix(trimmed, WeeklyDirective); ok {
		params.WeeklyForecast = true
		directive = true
		trimmed = strings.TrimSpace(rest)
		lower = strings.ToLower(trimmed)
	} else if weeklyPhraseRe.MatchString(lower) {
		params.WeeklyForecast = true
	}

	if lat, lon, ok := extractCoordinates(trimmed); ok {
		params.Latitude = &lat
		params.Longitude = &lon
	} else if place, ok := extractPlace(trimmed); ok {
		params.PlaceName = &place
	} else if directive {
		// The directive remainder carries no introducing preposition, so a
		// bare "/weekly downtown Chicago" still names its place.
		if place, ok := leadingPlace(trimmed); ok {
			params.PlaceName = &place
		}
	}

	date, nightHint := resolveDate(lower, now)
	params.Date = date

	hour := resolveHour(lower)
	if hour == nil && nightHint {
		h := nightHour
		hour = &h
	}

	if params.WeeklyForecast {
		params.HourFilter = hour
	} else {
		params.Hour = hour
	}

	e.logger.Debug("extracted parameters",
		"coordinates", params.HasCoordinates(),
		"place", params.PlaceName != nil,
		"date", params.HasDate(),
		"hour", hour != nil,
		"weekly", params.WeeklyForecast)
	return params
}

// extractCoordinates finds the first decimal pair that satisfies geographic
// range constraints. Worded forms (latitude X, longitude Y) take priority
// because they are unambiguous about ordering.
func extractCoordinates(text string) (lat, lon float64, ok bool) {
	if m := coordLatFirstRe.FindStringSubmatch(text); m != nil {
		return orientPair(parseFloat(m[1]), parseFloat(m[2]))
	}
	if m := coordLonFirstRe.FindStringSubmatch(text); m != nil {
		return orientPair(parseFloat(m[2]), parseFloat(m[1]))
	}
	for _, m := range coordPairRe.FindAllStringSubmatch(text, -1) {
		if lat, lon, ok = orientPair(parseFloat(m[1]), parseFloat(m[2])); ok {
			return lat, lon, true
		}
	}
	return 0, 0, false
}

// orientPair decides which half of a decimal pair is the latitude. A value
// outside [-90,90] can only be a longitude.
func orientPair(first, second float64) (lat, lon float64, ok bool) {
	inLat := func(v float64) bool { return v >= -90 && v <= 90 }
	inLon := func(v float64) bool { return v >= -180 && v <= 180 }
	switch {
	case inLat(first) && inLat(second) && first < 0 && second > 0:
		// Both orderings are range-valid; a negative leading value written
		// next to a positive one reads as "longitude, latitude".
		return second, first, true
	case inLat(first) && inLon(second):
		return first, second, true
	case inLon(first) && inLat(second):
		return second, first, true
	default:
		return 0, 0, false
	}
}

// extractPlace pulls a location noun phrase introduced by a preposition.
// Leading date- or time-like tokens are skipped and the phrase is cut at the
// next one, so "for the week in Chicago" yields "Chicago" and "downtown
// Chicago at 10pm" yields just "downtown Chicago".
func extractPlace(text string) (string, bool) {
	for _, m := range placeRe.FindAllStringSubmatch(text, -1) {
		if place, ok := placePhrase(strings.Fields(m[1])); ok {
			return place, true
		}
	}
	return "", false
}

// leadingPlace reads a place phrase straight off a forecast directive
// remainder, which carries no introducing preposition.
func leadingPlace(text string) (string, bool) {
	tokens := make([]string, 0, 8)
	for _, token := range strings.Fields(text) {
		token = strings.TrimRight(token, "?.!,;:")
		if !placeTokenRe.MatchString(token) {
			break
		}
		tokens = append(tokens, token)
	}
	return placePhrase(tokens)
}

// placePhrase trims leading stopper tokens and keeps up to four tokens until
// the next stopper.
func placePhrase(tokens []string) (string, bool) {
	for len(tokens) > 0 {
		if _, stop := phraseStoppers[strings.ToLower(tokens[0])]; !stop {
			break
		}
		tokens = tokens[1:]
	}
	kept := make([]string, 0, 4)
	for _, token := range tokens {
		if _, stop := phraseStoppers[strings.ToLower(token)]; stop {
			break
		}
		kept = append(kept, token)
		if len(kept) == 4 {
			break
		}
	}
	if len(kept) == 0 {
		return "", false
	}
	return strings.Join(kept, " "), true
}

// resolveDate resolves relative and absolute date expressions to a calendar
// day. The second return reports a "tonight" hint that supplies a default
// evening hour when the utterance carries no explicit time.
func resolveDate(lower string, now time.Time) (*time.Time, bool) {
	today := util.DateOnly(now)

	if strings.Contains(lower, "tonight") {
		return &today, true
	}
	if strings.Contains(lower, "today") {
		return &today, false
	}
	if strings.Contains(lower, "tomorrow") {
		d := today.AddDate(0, 0, 1)
		return &d, false
	}
	if strings.Contains(lower, "yesterday") {
		d := today.AddDate(0, 0, -1)
		return &d, false
	}

	if m := weekdayRe.FindStringSubmatch(lower); m != nil {
		target := indexOf(weekdayNames, m[2])
		qualifier := strings.TrimSpace(m[1])
		if qualifier == "last" {
			back := util.WeekdayIndex(now) - target
			if back <= 0 {
				back += 7
			}
			d := today.AddDate(0, 0, -back)
			return &d, false
		}
		ahead := target - util.WeekdayIndex(now)
		if ahead <= 0 {
			ahead += 7
		}
		if qualifier == "next" {
			ahead += 7
		}
		d := today.AddDate(0, 0, ahead)
		return &d, false
	}

	if m := isoDateRe.FindStringSubmatch(lower); m != nil {
		return buildDate(parseInt(m[1]), parseInt(m[2]), parseInt(m[3]), now.Location()), false
	}
	if m := usDateRe.FindStringSubmatch(lower); m != nil {
		return buildDate(parseInt(m[3]), parseInt(m[1]), parseInt(m[2]), now.Location()), false
	}
	if m := monthDayRe.FindStringSubmatch(lower); m != nil {
		return buildDate(now.Year(), indexOf(monthNames, m[1])+1, parseInt(m[2]), now.Location()), false
	}

	switch {
	case strings.Contains(lower, "christmas"):
		return buildDate(now.Year(), 12, 25, now.Location()), false
	case strings.Contains(lower, "new year"):
		return buildDate(now.Year(), 1, 1, now.Location()), false
	case strings.Contains(lower, "valentine"):
		return buildDate(now.Year(), 2, 14, now.Location()), false
	}

	return nil, false
}

// resolveHour resolves clock times and period words to a 24-hour value. An
// explicitly stated clock time always beats a period word in the same
// utterance.
func resolveHour(lower string) *int {
	if strings.Contains(lower, "midnight") {
		return intPtr(0)
	}
	if strings.Contains(lower, "noon") {
		return intPtr(12)
	}

	if m := clockMinuteRe.FindStringSubmatch(lower); m != nil {
		if h, ok := to24Hour(parseInt(m[1]), m[3]); ok {
			return &h
		}
	}
	if m := clockAmPmRe.FindStringSubmatch(lower); m != nil {
		if h, ok := to24Hour(parseInt(m[1]), m[2]); ok {
			return &h
		}
	}
	if m := periodRe.FindStringSubmatch(lower); m != nil {
		h := periodHours[m[1]]
		return &h
	}
	return nil
}

// to24Hour applies am/pm conversion, treating 12am as midnight and 12pm as
// noon. Out-of-range hours are discarded rather than raised.
func to24Hour(hour int, meridiem string) (int, bool) {
	switch meridiem {
	case "am":
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour < 12 {
			hour += 12
		}
	}
	if hour < 0 || hour > 23 {
		return 0, false
	}
	return hour, true
}

func buildDate(year, month, day int, loc *time.Location) *time.Time {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if d.Day() != day {
		// Normalization means the day overflowed the month.
		return nil
	}
	return &d
}

func indexOf(values []string, v string) int {
	for i, candidate := range values {
		if candidate == v {
			return i
		}
	}
	return -1
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func parseInt(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}

func intPtr(v int) *int {
	return &v
}
