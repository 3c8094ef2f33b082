package query

import "time"

// ParameterSet is the canonical request shape produced by extraction. Every
// field is explicitly optional so completeness checks stay exhaustive; absent
// fields are nil pointers, never zero values. Values are copied across the
// pipeline, the set is never shared mutable state.
type ParameterSet struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	PlaceName *string  `json:"placeName,omitempty"`
	// Date is the resolved calendar day; relative expressions are resolved
	// against the reference clock at extraction time.
	Date *time.Time `json:"date,omitempty"`
	// Hour is the resolved 24-hour time of day.
	Hour *int `json:"hour,omitempty"`
	// WeeklyForecast marks the utterance as a forecast request rather than a
	// point prediction. It is a per-turn flag, never inherited from memory.
	WeeklyForecast bool `json:"weeklyForecast,omitempty"`
	// HourFilter pins a weekly forecast to one hour across all seven days.
	HourFilter *int `json:"hourFilter,omitempty"`
}

// HasCoordinates reports whether both halves of the coordinate pair are set.
func (p ParameterSet) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// HasLocation reports whether the set carries any location information,
// either resolved coordinates or a free-text place name.
func (p ParameterSet) HasLocation() bool {
	return p.HasCoordinates() || p.PlaceName != nil
}

// HasDate reports whether a calendar day was resolved.
func (p ParameterSet) HasDate() bool {
	return p.Date != nil
}

// HasTime reports whether an hour of day was resolved.
func (p ParameterSet) HasTime() bool {
	return p.Hour != nil
}

// IsEmpty reports whether extraction found nothing at all.
func (p ParameterSet) IsEmpty() bool {
	return !p.HasLocation() && !p.HasDate() && !p.HasTime() && !p.WeeklyForecast
}
