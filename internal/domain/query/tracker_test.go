package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }

func timePtr(v time.Time) *time.Time { return &v }

func fullSet() ParameterSet {
	return ParameterSet{
		Latitude:  floatPtr(41.8781),
		Longitude: floatPtr(-87.6298),
		Date:      timePtr(day(2026, 1, 7)),
		Hour:      intPtr(22),
	}
}

func TestIsFollowUp(t *testing.T) {
	cases := []struct {
		name       string
		newSet     ParameterSet
		remembered ParameterSet
		firstTurn  bool
		want       bool
	}{
		{name: "first turn is never a follow-up", newSet: ParameterSet{}, remembered: fullSet(), firstTurn: true, want: false},
		{name: "no location in new turn inherits", newSet: ParameterSet{Hour: intPtr(8)}, remembered: fullSet(), want: true},
		{name: "new coordinates start fresh", newSet: ParameterSet{Latitude: floatPtr(1), Longitude: floatPtr(2)}, remembered: fullSet(), want: false},
		{name: "place name counts as location", newSet: ParameterSet{PlaceName: strPtr("hyde park")}, remembered: fullSet(), want: false},
		{name: "nothing remembered", newSet: ParameterSet{Hour: intPtr(8)}, remembered: ParameterSet{}, want: false},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, IsFollowUp(tc.newSet, tc.remembered, tc.firstTurn), tc.name)
	}
}

func TestMergeFollowUpInheritsOmittedFields(t *testing.T) {
	remembered := fullSet()
	newSet := ParameterSet{Date: timePtr(day(2026, 1, 8))}

	merged := Merge(newSet, remembered, true)

	require.Equal(t, 41.8781, *merged.Latitude)
	require.Equal(t, -87.6298, *merged.Longitude)
	require.Equal(t, day(2026, 1, 8), *merged.Date)
	require.Equal(t, 22, *merged.Hour)
}

func TestMergeFollowUpWithEmptySetIsIdempotent(t *testing.T) {
	remembered := fullSet()

	merged := Merge(ParameterSet{}, remembered, true)

	require.Equal(t, *remembered.Latitude, *merged.Latitude)
	require.Equal(t, *remembered.Longitude, *merged.Longitude)
	require.Equal(t, *remembered.Date, *merged.Date)
	require.Equal(t, *remembered.Hour, *merged.Hour)
}

func TestMergeNonFollowUpResetsOmittedFields(t *testing.T) {
	remembered := fullSet()
	newSet := ParameterSet{Latitude: floatPtr(40.7128), Longitude: floatPtr(-74.006)}

	merged := Merge(newSet, remembered, false)

	require.Equal(t, 40.7128, *merged.Latitude)
	require.Nil(t, merged.Date)
	require.Nil(t, merged.Hour)
	require.Nil(t, merged.PlaceName)
}

func TestMergeCoordinatesMoveAsAPair(t *testing.T) {
	remembered := fullSet()
	// A follow-up that names a place must not inherit half-stale coordinates.
	newSet := ParameterSet{Hour: intPtr(9)}

	merged := Merge(newSet, remembered, true)
	require.True(t, merged.HasCoordinates())

	// New coordinates fully replace the remembered pair.
	fresh := ParameterSet{Latitude: floatPtr(1.0), Longitude: floatPtr(2.0)}
	merged = Merge(fresh, remembered, false)
	require.Equal(t, 1.0, *merged.Latitude)
	require.Equal(t, 2.0, *merged.Longitude)
}

func TestMergeWeeklyFlagsNeverInherited(t *testing.T) {
	remembered := fullSet()
	remembered.WeeklyForecast = true
	remembered.HourFilter = intPtr(6)

	merged := Merge(ParameterSet{}, remembered, true)

	require.False(t, merged.WeeklyForecast)
	require.Nil(t, merged.HourFilter)
}

func TestMergeCopiesValues(t *testing.T) {
	remembered := fullSet()

	merged := Merge(ParameterSet{}, remembered, true)
	*merged.Latitude = 0

	require.Equal(t, 41.8781, *remembered.Latitude)
}
