package query

// IsFollowUp classifies a turn against conversational memory. An utterance is
// a follow-up when it omits location entirely while the remembered set has
// one, and it is not the first turn of the session. Follow-ups inherit
// remembered fields; anything else starts from a clean slate so stale context
// cannot leak into an unrelated question.
func IsFollowUp(newSet, remembered ParameterSet, firstTurn bool) bool {
	if firstTurn {
		return false
	}
	return !newSet.HasLocation() && remembered.HasLocation()
}

// Merge combines a freshly extracted set with the remembered one. A field
// supplied by the new turn always overwrites memory; an omitted field is
// inherited only when the turn is a follow-up, otherwise it resolves to
// absent and forces a completeness failure downstream. The weekly flag and
// hour filter are per-turn and never inherited.
func Merge(newSet, remembered ParameterSet, isFollowUp bool) ParameterSet {
	merged := ParameterSet{
		WeeklyForecast: newSet.WeeklyForecast,
		HourFilter:     copyInt(newSet.HourFilter),
	}

	// Coordinates move as a unit: inheriting half a pair would produce a
	// location the user never stated.
	switch {
	case newSet.HasCoordinates():
		merged.Latitude = copyFloat(newSet.Latitude)
		merged.Longitude = copyFloat(newSet.Longitude)
	case isFollowUp && remembered.HasCoordinates():
		merged.Latitude = copyFloat(remembered.Latitude)
		merged.Longitude = copyFloat(remembered.Longitude)
	}

	switch {
	case newSet.PlaceName != nil:
		merged.PlaceName = copyString(newSet.PlaceName)
	case isFollowUp && !merged.HasCoordinates():
		merged.PlaceName = copyString(remembered.PlaceName)
	}

	switch {
	case newSet.Date != nil:
		d := *newSet.Date
		merged.Date = &d
	case isFollowUp && remembered.Date != nil:
		d := *remembered.Date
		merged.Date = &d
	}

	switch {
	case newSet.Hour != nil:
		merged.Hour = copyInt(newSet.Hour)
	case isFollowUp:
		merged.Hour = copyInt(remembered.Hour)
	}

	return merged
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
