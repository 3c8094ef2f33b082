package chat

import "strings"

// weeklyLocationQuestion is the canned clarification for a weekly request
// with no resolvable location; examples cover both accepted location forms.
const weeklyLocationQuestion = "To generate a weekly crime forecast, I need a specific location. " +
	"Please provide coordinates or a place name. " +
	"For example: '/weekly 41.8781, -87.6298' or '/weekly downtown Chicago'"

// fieldExamples gives each missing field a worked example in the same order
// the completeness check reports them.
var fieldExamples = map[string]string{
	FieldLocation: "location (for example: 41.8781, -87.6298 or downtown Chicago)",
	FieldDate:     "date (for example: tomorrow or Friday)",
	FieldTime:     "time (for example: 10pm or in the morning)",
}

// buildFollowUpQuestion enumerates only the missing fields: a single field is
// named directly, two are joined with "or", three are comma-joined with a
// trailing "or".
func buildFollowUpQuestion(missing []string) string {
	parts := make([]string, 0, len(missing))
	for _, field := range missing {
		parts = append(parts, fieldExamples[field])
	}

	var joined string
	switch len(parts) {
	case 1:
		joined = parts[0]
	case 2:
		joined = parts[0] + " or " + parts[1]
	default:
		joined = strings.Join(parts[:len(parts)-1], ", ") + ", or " + parts[len(parts)-1]
	}
	return "To predict crime risk, I still need the " + joined + "."
}

// missingFields computes the incomplete fields of a point query. Location
// counts as a single missing item even though it is two sub-fields.
func missingFields(hasLocation, hasDate, hasTime bool) []string {
	missing := make([]string, 0, 3)
	if !hasLocation {
		missing = append(missing, FieldLocation)
	}
	if !hasDate {
		missing = append(missing, FieldDate)
	}
	if !hasTime {
		missing = append(missing, FieldTime)
	}
	return missing
}
