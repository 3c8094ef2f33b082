package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRiskLevelBands(t *testing.T) {
	cases := []struct {
		percent float64
		want    string
	}{
		{percent: 0, want: "very low"},
		{percent: 19.9, want: "very low"},
		{percent: 20, want: "low"},
		{percent: 39.9, want: "low"},
		{percent: 40, want: "moderate"},
		{percent: 60, want: "high"},
		{percent: 79.9, want: "high"},
		{percent: 80, want: "very high"},
		{percent: 100, want: "very high"},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, riskLevel(tc.percent), "%.1f%%", tc.percent)
	}
}

func TestTimeContext(t *testing.T) {
	require.Equal(t, "late night/early morning", timeContext(3))
	require.Equal(t, "morning", timeContext(8))
	require.Equal(t, "afternoon", timeContext(14))
	require.Equal(t, "evening", timeContext(22))
}

func TestBuildExplanation(t *testing.T) {
	date := time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC)

	got := buildExplanation(0.725, 41.8781, -87.6298, date, 22)

	require.Equal(t,
		"For the location at coordinates (41.8781, -87.6298) on 2026-01-09 at 22:00, "+
			"the model predicts a high risk of crime with a probability of 72.5%. "+
			"The prediction takes into account that this is a Friday evening.",
		got)
}
