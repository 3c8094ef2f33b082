package predictor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/citysafe/crimebot/pkg/errors"
)

type stubModel struct {
	prob float64
	err  error
}

func (m *stubModel) PredictProbability(FeatureVector) (float64, error) {
	return m.prob, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOracleUnavailableWithoutModel(t *testing.T) {
	oracle := NewOracle(nil, discardLogger())
	require.False(t, oracle.Available())

	_, err := oracle.Predict(context.Background(), FeatureVector{})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeModelUnavailable))
}

func TestOracleClampsProbability(t *testing.T) {
	cases := []struct {
		name string
		raw  float64
		want float64
	}{
		{name: "below zero", raw: -0.2, want: 0},
		{name: "above one", raw: 1.4, want: 1},
		{name: "in range", raw: 0.37, want: 0.37},
	}

	for _, tc := range cases {
		oracle := NewOracle(&stubModel{prob: tc.raw}, discardLogger())
		got, err := oracle.Predict(context.Background(), FeatureVector{})
		require.NoError(t, err, tc.name)
		require.Equal(t, tc.want, got, tc.name)
	}
}

func TestOracleWrapsModelFailure(t *testing.T) {
	oracle := NewOracle(&stubModel{err: errors.New("boom")}, discardLogger())

	_, err := oracle.Predict(context.Background(), FeatureVector{})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeOracleError))
}
