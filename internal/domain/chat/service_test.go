package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/citysafe/crimebot/internal/domain/forecast"
	"github.com/citysafe/crimebot/internal/domain/predictor"
	"github.com/citysafe/crimebot/internal/domain/query"
	apperrors "github.com/citysafe/crimebot/pkg/errors"
)

type stubModel struct {
	prob float64
	err  error
}

func (m *stubModel) PredictProbability(predictor.FeatureVector) (float64, error) {
	return m.prob, m.err
}

type memContextStore struct {
	contexts map[uuid.UUID]Context
}

func newMemContextStore() *memContextStore {
	return &memContextStore{contexts: make(map[uuid.UUID]Context)}
}

func (s *memContextStore) Get(_ context.Context, id uuid.UUID) (Context, bool, error) {
	convo, ok := s.contexts[id]
	return convo, ok, nil
}

func (s *memContextStore) Save(_ context.Context, id uuid.UUID, convo Context) error {
	s.contexts[id] = convo
	return nil
}

func (s *memContextStore) Clear(_ context.Context, id uuid.UUID) error {
	delete(s.contexts, id)
	return nil
}

type stubGeocoder struct {
	places map[string][2]float64
}

func (g *stubGeocoder) Resolve(_ context.Context, place string) (float64, float64, bool, error) {
	coords, ok := g.places[place]
	if !ok {
		return 0, 0, false, nil
	}
	return coords[0], coords[1], true, nil
}

// wednesdayNoon pins the reference clock; 2026-01-07 is a Wednesday.
var wednesdayNoon = time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC)

type serviceOption func(*service)

func withModel(m predictor.Model) serviceOption {
	return func(s *service) {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		oracle := predictor.NewOracle(m, logger)
		s.oracle = oracle
		s.engine = forecast.NewEngine(oracle, logger)
	}
}

func withGeocoder(g Geocoder) serviceOption {
	return func(s *service) { s.geocoder = g }
}

func newTestService(opts ...serviceOption) (*service, *memContextStore) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	contexts := newMemContextStore()
	svc := &service{
		cfg:       Config{HistoryMaxTokens: 4000, HistoryMaxMessages: 50},
		extractor: query.NewExtractor(logger),
		contexts:  contexts,
		logger:    logger,
		now:       func() time.Time { return wednesdayNoon },
	}
	withModel(&stubModel{prob: 0.423})(svc)
	for _, opt := range opts {
		opt(svc)
	}
	return svc, contexts
}

func TestAskCompletePointQuery(t *testing.T) {
	svc, contexts := newTestService()

	resp, err := svc.Ask(context.Background(), Request{Message: "What's the crime risk at 41.8781, -87.6298 tonight?"})
	require.NoError(t, err)

	require.Equal(t, KindPrediction, resp.Kind)
	require.NotNil(t, resp.Prediction)
	require.Equal(t, 0.423, resp.Prediction.Probability)
	require.Contains(t, resp.Prediction.Explanation, "42.3%")
	require.Contains(t, resp.Prediction.Explanation, "moderate risk")
	require.Contains(t, resp.Prediction.Explanation, "(41.8781, -87.6298)")
	require.Contains(t, resp.Prediction.Explanation, "2026-01-07 at 22:00")
	require.Equal(t, resp.Prediction.Explanation, resp.Reply)
	require.NotEqual(t, uuid.Nil, resp.SessionID)

	saved := contexts.contexts[resp.SessionID]
	require.Equal(t, 1, saved.Turns)
	require.Equal(t, 22, *saved.LastParameters.Hour)
}

func TestAskFirstTurnMissingEverything(t *testing.T) {
	svc, _ := newTestService()

	resp, err := svc.Ask(context.Background(), Request{Message: "Is it safe?"})
	require.NoError(t, err)

	require.Equal(t, KindMissingInfo, resp.Kind)
	require.Equal(t, []string{FieldLocation, FieldDate, FieldTime}, resp.MissingInfo.MissingFields)
	require.Contains(t, resp.MissingInfo.FollowUpQuestion, ", or ")
	require.Equal(t, resp.MissingInfo.FollowUpQuestion, resp.Reply)
}

func TestAskFollowUpInheritsContext(t *testing.T) {
	svc, _ := newTestService()
	session := uuid.New()

	first, err := svc.Ask(context.Background(), Request{SessionID: session, Message: "Crime risk at 41.8781, -87.6298 tonight"})
	require.NoError(t, err)
	require.Equal(t, KindPrediction, first.Kind)

	second, err := svc.Ask(context.Background(), Request{SessionID: session, Message: "What about tomorrow morning?"})
	require.NoError(t, err)
	require.Equal(t, KindPrediction, second.Kind)

	params := second.Prediction.Parameters
	require.Equal(t, 41.8781, *params.Latitude)
	require.Equal(t, -87.6298, *params.Longitude)
	require.Equal(t, time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC), *params.Date)
	require.Equal(t, 8, *params.Hour)
}

func TestAskNewLocationResetsContext(t *testing.T) {
	svc, _ := newTestService()
	session := uuid.New()

	_, err := svc.Ask(context.Background(), Request{SessionID: session, Message: "Crime risk at 41.8781, -87.6298 tonight"})
	require.NoError(t, err)

	resp, err := svc.Ask(context.Background(), Request{SessionID: session, Message: "And at 40.7128, -74.0060?"})
	require.NoError(t, err)

	// The new location starts fresh, so the remembered date and time are gone.
	require.Equal(t, KindMissingInfo, resp.Kind)
	require.Equal(t, []string{FieldDate, FieldTime}, resp.MissingInfo.MissingFields)
}

func TestAskResetClearsContext(t *testing.T) {
	svc, contexts := newTestService()
	session := uuid.New()

	_, err := svc.Ask(context.Background(), Request{SessionID: session, Message: "Crime risk at 41.8781, -87.6298 tonight"})
	require.NoError(t, err)

	require.NoError(t, svc.Reset(context.Background(), session))
	require.Empty(t, contexts.contexts)

	resp, err := svc.Ask(context.Background(), Request{SessionID: session, Message: "What about tomorrow?"})
	require.NoError(t, err)
	require.Equal(t, KindMissingInfo, resp.Kind)
	require.Contains(t, resp.MissingInfo.MissingFields, FieldLocation)
}

func TestAskGeocodesPlaceName(t *testing.T) {
	geo := &stubGeocoder{places: map[string][2]float64{"downtown Chicago": {41.8781, -87.6298}}}
	svc, _ := newTestService(withGeocoder(geo))

	resp, err := svc.Ask(context.Background(), Request{Message: "Risk in downtown Chicago tonight?"})
	require.NoError(t, err)

	require.Equal(t, KindPrediction, resp.Kind)
	require.Equal(t, 41.8781, *resp.Prediction.Parameters.Latitude)
}

func TestAskUnresolvablePlaceAsksForLocation(t *testing.T) {
	svc, _ := newTestService(withGeocoder(&stubGeocoder{}))

	resp, err := svc.Ask(context.Background(), Request{Message: "Risk in Atlantis tonight?"})
	require.NoError(t, err)

	require.Equal(t, KindMissingInfo, resp.Kind)
	require.Equal(t, []string{FieldLocation}, resp.MissingInfo.MissingFields)
}

func TestAskOracleErrorIsTerminal(t *testing.T) {
	svc, contexts := newTestService(withModel(&stubModel{err: errors.New("segfault in the classifier")}))

	resp, err := svc.Ask(context.Background(), Request{Message: "Risk at 41.8781, -87.6298 tonight"})
	require.NoError(t, err)

	require.Equal(t, KindOracleError, resp.Kind)
	require.Contains(t, resp.Reply, "Crime prediction is unavailable")
	// The turn still commits its context.
	require.Len(t, contexts.contexts, 1)
}

func TestAskModelUnavailable(t *testing.T) {
	svc, _ := newTestService(withModel(nil))

	resp, err := svc.Ask(context.Background(), Request{Message: "Risk at 41.8781, -87.6298 tonight"})
	require.NoError(t, err)

	require.Equal(t, KindOracleError, resp.Kind)
	require.Equal(t, "crime prediction model is not loaded", resp.OracleError.Message)
}

func TestAskWeeklyForecast(t *testing.T) {
	svc, _ := newTestService()

	resp, err := svc.Ask(context.Background(), Request{Message: "/weekly 41.8781, -87.6298"})
	require.NoError(t, err)

	require.Equal(t, KindWeeklyForecast, resp.Kind)
	require.NotNil(t, resp.Weekly)
	require.Len(t, resp.Weekly.Points, 28)
	// StartDate defaults to the reference day.
	require.Equal(t, time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC), resp.Weekly.StartDate)
	require.Contains(t, resp.Reply, "Weekly Crime Probability Forecast")
}

func TestAskWeeklyWithHourFilter(t *testing.T) {
	svc, _ := newTestService()

	resp, err := svc.Ask(context.Background(), Request{Message: "/weekly 41.8781, -87.6298 at 10pm"})
	require.NoError(t, err)

	require.Equal(t, KindWeeklyForecast, resp.Kind)
	require.Len(t, resp.Weekly.Points, 7)
	require.Equal(t, 22, *resp.Weekly.HourFilter)
}

func TestAskWeeklyWithPlaceName(t *testing.T) {
	geo := &stubGeocoder{places: map[string][2]float64{"downtown Chicago": {41.8781, -87.6298}}}
	svc, _ := newTestService(withGeocoder(geo))

	// The place-name form advertised by the weekly clarification question.
	resp, err := svc.Ask(context.Background(), Request{Message: "/weekly downtown Chicago"})
	require.NoError(t, err)

	require.Equal(t, KindWeeklyForecast, resp.Kind)
	require.Equal(t, 41.8781, resp.Weekly.Latitude)
	require.Len(t, resp.Weekly.Points, 28)
}

func TestAskWeeklyWithoutLocation(t *testing.T) {
	svc, _ := newTestService()

	resp, err := svc.Ask(context.Background(), Request{Message: "/weekly"})
	require.NoError(t, err)

	require.Equal(t, KindMissingInfo, resp.Kind)
	require.Equal(t, []string{FieldLocation}, resp.MissingInfo.MissingFields)
	require.Contains(t, resp.MissingInfo.FollowUpQuestion, "/weekly 41.8781, -87.6298")
}

func TestAskWeeklyNeverInheritsModeFromMemory(t *testing.T) {
	svc, _ := newTestService()
	session := uuid.New()

	first, err := svc.Ask(context.Background(), Request{SessionID: session, Message: "/weekly 41.8781, -87.6298"})
	require.NoError(t, err)
	require.Equal(t, KindWeeklyForecast, first.Kind)

	second, err := svc.Ask(context.Background(), Request{SessionID: session, Message: "What about tonight?"})
	require.NoError(t, err)
	require.Equal(t, KindPrediction, second.Kind)
}

func TestAskEmptyMessage(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Ask(context.Background(), Request{Message: "   "})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}
