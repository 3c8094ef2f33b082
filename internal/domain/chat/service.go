package chat

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/citysafe/crimebot/internal/domain/forecast"
	"github.com/citysafe/crimebot/internal/domain/predictor"
	"github.com/citysafe/crimebot/internal/domain/query"
	"github.com/citysafe/crimebot/internal/infra/llm/chatgpt"
	apperrors "github.com/citysafe/crimebot/pkg/errors"
	"github.com/citysafe/crimebot/pkg/util"
)

// Service is the per-turn façade over extraction, context tracking and
// prediction. One chat turn fully completes before the next is accepted;
// the conversational context is owned here and committed only at terminal
// states.
type Service interface {
	Ask(ctx context.Context, req Request) (Response, error)
	History(ctx context.Context, sessionID uuid.UUID) ([]Turn, error)
	Reset(ctx context.Context, sessionID uuid.UUID) error
}

// ChatClient renders structured results into conversational prose.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

type service struct {
	cfg       Config
	extractor *query.Extractor
	oracle    *predictor.Oracle
	engine    forecast.Service
	contexts  ContextStore
	messages  MessageLog
	geocoder  Geocoder
	client    ChatClient
	logger    *slog.Logger
	now       func() time.Time
}

// NewService wires up the chat orchestrator. The geocoder and chat client
// are optional collaborators; pass nil to run without place-name resolution
// or prose generation.
func NewService(cfg Config, extractor *query.Extractor, oracle *predictor.Oracle,
	engine forecast.Service, contexts ContextStore, messages MessageLog,
	geocoder Geocoder, client ChatClient, logger *slog.Logger) Service {
	return &service{
		cfg:       cfg,
		extractor: extractor,
		oracle:    oracle,
		engine:    engine,
		contexts:  contexts,
		messages:  messages,
		geocoder:  geocoder,
		client:    client,
		logger:    logger.With("component", "chat.service"),
		now:       time.Now,
	}
}

// Ask processes one chat turn: extract, merge with memory, branch on
// completeness, and emit exactly one structured result. The updated context
// is committed after the terminal state is reached, never partially.
func (s *service) Ask(ctx context.Context, req Request) (Response, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return Response{}, apperrors.Wrap(apperrors.CodeInvalidInput, "message cannot be empty", nil)
	}

	sessionID := req.SessionID
	if sessionID == uuid.Nil {
		sessionID = uuid.New()
	}

	remembered, found, err := s.contexts.Get(ctx, sessionID)
	if err != nil {
		return Response{}, apperrors.Wrap("context_error", "failed to load conversation context", err)
	}

	now := s.now()
	extracted := s.extractor.Extract(message, now)
	firstTurn := !found || remembered.Turns == 0
	followUp := query.IsFollowUp(extracted, remembered.LastParameters, firstTurn)
	merged := query.Merge(extracted, remembered.LastParameters, followUp)
	s.resolvePlace(ctx, &merged)

	resp := Response{SessionID: sessionID}
	if merged.WeeklyForecast {
		err = s.answerWeekly(ctx, &resp, merged, now)
	} else {
		err = s.answerPoint(ctx, &resp, merged)
	}
	if err != nil {
		return Response{}, err
	}

	resp.Reply = s.renderReply(ctx, resp)

	if err := s.contexts.Save(ctx, sessionID, Context{LastParameters: merged, Turns: remembered.Turns + 1}); err != nil {
		return Response{}, apperrors.Wrap("context_error", "failed to commit conversation context", err)
	}
	s.record(ctx, sessionID, message, resp.Reply)

	s.logger.Info("chat turn complete",
		"session", sessionID,
		"kind", resp.Kind,
		"follow_up", followUp)
	return resp, nil
}

// resolvePlace asks the external geocoder to turn a bare place name into
// coordinates. Unknown places simply leave the location unresolved.
func (s *service) resolvePlace(ctx context.Context, merged *query.ParameterSet) {
	if merged.HasCoordinates() || merged.PlaceName == nil || s.geocoder == nil {
		return
	}
	lat, lon, ok, err := s.geocoder.Resolve(ctx, *merged.PlaceName)
	if err != nil {
		s.logger.Warn("geocoder lookup failed", "place", *merged.PlaceName, "error", err)
		return
	}
	if ok {
		merged.Latitude = &lat
		merged.Longitude = &lon
	}
}

// answerWeekly handles branch A: a weekly request needs only a resolvable
// location.
func (s *service) answerWeekly(ctx context.Context, resp *Response, merged query.ParameterSet, now time.Time) error {
	if !merged.HasCoordinates() {
		resp.Kind = KindMissingInfo
		resp.MissingInfo = &MissingInfo{
			MissingFields:    []string{FieldLocation},
			FollowUpQuestion: weeklyLocationQuestion,
		}
		return nil
	}

	start := util.DateOnly(now)
	if merged.Date != nil {
		start = *merged.Date
	}
	fc, err := s.engine.Forecast(ctx, forecast.Request{
		Latitude:   *merged.Latitude,
		Longitude:  *merged.Longitude,
		StartDate:  start,
		HourFilter: merged.HourFilter,
	})
	if err != nil {
		s.logger.Warn("weekly forecast failed", "error", err)
		resp.Kind = KindOracleError
		resp.OracleError = &OracleError{Message: apperrors.Message(err)}
		return nil
	}
	resp.Kind = KindWeeklyForecast
	resp.Weekly = &fc
	return nil
}

// answerPoint handles branch B: a point prediction needs location, date and
// time all resolvable before the oracle may be invoked.
func (s *service) answerPoint(ctx context.Context, resp *Response, merged query.ParameterSet) error {
	missing := missingFields(merged.HasCoordinates(), merged.HasDate(), merged.HasTime())
	if len(missing) > 0 {
		resp.Kind = KindMissingInfo
		resp.MissingInfo = &MissingInfo{
			MissingFields:    missing,
			FollowUpQuestion: buildFollowUpQuestion(missing),
		}
		return nil
	}

	features, err := predictor.Encode(*merged.Date, *merged.Hour, *merged.Longitude, *merged.Latitude)
	if err != nil {
		// Ranges were validated during extraction and merge; this is an
		// internal invariant violation, surfaced generically.
		s.logger.Error("feature encoding rejected validated parameters", "error", err)
		return apperrors.Wrap(apperrors.CodeInvalidInput, "internal error while preparing the prediction", err)
	}

	probability, err := s.oracle.Predict(ctx, features)
	if err != nil {
		s.logger.Warn("oracle prediction failed", "error", err)
		resp.Kind = KindOracleError
		resp.OracleError = &OracleError{Message: apperrors.Message(err)}
		return nil
	}

	resp.Kind = KindPrediction
	resp.Prediction = &Prediction{
		Probability: probability,
		Explanation: buildExplanation(probability, *merged.Latitude, *merged.Longitude, *merged.Date, *merged.Hour),
		Parameters:  merged,
	}
	return nil
}

// record appends the turn to the transcript, best effort.
func (s *service) record(ctx context.Context, sessionID uuid.UUID, userMessage, reply string) {
	if s.messages == nil {
		return
	}
	now := s.now()
	if err := s.messages.Append(ctx, Turn{SessionID: sessionID, Role: "user", Content: userMessage, CreatedAt: now}); err != nil {
		s.logger.Warn("failed to log user turn", "error", err)
		return
	}
	if err := s.messages.Append(ctx, Turn{SessionID: sessionID, Role: "assistant", Content: reply, CreatedAt: now}); err != nil {
		s.logger.Warn("failed to log assistant turn", "error", err)
	}
}

// History returns the recent transcript for a session.
func (s *service) History(ctx context.Context, sessionID uuid.UUID) ([]Turn, error) {
	if s.messages == nil {
		return nil, nil
	}
	return s.messages.ListRecent(ctx, sessionID, s.cfg.HistoryMaxTokens, s.cfg.HistoryMaxMessages)
}

// Reset clears the conversational context and transcript for a session.
func (s *service) Reset(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.contexts.Clear(ctx, sessionID); err != nil {
		return apperrors.Wrap("context_error", "failed to clear conversation context", err)
	}
	if s.messages != nil {
		if err := s.messages.Clear(ctx, sessionID); err != nil {
			s.logger.Warn("failed to clear transcript", "session", sessionID, "error", err)
		}
	}
	return nil
}
