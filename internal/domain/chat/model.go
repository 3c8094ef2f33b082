package chat

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/citysafe/crimebot/internal/domain/forecast"
	"github.com/citysafe/crimebot/internal/domain/query"
)

// ResultKind tags the structured outcome of one chat turn.
type ResultKind string

const (
	KindMissingInfo    ResultKind = "missing_info"
	KindPrediction     ResultKind = "prediction"
	KindWeeklyForecast ResultKind = "weekly_forecast"
	KindOracleError    ResultKind = "oracle_error"
)

// Missing field labels used in MissingInfo results and follow-up questions.
const (
	FieldLocation = "location"
	FieldDate     = "date"
	FieldTime     = "time"
)

// Request is one raw chat turn. A nil session id starts a new session.
type Request struct {
	SessionID uuid.UUID `json:"sessionId"`
	Message   string    `json:"message" binding:"required"`
}

// MissingInfo is not an error: it is the expected control-flow outcome when
// the merged parameter set is incomplete.
type MissingInfo struct {
	MissingFields    []string `json:"missingFields"`
	FollowUpQuestion string   `json:"followUpQuestion"`
}

// Prediction carries a point probability plus its deterministic explanation.
// The explanation restates the exact probability value used; downstream prose
// generation must not override or rescale it.
type Prediction struct {
	Probability float64            `json:"probability"`
	Explanation string             `json:"explanation"`
	Parameters  query.ParameterSet `json:"parameters"`
}

// OracleError reports a prediction failure verbatim. It is fatal to the turn
// only; no retry is attempted.
type OracleError struct {
	Message string `json:"message"`
}

// Response is the structured result of one turn, exactly one payload set
// according to Kind. Reply is the conversational text handed back to the
// caller, either LLM-generated prose or the deterministic template.
type Response struct {
	SessionID   uuid.UUID          `json:"sessionId"`
	Kind        ResultKind         `json:"kind"`
	MissingInfo *MissingInfo       `json:"missingInfo,omitempty"`
	Prediction  *Prediction        `json:"prediction,omitempty"`
	Weekly      *forecast.Forecast `json:"weeklyForecast,omitempty"`
	OracleError *OracleError       `json:"oracleError,omitempty"`
	Reply       string             `json:"reply"`
}

// Context is the per-session conversational memory: the last fully- or
// partially-merged parameter set. Created empty at session start, committed
// once per turn at a terminal state, cleared on explicit reset.
type Context struct {
	LastParameters query.ParameterSet `json:"lastParameters"`
	Turns          int                `json:"turns"`
}

// ContextStore persists Context between turns, keyed by session id.
type ContextStore interface {
	Get(ctx context.Context, sessionID uuid.UUID) (Context, bool, error)
	Save(ctx context.Context, sessionID uuid.UUID, convo Context) error
	Clear(ctx context.Context, sessionID uuid.UUID) error
}

// Turn is one logged message of a session transcript.
type Turn struct {
	ID        int64     `json:"id"`
	SessionID uuid.UUID `json:"sessionId"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// MessageLog records the transcript for the history endpoint, trimmed to a
// token budget with user/assistant pairs kept together.
type MessageLog interface {
	Append(ctx context.Context, turn Turn) error
	ListRecent(ctx context.Context, sessionID uuid.UUID, maxTokens, maxMessages int) ([]Turn, error)
	Clear(ctx context.Context, sessionID uuid.UUID) error
}

// Geocoder resolves a free-text place name to coordinates. Resolution is an
// external collaborator concern; the extractor itself never geocodes.
type Geocoder interface {
	Resolve(ctx context.Context, place string) (lat, lon float64, ok bool, err error)
}

// Config carries the orchestrator's runtime settings.
type Config struct {
	Model              string
	Temperature        float32
	Prompt             string
	HistoryMaxTokens   int
	HistoryMaxMessages int
}
