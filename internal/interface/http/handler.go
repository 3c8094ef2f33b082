package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/citysafe/crimebot/internal/domain/chat"
	"github.com/citysafe/crimebot/internal/domain/predictor"
	apperrors "github.com/citysafe/crimebot/pkg/errors"
)

// Handler wires the HTTP transport to the chat orchestrator.
type Handler struct {
	chatSvc chat.Service
	oracle  *predictor.Oracle
	logger  *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(chatSvc chat.Service, oracle *predictor.Oracle, logger *slog.Logger) *Handler {
	return &Handler{
		chatSvc: chatSvc,
		oracle:  oracle,
		logger:  logger.With("component", "http.handler"),
	}
}

// Chat handles one conversational turn.
func (h *Handler) Chat(c *gin.Context) {
	var req chat.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.chatSvc.Ask(c.Request.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		code := "chat_failed"
		if apperrors.IsCode(err, apperrors.CodeInvalidInput) {
			status = http.StatusBadRequest
			code = "invalid_request"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// History returns the recent transcript for a session.
func (h *Handler) History(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "session id must be a uuid", err))
		return
	}

	turns, err := h.chatSvc.History(c.Request.Context(), sessionID)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "history_failed", errMessage(err), err))
		return
	}
	if turns == nil {
		turns = []chat.Turn{}
	}
	c.JSON(http.StatusOK, gin.H{"sessionId": sessionID, "turns": turns})
}

// ResetContext clears a session's conversational memory.
func (h *Handler) ResetContext(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "session id must be a uuid", err))
		return
	}

	if err := h.chatSvc.Reset(c.Request.Context(), sessionID); err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "reset_failed", errMessage(err), err))
		return
	}
	c.Status(http.StatusNoContent)
}

// Healthz reports liveness plus classifier availability.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"modelAvailable": h.oracle.Available(),
	})
}
