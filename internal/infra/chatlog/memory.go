package chatlog

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkoukk/tiktoken-go"

	"github.com/citysafe/crimebot/internal/domain/chat"
)

// MemoryLog stores session transcripts in process memory.
type MemoryLog struct {
	mu     sync.RWMutex
	nextID int64
	turns  map[uuid.UUID][]chat.Turn
}

// NewMemoryLog constructs the in-memory transcript log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{turns: make(map[uuid.UUID][]chat.Turn)}
}

// Append implements chat.MessageLog.
func (l *MemoryLog) Append(_ context.Context, turn chat.Turn) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if turn.ID == 0 {
		l.nextID++
		turn.ID = l.nextID
	}
	l.turns[turn.SessionID] = append(l.turns[turn.SessionID], turn)
	return nil
}

// ListRecent returns the most recent turns capped by token budget and count,
// oldest first. Turns are dropped whole from the oldest end so user/assistant
// pairs stay together.
func (l *MemoryLog) ListRecent(_ context.Context, sessionID uuid.UUID, maxTokens, maxMessages int) ([]chat.Turn, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	turns := l.turns[sessionID]
	selected := make([]chat.Turn, 0, len(turns))
	totalTokens := 0
	for i := len(turns) - 1; i >= 0; i-- {
		turn := turns[i]
		if maxMessages > 0 && len(selected) >= maxMessages {
			break
		}
		cost := CountTokens(turn.Content)
		if maxTokens > 0 && totalTokens+cost > maxTokens && len(selected) > 0 {
			break
		}
		totalTokens += cost
		selected = append(selected, turn)
	}

	// Reverse into chronological order.
	for i, j := 0, len(selected)-1; i < j; i, j = i+1, j-1 {
		selected[i], selected[j] = selected[j], selected[i]
	}
	return selected, nil
}

// Clear implements chat.MessageLog.
func (l *MemoryLog) Clear(_ context.Context, sessionID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.turns, sessionID)
	return nil
}

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

// CountTokens estimates the token cost of a turn. It uses the cl100k_base
// encoding; if the encoding tables cannot be loaded it falls back to the
// 4-characters-per-token heuristic.
func CountTokens(text string) int {
	encodingOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			encoding = enc
		}
	})
	if encoding == nil {
		return len(text) / 4
	}
	return len(encoding.Encode(text, nil, nil))
}
