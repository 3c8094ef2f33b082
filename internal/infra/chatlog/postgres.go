package chatlog

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/citysafe/crimebot/internal/domain/chat"
)

// PostgresLog persists session transcripts using pgx.
//
// Schema:
//
//	CREATE TABLE chat_turns (
//	    id          BIGSERIAL PRIMARY KEY,
//	    session_id  UUID NOT NULL,
//	    role        TEXT NOT NULL,
//	    content     TEXT NOT NULL,
//	    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//	CREATE INDEX chat_turns_session_idx ON chat_turns (session_id, id);
type PostgresLog struct {
	pool *pgxpool.Pool
}

// NewPostgresLog constructs the repository.
func NewPostgresLog(pool *pgxpool.Pool) *PostgresLog {
	return &PostgresLog{pool: pool}
}

// Append implements chat.MessageLog.
func (l *PostgresLog) Append(ctx context.Context, turn chat.Turn) error {
	_, err := l.pool.Exec(ctx, `
		INSERT INTO chat_turns (session_id, role, content, created_at)
		VALUES ($1, $2, $3, $4)
	`, turn.SessionID, turn.Role, turn.Content, turn.CreatedAt)
	return err
}

// ListRecent implements chat.MessageLog. The count cap is applied in SQL;
// the token budget is applied over the fetched rows with the same
// oldest-dropped-first policy as the memory log.
func (l *PostgresLog) ListRecent(ctx context.Context, sessionID uuid.UUID, maxTokens, maxMessages int) ([]chat.Turn, error) {
	limit := maxMessages
	if limit <= 0 {
		limit = 200
	}
	rows, err := l.pool.Query(ctx, `
		SELECT id, session_id, role, content, created_at
		FROM chat_turns
		WHERE session_id = $1
		ORDER BY id DESC
		LIMIT $2
	`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	selected := make([]chat.Turn, 0, limit)
	totalTokens := 0
	for rows.Next() {
		var turn chat.Turn
		if err := rows.Scan(&turn.ID, &turn.SessionID, &turn.Role, &turn.Content, &turn.CreatedAt); err != nil {
			return nil, err
		}
		cost := CountTokens(turn.Content)
		if maxTokens > 0 && totalTokens+cost > maxTokens && len(selected) > 0 {
			break
		}
		totalTokens += cost
		selected = append(selected, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(selected)-1; i < j; i, j = i+1, j-1 {
		selected[i], selected[j] = selected[j], selected[i]
	}
	return selected, nil
}

// Clear implements chat.MessageLog.
func (l *PostgresLog) Clear(ctx context.Context, sessionID uuid.UUID) error {
	_, err := l.pool.Exec(ctx, `DELETE FROM chat_turns WHERE session_id = $1`, sessionID)
	return err
}
