package sessionrepo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"

	"github.com/citysafe/crimebot/internal/domain/chat"
)

// ValkeyStore persists conversation contexts in a Valkey-compatible database
// so sessions survive process restarts and can be shared across instances.
type ValkeyStore struct {
	client valkey.Client
	prefix string
	ttl    time.Duration
}

// NewValkeyStore constructs the store. A zero ttl keeps contexts until an
// explicit reset.
func NewValkeyStore(client valkey.Client, prefix string, ttl time.Duration) *ValkeyStore {
	if prefix == "" {
		prefix = "chat"
	}
	return &ValkeyStore{client: client, prefix: prefix, ttl: ttl}
}

// Get implements chat.ContextStore.
func (s *ValkeyStore) Get(ctx context.Context, sessionID uuid.UUID) (chat.Context, bool, error) {
	cmd := s.client.B().Get().Key(s.key(sessionID)).Build()
	payload, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return chat.Context{}, false, nil
		}
		return chat.Context{}, false, err
	}
	var convo chat.Context
	if err := json.Unmarshal([]byte(payload), &convo); err != nil {
		return chat.Context{}, false, err
	}
	return convo, true, nil
}

// Save implements chat.ContextStore.
func (s *ValkeyStore) Save(ctx context.Context, sessionID uuid.UUID, convo chat.Context) error {
	payload, err := json.Marshal(convo)
	if err != nil {
		return err
	}
	builder := s.client.B().Set().Key(s.key(sessionID)).Value(string(payload))
	if s.ttl > 0 {
		return s.client.Do(ctx, builder.Ex(s.ttl).Build()).Error()
	}
	return s.client.Do(ctx, builder.Build()).Error()
}

// Clear implements chat.ContextStore.
func (s *ValkeyStore) Clear(ctx context.Context, sessionID uuid.UUID) error {
	return s.client.Do(ctx, s.client.B().Del().Key(s.key(sessionID)).Build()).Error()
}

func (s *ValkeyStore) key(sessionID uuid.UUID) string {
	return s.prefix + ":context:" + sessionID.String()
}
