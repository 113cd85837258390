package classroom

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/acadease/backend/internal/infrastructure/cache"
)

// StateManager manages OAuth state tokens for CSRF protection. Each state is
// bound to the session that started the sign-in so the callback can be
// routed back to it.
type StateManager struct {
	store      cache.Store
	expiration time.Duration
}

// NewStateManager creates a new state manager
func NewStateManager(store cache.Store) *StateManager {
	return &StateManager{
		store:      store,
		expiration: 15 * time.Minute, // State expires in 15 minutes
	}
}

// GenerateState generates a random state token bound to the given session
func (sm *StateManager) GenerateState(ctx context.Context, sessionID string) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	state := base64.URLEncoding.EncodeToString(b)

	key := fmt.Sprintf("oauth:state:%s", state)
	if err := sm.store.Set(ctx, key, sessionID, sm.expiration); err != nil {
		return "", err
	}

	return state, nil
}

// ValidateState validates a state token and returns the session it was issued
// for (one-time use)
func (sm *StateManager) ValidateState(ctx context.Context, state string) (string, bool) {
	key := fmt.Sprintf("oauth:state:%s", state)

	sessionID, exists, err := sm.store.Get(ctx, key)
	if err != nil || !exists {
		return "", false
	}

	// Delete the state immediately (one-time use)
	_ = sm.store.Delete(ctx, key)

	return sessionID, true
}
