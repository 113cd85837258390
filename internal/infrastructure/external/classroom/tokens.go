package classroom

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/acadease/backend/internal/infrastructure/cache"
)

// TokenStore persists Google tokens per user so a later session can recover
// its sign-in without another interactive round trip
type TokenStore struct {
	store cache.Store
}

// NewTokenStore creates a new token store
func NewTokenStore(store cache.Store) *TokenStore {
	return &TokenStore{store: store}
}

// Save stores the token for a user
func (ts *TokenStore) Save(ctx context.Context, userID string, token *oauth2.Token) error {
	raw, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}
	return ts.store.Set(ctx, ts.key(userID), string(raw), 0)
}

// Load retrieves the stored token for a user
func (ts *TokenStore) Load(ctx context.Context, userID string) (*oauth2.Token, bool, error) {
	raw, exists, err := ts.store.Get(ctx, ts.key(userID))
	if err != nil || !exists {
		return nil, false, err
	}

	var token oauth2.Token
	if err := json.Unmarshal([]byte(raw), &token); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal token: %w", err)
	}
	return &token, true, nil
}

// Clear removes the stored token for a user
func (ts *TokenStore) Clear(ctx context.Context, userID string) error {
	return ts.store.Delete(ctx, ts.key(userID))
}

func (ts *TokenStore) key(userID string) string {
	return fmt.Sprintf("classroom:token:%s", userID)
}
