package authtoken

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the fields the API needs from a gateway auth token. The
// token is minted and verified by the hosted data store; we only read it to
// learn the owning record and to detect expiry before issuing remote calls.
type Claims struct {
	RecordID     string
	CollectionID string
	Type         string
	ExpiresAt    time.Time
}

// Parse decodes a gateway JWT without verifying its signature. The gateway
// holds the signing key; verification happens upstream on every call.
func Parse(token string) (*Claims, error) {
	if token == "" {
		return nil, fmt.Errorf("empty token")
	}

	parser := jwt.NewParser()
	mapClaims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, mapClaims); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims := &Claims{}
	if id, ok := mapClaims["id"].(string); ok {
		claims.RecordID = id
	}
	if cid, ok := mapClaims["collectionId"].(string); ok {
		claims.CollectionID = cid
	}
	if typ, ok := mapClaims["type"].(string); ok {
		claims.Type = typ
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}

	if claims.RecordID == "" {
		return nil, fmt.Errorf("token is missing record id")
	}
	return claims, nil
}

// Expired reports whether the token's expiry has passed. Tokens without an
// exp claim are treated as live; the gateway has the final say.
func (c *Claims) Expired(now time.Time) bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return now.After(c.ExpiresAt)
}
