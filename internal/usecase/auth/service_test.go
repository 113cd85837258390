package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	apperrors "github.com/acadease/backend/errors"
	"github.com/acadease/backend/internal/infrastructure/external/gateway"
	"github.com/acadease/backend/pkg/config"
)

func mintToken(t *testing.T, recordID string, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"id": recordID, "type": "authRecord", "exp": exp.Unix()}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}
	return signed
}

func newAuthService(url string, notifier *Notifier) Service {
	gw := gateway.NewClient(&config.GatewayConfig{BaseURL: url, Timeout: 5 * time.Second})
	return NewAuthService(gw, notifier, zap.NewNop())
}

func TestSignIn_PublishesEvent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"token":  "jwt-token",
			"record": map[string]string{"id": "user1", "email": "alice@example.com", "name": "Alice"},
		})
	}))
	defer ts.Close()

	notifier := NewNotifier()
	var events []Event
	notifier.Subscribe(func(ev Event) { events = append(events, ev) })

	result, err := newAuthService(ts.URL, notifier).SignIn(context.Background(), "alice@example.com", "secret123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Token != "jwt-token" || result.User.ID != "user1" {
		t.Errorf("unexpected result %+v", result)
	}
	if len(events) != 1 || events[0].Type != EventSignedIn || events[0].UserID != "user1" {
		t.Errorf("unexpected events %+v", events)
	}
}

func TestSignIn_RejectionDoesNotPublish(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{"code": 400, "message": "Failed to authenticate."})
	}))
	defer ts.Close()

	notifier := NewNotifier()
	var events []Event
	notifier.Subscribe(func(ev Event) { events = append(events, ev) })

	if _, err := newAuthService(ts.URL, notifier).SignIn(context.Background(), "alice@example.com", "wrong"); err == nil {
		t.Fatal("expected error")
	}
	if len(events) != 0 {
		t.Errorf("rejected sign-in must not publish events, got %+v", events)
	}
}

func TestSignOut_PublishesSignedOut(t *testing.T) {
	notifier := NewNotifier()
	var events []Event
	notifier.Subscribe(func(ev Event) { events = append(events, ev) })

	svc := newAuthService("http://localhost:0", notifier)
	token := mintToken(t, "user1", time.Now().Add(time.Hour))

	if err := svc.SignOut(context.Background(), token); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 || events[0].Type != EventSignedOut || events[0].UserID != "user1" {
		t.Errorf("unexpected events %+v", events)
	}
}

func TestCurrentUser_TokenChecks(t *testing.T) {
	svc := newAuthService("http://localhost:0", NewNotifier())

	claims, err := svc.CurrentUser(mintToken(t, "user1", time.Now().Add(time.Hour)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.RecordID != "user1" {
		t.Errorf("unexpected record id %q", claims.RecordID)
	}

	_, err = svc.CurrentUser(mintToken(t, "user1", time.Now().Add(-time.Hour)))
	var appErr apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.ErrorCode_AUTH_TOKEN_EXPIRED {
		t.Errorf("expected token expiry error, got %v", err)
	}

	_, err = svc.CurrentUser("not-a-token")
	if !errors.As(err, &appErr) || appErr.Code != apperrors.ErrorCode_UNAUTHENTICATED {
		t.Errorf("expected unauthenticated error, got %v", err)
	}
}
