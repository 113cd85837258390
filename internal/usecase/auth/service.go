package auth

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/acadease/backend/errors"
	"github.com/acadease/backend/internal/domain/entities"
	"github.com/acadease/backend/internal/infrastructure/external/gateway"
	"github.com/acadease/backend/pkg/authtoken"
)

// Service defines authentication operations against the hosted data store
type Service interface {
	SignIn(ctx context.Context, identity, password string) (*SignInResult, error)
	SignUp(ctx context.Context, email, password, passwordConfirm, name string) (*entities.User, error)
	SignOut(ctx context.Context, token string) error
	CurrentUser(token string) (*authtoken.Claims, error)
	OnAuthStateChange(h Handler) func()
}

// SignInResult carries the gateway token together with the signed-in user
type SignInResult struct {
	Token string        `json:"token"`
	User  entities.User `json:"user"`
}

type authService struct {
	gw       *gateway.Client
	notifier *Notifier
	logger   *zap.Logger
}

// NewAuthService constructs a new auth service
func NewAuthService(gw *gateway.Client, notifier *Notifier, logger *zap.Logger) Service {
	return &authService{
		gw:       gw,
		notifier: notifier,
		logger:   logger,
	}
}

// SignIn delegates credential verification to the gateway and publishes a
// signed-in event on success
func (s *authService) SignIn(ctx context.Context, identity, password string) (*SignInResult, error) {
	resp, err := s.gw.AuthWithPassword(ctx, identity, password)
	if err != nil {
		s.logger.Warn("sign-in rejected", zap.String("identity", identity), zap.Error(err))
		return nil, err
	}

	var user entities.User
	if err := json.Unmarshal(resp.Record, &user); err != nil {
		return nil, apperrors.ErrInternal(err)
	}

	s.logger.Info("user signed in", zap.String("user_id", user.ID))
	s.notifier.Publish(Event{Type: EventSignedIn, UserID: user.ID})

	return &SignInResult{Token: resp.Token, User: user}, nil
}

// SignUp registers a new account. The gateway enforces its own email and
// password rules; its message is surfaced unchanged on rejection.
func (s *authService) SignUp(ctx context.Context, email, password, passwordConfirm, name string) (*entities.User, error) {
	raw, err := s.gw.Register(ctx, email, password, passwordConfirm, name)
	if err != nil {
		return nil, err
	}

	var user entities.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, apperrors.ErrInternal(err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return &user, nil
}

// SignOut invalidates the local session. Gateway tokens are stateless, so
// sign-out is a matter of discarding the token and telling subscribers so
// dependent state (classroom sessions, cached Google tokens) gets dropped.
func (s *authService) SignOut(_ context.Context, token string) error {
	claims, err := authtoken.Parse(token)
	if err != nil {
		return apperrors.ErrUnauthenticated()
	}

	s.logger.Info("user signed out", zap.String("user_id", claims.RecordID))
	s.notifier.Publish(Event{Type: EventSignedOut, UserID: claims.RecordID})
	return nil
}

// CurrentUser resolves the owning user from a gateway token, rejecting
// expired tokens before any remote call is made
func (s *authService) CurrentUser(token string) (*authtoken.Claims, error) {
	claims, err := authtoken.Parse(token)
	if err != nil {
		return nil, apperrors.ErrUnauthenticated()
	}
	if claims.Expired(time.Now()) {
		return nil, apperrors.ErrTokenExpired()
	}
	return claims, nil
}

// OnAuthStateChange registers a handler for sign-in and sign-out events
func (s *authService) OnAuthStateChange(h Handler) func() {
	return s.notifier.Subscribe(h)
}
