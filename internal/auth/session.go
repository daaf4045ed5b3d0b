package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/shared"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// Authenticator is the part of the API a session logs in and out with.
type Authenticator interface {
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error)
	Logout(ctx context.Context) error
}

// Store persists the current login between runs.
//
// Load returns [shared.ErrSessionNotFound] when nothing is stored.
type Store interface {
	Load() (*models.AuthResult, error)
	Save(result models.AuthResult, expiresAt *time.Time) error
	Clear() error
}

// Redirector sends the user to the login entry point.
type Redirector interface {
	RedirectToLogin()
}

// RedirectFunc adapts a plain function to [Redirector].
type RedirectFunc func()

func (f RedirectFunc) RedirectToLogin() {
	if f != nil {
		f()
	}
}

// Session is the authentication state of the current user.
//
// It is safe for concurrent use. Subscribers are notified synchronously, outside the lock,
// whenever the state flips between signed in and signed out.
type Session struct {
	mu        sync.RWMutex
	token     string
	user      models.User
	expiresAt *time.Time

	authed bool        // state last announced to subscribers
	expiry *time.Timer // fires expire at expiresAt

	store     Store
	logger    *log.Logger
	now       func() time.Time
	afterFunc func(time.Duration, func()) *time.Timer

	lmu       sync.Mutex
	nextID    int
	listeners map[int]func(bool)
}

var _ oauth2.TokenSource = (*Session)(nil)

// NewSession creates a signed-out session. A nil store keeps the login in memory only.
func NewSession(store Store, logger *log.Logger) *Session {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &Session{
		store:     store,
		logger:    logger,
		now:       time.Now,
		afterFunc: time.AfterFunc,
		listeners: map[int]func(bool){},
	}
}

// IsAuthenticated reports whether a token is held and has not passed its exp claim.
//
// Noticing a passed exp signs the session out, as the expiry timer would.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	ok, stale := s.valid(), s.authed
	s.mu.RUnlock()

	if stale && !ok {
		s.expire()
	}
	return ok
}

func (s *Session) valid() bool {
	if s.token == "" {
		return false
	}
	return s.expiresAt == nil || s.now().Before(*s.expiresAt)
}

// User returns the signed-in account.
func (s *Session) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.valid() {
		return models.User{}, false
	}
	return s.user, true
}

// ExpiresAt returns the token's expiry, or nil when the token carries none.
func (s *Session) ExpiresAt() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// Token implements [oauth2.TokenSource] for the API client.
func (s *Session) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch {
	case s.token == "":
		return nil, shared.ErrNotAuthenticated
	case !s.valid():
		return nil, fmt.Errorf("%w: %w", shared.ErrNotAuthenticated, shared.ErrTokenExpired)
	}

	tok := &oauth2.Token{AccessToken: s.token, TokenType: "Bearer"}
	if s.expiresAt != nil {
		tok.Expiry = *s.expiresAt
	}
	return tok, nil
}

// Login exchanges credentials for a token, stores it and notifies subscribers.
func (s *Session) Login(ctx context.Context, api Authenticator, creds models.Credentials) (models.User, error) {
	result, err := api.Login(ctx, creds)
	if err != nil {
		return models.User{}, err
	}

	expiresAt, err := TokenExpiry(result.Token)
	if err != nil {
		s.logger.Debug("token carries no readable expiry", "error", err)
	}

	if s.store != nil {
		if err := s.store.Save(*result, expiresAt); err != nil {
			return models.User{}, fmt.Errorf("failed to save session: %w", err)
		}
	}

	s.set(result.Token, result.User, expiresAt)
	s.logger.Info("signed in", "username", result.User.Username)
	return result.User, nil
}

// Logout tells the API the token is done with, then forgets it.
//
// Local state is cleared even when the remote call fails; that failure is only logged.
func (s *Session) Logout(ctx context.Context, api Authenticator) error {
	if api != nil && s.IsAuthenticated() {
		if err := api.Logout(ctx); err != nil {
			s.logger.Warn("remote logout failed", "error", err)
		}
	}

	var storeErr error
	if s.store != nil {
		if err := s.store.Clear(); err != nil {
			storeErr = fmt.Errorf("failed to clear session: %w", err)
		}
	}

	s.set("", models.User{}, nil)
	return storeErr
}

// Load restores the stored login, if any. An expired login is discarded.
func (s *Session) Load() error {
	if s.store == nil {
		return nil
	}

	result, err := s.store.Load()
	if errors.Is(err, shared.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	expiresAt, _ := TokenExpiry(result.Token)
	if expiresAt != nil && !s.now().Before(*expiresAt) {
		s.logger.Info("stored session expired", "username", result.User.Username)
		return s.store.Clear()
	}

	s.set(result.Token, result.User, expiresAt)
	return nil
}

// Subscribe registers fn for login and logout transitions and returns its cancel func.
func (s *Session) Subscribe(fn func(authenticated bool)) func() {
	s.lmu.Lock()
	defer s.lmu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.lmu.Lock()
		defer s.lmu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Session) set(token string, user models.User, expiresAt *time.Time) {
	s.mu.Lock()
	before := s.authed
	s.token, s.user, s.expiresAt = token, user, expiresAt
	s.authed = s.valid()
	after := s.authed

	if s.expiry != nil {
		s.expiry.Stop()
		s.expiry = nil
	}
	if after && expiresAt != nil {
		s.expiry = s.afterFunc(expiresAt.Sub(s.now()), s.expire)
	}
	s.mu.Unlock()

	if before != after {
		s.notify(after)
	}
}

// expire announces the sign-out of a token that passed its exp claim.
// The token itself is kept so [Session.Token] can report it as expired.
func (s *Session) expire() {
	s.mu.Lock()
	if !s.authed || s.valid() {
		s.mu.Unlock()
		return
	}
	s.authed = false
	s.expiry = nil
	username := s.user.Username
	s.mu.Unlock()

	s.logger.Info("session expired", "username", username)
	s.notify(false)
}

func (s *Session) notify(authenticated bool) {
	s.lmu.Lock()
	fns := make([]func(bool), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.lmu.Unlock()

	for _, fn := range fns {
		fn(authenticated)
	}
}

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
// A nil time with a nil error means the token has no exp claim.
func TokenExpiry(token string) (*time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, err
	}
	t := exp.Time
	return &t, nil
}
