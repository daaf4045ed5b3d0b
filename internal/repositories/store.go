package repositories

import (
	"fmt"
	"time"

	"github.com/desertthunder/flix/internal/auth"
	"github.com/desertthunder/flix/internal/models"
)

// SessionStore keeps exactly one active session, the current login.
type SessionStore struct {
	repo *SessionRepository
}

var _ auth.Store = (*SessionStore)(nil)

func NewSessionStore(repo *SessionRepository) *SessionStore {
	return &SessionStore{repo: repo}
}

// Load returns the current login or [shared.ErrSessionNotFound].
func (s *SessionStore) Load() (*models.AuthResult, error) {
	session, err := s.repo.Current()
	if err != nil {
		return nil, err
	}
	return &models.AuthResult{Token: session.Token(), User: session.User()}, nil
}

// Save replaces any previous login with result.
func (s *SessionStore) Save(result models.AuthResult, expiresAt *time.Time) error {
	if _, err := s.repo.ClearAll(); err != nil {
		return err
	}

	session := models.NewSession(0, result)
	session.SetExpiresAt(expiresAt)
	if err := s.repo.Create(session); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (s *SessionStore) Clear() error {
	_, err := s.repo.ClearAll()
	return err
}
