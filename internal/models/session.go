package models

import (
	"fmt"
	"time"
)

var _ Model = (*Session)(nil)

// Session is the persisted login of a user: the bearer token plus the account it belongs to.
type Session struct {
	id        string
	sequence  int
	username  string
	token     string
	userID    string
	email     string
	expiresAt *time.Time
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewSession creates an unsaved session for the given login result.
func NewSession(sequence int, result AuthResult) *Session {
	now := time.Now()
	return &Session{
		sequence:  sequence,
		username:  result.User.Username,
		token:     result.Token,
		userID:    result.User.ID.String(),
		email:     result.User.Email,
		createdAt: now,
		updatedAt: now,
	}
}

func (s *Session) ID() string            { return s.id }
func (s *Session) Sequence() int         { return s.sequence }
func (s *Session) Username() string      { return s.username }
func (s *Session) Token() string         { return s.token }
func (s *Session) UserID() string        { return s.userID }
func (s *Session) Email() string         { return s.email }
func (s *Session) ExpiresAt() *time.Time { return s.expiresAt }
func (s *Session) CreatedAt() time.Time  { return s.createdAt }
func (s *Session) UpdatedAt() time.Time  { return s.updatedAt }
func (s *Session) DeletedAt() *time.Time { return s.deletedAt }

func (s *Session) SetID(id string)           { s.id = id }
func (s *Session) SetSequence(n int)         { s.sequence = n }
func (s *Session) SetToken(token string)     { s.token = token }
func (s *Session) SetExpiresAt(t *time.Time) { s.expiresAt = t }
func (s *Session) SetCreatedAt(t time.Time)  { s.createdAt = t }
func (s *Session) SetUpdatedAt(t time.Time)  { s.updatedAt = t }
func (s *Session) SetDeletedAt(t *time.Time) { s.deletedAt = t }
func (s *Session) SetUser(id, email string)  { s.userID, s.email = id, email }

// User rebuilds the account summary stored with the session.
func (s *Session) User() User {
	return User{ID: MovieID(s.userID), Username: s.username, Email: s.email}
}

// Validate requires a username and a token.
func (s *Session) Validate() error {
	if s.username == "" {
		return fmt.Errorf("session username is required")
	}
	if s.token == "" {
		return fmt.Errorf("session token is required")
	}
	return nil
}
