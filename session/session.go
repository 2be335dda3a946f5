// Package session stores who is using lectern on this machine.
//
// There is no ambient current user: commands Load the session once and
// pass it to everything that acts on the learner's behalf.
package session

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lectern-cli/lectern/internal/store"
	"github.com/lectern-cli/lectern/where"
)

var ErrNoSession = errors.New("not logged in")

type Role string

const (
	Learner Role = "learner"
	Admin   Role = "admin"
)

type Session struct {
	LearnerID uuid.UUID `json:"learnerId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	StartedAt time.Time `json:"startedAt"`
}

// IsAdmin reports whether the session may moderate other learners' comments.
func (s *Session) IsAdmin() bool {
	return s.Role == Admin
}

// New validates name and email and returns a learner session with a fresh id.
func New(name, email string) (*Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("name must not be empty")
	}

	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return nil, fmt.Errorf("invalid email %q: %w", email, err)
	}

	return &Session{
		LearnerID: uuid.New(),
		Name:      name,
		Email:     strings.ToLower(addr.Address),
		Role:      Learner,
		StartedAt: time.Now(),
	}, nil
}

var document = store.New(where.Session, func() *Session { return nil })

// Load returns the stored session or ErrNoSession.
func Load() (*Session, error) {
	s, err := document.Load()
	if err != nil {
		return nil, err
	}
	if s == nil || s.LearnerID == uuid.Nil {
		return nil, ErrNoSession
	}
	return s, nil
}

func Save(s *Session) error {
	if s == nil || s.LearnerID == uuid.Nil {
		return errors.New("refusing to save an empty session")
	}
	return document.Save(s)
}

// Clear forgets the stored session. Progress and certificates are kept.
func Clear() error {
	return document.Reset()
}
