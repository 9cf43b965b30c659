package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"inkwell/internal/models"
)

type sessionKey struct{}

// Session is the signed-in state of one client: the bearer token and the
// user it was issued to. A Session with a path is persisted as JSON so it
// survives restarts. All methods are safe on a nil *Session.
type Session struct {
	mu    sync.RWMutex
	path  string
	token string
	user  *models.User
}

type sessionFile struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// NewSession returns an empty, in-memory session.
func NewSession() *Session {
	return &Session{}
}

// LoadSession reads the session persisted at path. A missing file yields an
// empty session that will be written there on Save.
func LoadSession(path string) (*Session, error) {
	s := &Session{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", path, err)
	}
	s.token, s.user = f.Token, f.User
	return s, nil
}

// Token returns the bearer token, or "" when signed out.
func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the signed-in user, or nil.
func (s *Session) User() *models.User {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Save stores token and user and persists them.
func (s *Session) Save(token string, user *models.User) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.user = nil
	if user != nil {
		u := *user
		s.user = &u
	}
	return s.persist()
}

// Clear signs the session out and removes the persisted file. It is the
// only way a session loses its token.
func (s *Session) Clear() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token, s.user = "", nil
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// persist writes the session file through a temporary file. Callers hold mu.
func (s *Session) persist() error {
	if s.path == "" {
		return nil
	}

	data, err := json.Marshal(sessionFile{Token: s.token, User: s.user})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("create session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// WithSession returns a context carrying s for client calls.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session in ctx, or nil.
func SessionFrom(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}
