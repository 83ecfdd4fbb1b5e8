// Package session persists the signed-in account between launches.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"karsdrive/internal/domain"
)

// ErrNoSession is returned when no session has been saved.
var ErrNoSession = errors.New("no saved session")

// Session is the locally persisted login state. Both fields are written
// together at login/registration and removed together at logout.
type Session struct {
	UserID string      `json:"userId"`
	Role   domain.Role `json:"role"`
}

// Store reads and writes the session file.
type Store struct {
	path string
}

// NewStore creates a Store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the saved session. Returns ErrNoSession when the file does
// not exist or holds an incomplete record.
func (s *Store) Load() (*Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("read session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}

	if sess.UserID == "" || sess.Role == "" {
		return nil, ErrNoSession
	}

	return &sess, nil
}

// Save writes the session atomically.
func (s *Store) Save(sess Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}

	return os.Rename(tmp, s.path)
}

// Clear removes the saved session. Clearing an absent session is not an
// error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
