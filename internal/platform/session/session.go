// Package session persists the staff login session — bearer token, user,
// and network scope — to a JSON file, mirroring the browser session storage
// the original front end used. The store is the single identity context
// injected into the API client; it mutates state only, never navigates or
// issues requests.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/meghalaya-hospital/registry-admin/internal/platform/registry"
)

// Session is the persisted document. Field names match the storage keys the
// original UI used.
type Session struct {
	AccessToken string        `json:"accessToken"`
	User        registry.User `json:"user"`
	NetworkID   string        `json:"networkId"`
}

// Store owns a Session in memory and on disk. Safe for concurrent use.
type Store struct {
	path string
	log  zerolog.Logger

	mu sync.Mutex
	s  Session
}

// DefaultPath is the session file location under the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "registry-admin", "session.json"), nil
}

// Open rehydrates a store from path, best-effort: a missing or unreadable
// file yields an empty (logged-out) session rather than an error.
func Open(path string, log zerolog.Logger) *Store {
	st := &Store{path: path, log: log}
	raw, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Debug().Err(err).Str("path", path).Msg("session file unreadable, starting logged out")
		}
		return st
	}
	if err := json.Unmarshal(raw, &st.s); err != nil {
		log.Debug().Err(err).Str("path", path).Msg("session file corrupt, starting logged out")
		st.s = Session{}
	}
	return st
}

// Login stores the token and user and persists the session. The network
// scope is taken from the user record.
func (st *Store) Login(token string, user registry.User) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s = Session{AccessToken: token, User: user, NetworkID: user.NetworkID}
	return st.persist()
}

// Logout clears memory and removes the session file.
func (st *Store) Logout() error {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s = Session{}
	if err := os.Remove(st.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// Token implements registry.TokenSource. Empty means logged out.
func (st *Store) Token() string {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.s.AccessToken
}

// Current returns a copy of the session.
func (st *Store) Current() Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.s
}

// Authenticated reports whether a token is present. No expiry check happens
// here; a server-side-invalid token keeps failing until the next login.
func (st *Store) Authenticated() bool { return st.Token() != "" }

// Claims decodes the token's JWT claims without verifying the signature.
// Display-only: the backend is the sole authority on token validity.
func (st *Store) Claims() (jwt.MapClaims, error) {
	token := st.Token()
	if token == "" {
		return nil, errors.New("no session token")
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("decode token claims: %w", err)
	}
	return claims, nil
}

func (st *Store) persist() error {
	raw, err := json.MarshalIndent(st.s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(st.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(st.path, raw, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}
