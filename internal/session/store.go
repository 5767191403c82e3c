package session

import (
	"context"
	"sync"

	"grocli/internal/api"
	"grocli/internal/logging"
	"grocli/internal/types"
)

// AuthAPI is the slice of the backend client the session store needs.
// *api.Client satisfies it.
type AuthAPI interface {
	Login(ctx context.Context, creds api.Credentials) (*api.LoginResult, error)
	Logout(ctx context.Context) error
}

// Snapshot is what route guards read: while Ready is false the UI renders a
// loading placeholder; once Ready, a nil Identity redirects to login.
type Snapshot struct {
	Identity *types.Profile
	Ready    bool
}

// Store holds the authenticated identity for the process lifetime.
type Store struct {
	mu    sync.Mutex
	creds *FileStore
	auth  AuthAPI

	identity *types.Profile
	token    string
	ready    bool

	// gen invalidates in-flight network results: any response that started
	// before a Logout carries a stale generation and is dropped instead of
	// repopulating cleared state.
	gen uint64
}

// NewStore creates a session store over the given credentials file.
func NewStore(creds *FileStore, auth AuthAPI) *Store {
	return &Store{creds: creds, auth: auth}
}

// Restore loads persisted credentials at startup. Ready becomes true whether
// or not anything was found; a broken credentials file degrades to
// logged-out, never to a stuck loading screen.
func (s *Store) Restore() {
	creds, err := s.creds.Load()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = true
	if err != nil {
		logging.SessionError("restore failed: %v", err)
		return
	}
	if creds == nil {
		logging.SessionDebug("no persisted credentials")
		return
	}
	profile := creds.Profile
	s.identity = &profile
	s.token = creds.Token
	logging.Session("restored identity %s (%s)", profile.ID, profile.Role)
}

// Login authenticates and persists the result. Returns false with a nil
// error when the backend rejected the credentials (validation failure);
// transport errors come back as errors.
func (s *Store) Login(ctx context.Context, phone, password string) (bool, error) {
	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()

	result, err := s.auth.Login(ctx, api.Credentials{Phone: phone, Password: password})
	if err != nil {
		if api.IsValidation(err) {
			return false, nil
		}
		return false, err
	}

	s.mu.Lock()
	if gen != s.gen {
		// Logout raced the login response; the cleared state wins
		s.mu.Unlock()
		logging.SessionDebug("dropping stale login response")
		return false, nil
	}
	profile := result.Profile
	s.identity = &profile
	s.token = result.Token
	s.ready = true
	s.mu.Unlock()

	if err := s.creds.Save(Credentials{Token: result.Token, Profile: result.Profile}); err != nil {
		logging.SessionError("failed to persist credentials: %v", err)
	}
	logging.Session("logged in as %s (%s)", profile.ID, profile.Role)
	return true, nil
}

// Logout clears the in-memory identity and the persisted credentials
// unconditionally, then tells the backend. A failed remote invalidation is
// logged and ignored: local correctness over the remote call's outcome.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.gen++
	s.identity = nil
	s.token = ""
	s.mu.Unlock()

	if err := s.creds.Clear(); err != nil {
		logging.SessionError("failed to clear credentials: %v", err)
	}

	if s.auth != nil {
		if err := s.auth.Logout(ctx); err != nil {
			logging.SessionDebug("remote logout failed (ignored): %v", err)
		}
	}
	logging.Session("logged out")
}

// Refresh re-reads the persisted profile into memory without a network
// call. The watcher calls this when another process rewrites the file.
func (s *Store) Refresh() {
	creds, err := s.creds.Load()
	if err != nil {
		logging.SessionError("refresh failed: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if creds == nil {
		s.identity = nil
		s.token = ""
		return
	}
	profile := creds.Profile
	s.identity = &profile
	s.token = creds.Token
}

// Snapshot returns the guard view of the session.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{Ready: s.ready}
	if s.identity != nil {
		profile := *s.identity
		snap.Identity = &profile
	}
	return snap
}

// Token returns the current bearer token ("" when logged out). Wired into
// the API client as its token source.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Generation returns the current logout generation. Callers snapshot it
// before starting an async call and check StillCurrent before applying the
// result to shared state.
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// StillCurrent reports whether no logout happened since gen was taken.
func (s *Store) StillCurrent(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen == s.gen
}
