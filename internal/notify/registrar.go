// Package notify manages the device token used for order push
// notifications. The token is minted once per install, persisted next to the
// credentials file, and registered with the backend after login. Push
// delivery itself happens out of process; this client only owns
// registration.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"grocli/internal/logging"
)

// Registrar pushes a device token to the backend. *api.Client satisfies it.
type Registrar interface {
	RegisterDevice(ctx context.Context, deviceToken string) error
}

// NopRegistrar discards registrations. Used when push registration is
// disabled or no backend is reachable.
type NopRegistrar struct{}

func (NopRegistrar) RegisterDevice(context.Context, string) error { return nil }

// tokenFile is the persisted shape.
type tokenFile struct {
	DeviceToken string `json:"deviceToken"`
}

// TokenStore persists the install's device token.
type TokenStore struct {
	mu   sync.Mutex
	path string
}

// NewTokenStore creates a token store at the given path.
func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// DeviceToken returns the install's token, minting and persisting one on
// first use.
func (ts *TokenStore) DeviceToken() (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	data, err := os.ReadFile(ts.path)
	if err == nil {
		var tf tokenFile
		if jsonErr := json.Unmarshal(data, &tf); jsonErr == nil && tf.DeviceToken != "" {
			return tf.DeviceToken, nil
		}
		// Corrupt file: fall through and mint a fresh token
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to read device token: %w", err)
	}

	token := uuid.NewString()
	payload, err := json.Marshal(tokenFile{DeviceToken: token})
	if err != nil {
		return "", fmt.Errorf("failed to marshal device token: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(ts.path), 0755); err != nil {
		return "", fmt.Errorf("failed to create token directory: %w", err)
	}
	if err := os.WriteFile(ts.path, payload, 0600); err != nil {
		return "", fmt.Errorf("failed to persist device token: %w", err)
	}
	logging.Notify("minted device token %s", token)
	return token, nil
}

// Manager ties the token store to the backend registrar.
type Manager struct {
	tokens    *TokenStore
	registrar Registrar
}

// NewManager creates a registration manager.
func NewManager(tokens *TokenStore, registrar Registrar) *Manager {
	return &Manager{tokens: tokens, registrar: registrar}
}

// EnsureRegistered registers the device token for the logged-in account.
// Registration failure is not fatal to login; callers log and continue.
func (m *Manager) EnsureRegistered(ctx context.Context) error {
	token, err := m.tokens.DeviceToken()
	if err != nil {
		return err
	}
	if err := m.registrar.RegisterDevice(ctx, token); err != nil {
		return fmt.Errorf("device registration failed: %w", err)
	}
	logging.Notify("device registered")
	return nil
}
