// Package session holds the authenticated identity for the running client:
// restored once at startup from the persisted credentials file, cleared on
// logout, and watched for changes made by other grocli processes.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"grocli/internal/types"
)

// Credentials is the persisted token+profile pair.
type Credentials struct {
	Token   string        `json:"token"`
	Profile types.Profile `json:"profile"`
}

// FileStore persists credentials as JSON. File mode is 0600: the token is a
// bearer secret.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a credentials store at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file location (the watcher needs it).
func (fs *FileStore) Path() string { return fs.path }

// Load reads persisted credentials. A missing file returns (nil, nil).
func (fs *FileStore) Load() (*Credentials, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	if creds.Token == "" {
		return nil, nil
	}
	return &creds, nil
}

// Save writes credentials to disk.
func (fs *FileStore) Save(creds Credentials) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	dir := filepath.Dir(fs.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if err := os.WriteFile(fs.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}

// Clear deletes the credentials file. A missing file is not an error.
func (fs *FileStore) Clear() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := os.Remove(fs.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	return nil
}
