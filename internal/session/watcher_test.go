package session

import (
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherRefreshesOnExternalWrite(t *testing.T) {
	dir := t.TempDir()
	creds := NewFileStore(filepath.Join(dir, "credentials.json"))
	s := NewStore(creds, &fakeAuth{})
	s.Restore()

	refreshed := make(chan Snapshot, 4)
	w, err := NewWatcher(s, func(snap Snapshot) { refreshed <- snap })
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	// Simulate a login from another process
	if err := creds.Save(Credentials{Token: "ext-tok", Profile: consumerProfile()}); err != nil {
		t.Fatal(err)
	}

	select {
	case snap := <-refreshed:
		if snap.Identity == nil || snap.Identity.ID != "u1" {
			t.Fatalf("expected refreshed identity, got %+v", snap.Identity)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher never observed the external write")
	}

	if s.Token() != "ext-tok" {
		t.Fatalf("store not refreshed, token=%q", s.Token())
	}
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	creds := NewFileStore(filepath.Join(t.TempDir(), "credentials.json"))
	s := NewStore(creds, &fakeAuth{})

	w, err := NewWatcher(s, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	w.Stop()
	w.Stop() // second stop must not panic or block
}
