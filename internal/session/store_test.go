package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"grocli/internal/api"
	"grocli/internal/types"
)

type fakeAuth struct {
	result      *api.LoginResult
	loginErr    error
	block       chan struct{} // when non-nil, Login waits until closed
	logoutErr   error
	logoutCalls int
}

func (f *fakeAuth) Login(ctx context.Context, _ api.Credentials) (*api.LoginResult, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.result, nil
}

func (f *fakeAuth) Logout(context.Context) error {
	f.logoutCalls++
	return f.logoutErr
}

func testCreds(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "credentials.json"))
}

func consumerProfile() types.Profile {
	return types.Profile{ID: "u1", Name: "Asha", Phone: "9999999999", Role: types.RoleConsumer}
}

func TestRestoreWithoutFile(t *testing.T) {
	s := NewStore(testCreds(t), &fakeAuth{})
	s.Restore()

	snap := s.Snapshot()
	if !snap.Ready {
		t.Fatal("expected Ready after restore, even with nothing persisted")
	}
	if snap.Identity != nil {
		t.Fatalf("expected no identity, got %+v", snap.Identity)
	}
}

func TestRestoreWithPersistedCredentials(t *testing.T) {
	creds := testCreds(t)
	if err := creds.Save(Credentials{Token: "tok", Profile: consumerProfile()}); err != nil {
		t.Fatalf("save: %v", err)
	}

	s := NewStore(creds, &fakeAuth{})
	s.Restore()

	snap := s.Snapshot()
	if snap.Identity == nil || snap.Identity.ID != "u1" {
		t.Fatalf("expected restored identity u1, got %+v", snap.Identity)
	}
	if s.Token() != "tok" {
		t.Fatalf("expected token restored, got %q", s.Token())
	}
}

func TestRestoreWithCorruptFileStaysReady(t *testing.T) {
	creds := testCreds(t)
	if err := os.MkdirAll(filepath.Dir(creds.Path()), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(creds.Path(), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	s := NewStore(creds, &fakeAuth{})
	s.Restore()

	snap := s.Snapshot()
	if !snap.Ready || snap.Identity != nil {
		t.Fatalf("expected ready logged-out session, got %+v", snap)
	}
}

func TestLoginPersistsAndSetsIdentity(t *testing.T) {
	creds := testCreds(t)
	auth := &fakeAuth{result: &api.LoginResult{Token: "tok-1", Profile: consumerProfile()}}
	s := NewStore(creds, auth)
	s.Restore()

	ok, err := s.Login(context.Background(), "9999999999", "pw")
	if err != nil || !ok {
		t.Fatalf("expected successful login, got ok=%v err=%v", ok, err)
	}
	if s.Token() != "tok-1" {
		t.Fatalf("expected token set, got %q", s.Token())
	}

	persisted, err := creds.Load()
	if err != nil || persisted == nil || persisted.Token != "tok-1" {
		t.Fatalf("expected persisted credentials, got %+v err=%v", persisted, err)
	}
}

func TestLoginRejectionIsNotAnError(t *testing.T) {
	auth := &fakeAuth{loginErr: &api.ValidationError{Message: "wrong password"}}
	s := NewStore(testCreds(t), auth)

	ok, err := s.Login(context.Background(), "9999999999", "bad")
	if err != nil {
		t.Fatalf("validation rejection must not surface as error: %v", err)
	}
	if ok {
		t.Fatal("expected login rejected")
	}
}

func TestLogoutClearsEverythingEvenWhenRemoteFails(t *testing.T) {
	creds := testCreds(t)
	auth := &fakeAuth{
		result:    &api.LoginResult{Token: "tok", Profile: consumerProfile()},
		logoutErr: &api.NetworkError{Op: "POST /api/auth/logout", Err: context.DeadlineExceeded},
	}
	s := NewStore(creds, auth)
	if _, err := s.Login(context.Background(), "9999999999", "pw"); err != nil {
		t.Fatal(err)
	}

	s.Logout(context.Background())

	if snap := s.Snapshot(); snap.Identity != nil {
		t.Fatalf("expected cleared identity, got %+v", snap.Identity)
	}
	if s.Token() != "" {
		t.Fatal("expected cleared token")
	}
	if persisted, _ := creds.Load(); persisted != nil {
		t.Fatalf("expected credentials file gone, got %+v", persisted)
	}
	if auth.logoutCalls != 1 {
		t.Fatalf("expected remote logout attempted once, got %d", auth.logoutCalls)
	}
}

func TestLogoutDropsInFlightLoginResponse(t *testing.T) {
	// logout races a pending login: the late response must not repopulate
	// the cleared session.
	auth := &fakeAuth{
		result: &api.LoginResult{Token: "late-tok", Profile: consumerProfile()},
		block:  make(chan struct{}),
	}
	s := NewStore(testCreds(t), auth)
	s.Restore()

	done := make(chan struct{})
	go func() {
		defer close(done)
		ok, err := s.Login(context.Background(), "9999999999", "pw")
		if err != nil {
			t.Errorf("login returned error: %v", err)
		}
		if ok {
			t.Error("stale login must report failure")
		}
	}()

	time.Sleep(20 * time.Millisecond) // let the login get in flight
	s.Logout(context.Background())
	close(auth.block) // now the late response arrives

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("login goroutine did not finish")
	}

	if snap := s.Snapshot(); snap.Identity != nil {
		t.Fatalf("late login response repopulated session: %+v", snap.Identity)
	}
	if s.Token() != "" {
		t.Fatalf("late login response restored token %q", s.Token())
	}
}

func TestRefreshPicksUpExternalChange(t *testing.T) {
	creds := testCreds(t)
	s := NewStore(creds, &fakeAuth{})
	s.Restore()

	// Another process logs in
	if err := creds.Save(Credentials{Token: "ext", Profile: consumerProfile()}); err != nil {
		t.Fatal(err)
	}
	s.Refresh()
	if snap := s.Snapshot(); snap.Identity == nil {
		t.Fatal("expected identity after external login")
	}

	// Another process logs out
	if err := creds.Clear(); err != nil {
		t.Fatal(err)
	}
	s.Refresh()
	if snap := s.Snapshot(); snap.Identity != nil {
		t.Fatal("expected cleared identity after external logout")
	}
}

func TestGenerationGuard(t *testing.T) {
	s := NewStore(testCreds(t), &fakeAuth{})
	gen := s.Generation()
	if !s.StillCurrent(gen) {
		t.Fatal("fresh generation should be current")
	}

	s.Logout(context.Background())
	if s.StillCurrent(gen) {
		t.Fatal("generation must be invalidated by logout")
	}
}
