package store_test

import (
	"testing"

	booking "github.com/roomhub/booking-go"
	"github.com/roomhub/booking-go/store"
)

// both implementations must satisfy the same contract
func stores(t *testing.T) map[string]booking.SessionStore {
	t.Helper()
	file, err := store.NewFile(t.TempDir())
	if err != nil {
		t.Fatalf("NewFile() error: %v", err)
	}
	return map[string]booking.SessionStore{
		"memory": store.NewMemory(),
		"file":   file,
	}
}

func fullSession() booking.Session {
	return booking.Session{
		UserID:       "user-1",
		Email:        "mario@example.com",
		Role:         booking.RoleOwner,
		AccessToken:  "access-1",
		IDToken:      "id-1",
		RefreshToken: "refresh-1",
	}
}

func TestSaveSession_RoundTrip(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.SaveSession(fullSession()); err != nil {
				t.Fatalf("SaveSession() error: %v", err)
			}

			if tok, ok := s.AccessToken(); !ok || tok != "access-1" {
				t.Errorf("AccessToken() = %q, %v; want access-1, true", tok, ok)
			}
			if tok, ok := s.IDToken(); !ok || tok != "id-1" {
				t.Errorf("IDToken() = %q, %v; want id-1, true", tok, ok)
			}
			if tok, ok := s.RefreshToken(); !ok || tok != "refresh-1" {
				t.Errorf("RefreshToken() = %q, %v; want refresh-1, true", tok, ok)
			}
			user, ok := s.User()
			if !ok {
				t.Fatal("User() returned no profile")
			}
			if user.ID != "user-1" || user.Role != booking.RoleOwner {
				t.Errorf("User() = %+v, want user-1/OWNER", user)
			}
		})
	}
}

func TestSaveSession_EmptyFieldsDoNotOverwrite(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.SaveSession(fullSession()); err != nil {
				t.Fatalf("SaveSession() error: %v", err)
			}

			// Rotation that withheld a new refresh token.
			rotated := fullSession()
			rotated.AccessToken = "access-2"
			rotated.IDToken = "id-2"
			rotated.RefreshToken = ""
			if err := s.SaveSession(rotated); err != nil {
				t.Fatalf("SaveSession() error: %v", err)
			}

			if tok, _ := s.AccessToken(); tok != "access-2" {
				t.Errorf("AccessToken() = %q, want access-2", tok)
			}
			if tok, ok := s.RefreshToken(); !ok || tok != "refresh-1" {
				t.Errorf("RefreshToken() = %q, %v; want retained refresh-1", tok, ok)
			}
		})
	}
}

func TestGet_EmptyStore(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok := s.AccessToken(); ok {
				t.Error("AccessToken() on empty store reported a value")
			}
			if _, ok := s.User(); ok {
				t.Error("User() on empty store reported a value")
			}
		})
	}
}

func TestClear_RemovesAllRecords(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.SaveSession(fullSession()); err != nil {
				t.Fatalf("SaveSession() error: %v", err)
			}
			if err := s.Clear(); err != nil {
				t.Fatalf("Clear() error: %v", err)
			}

			if _, ok := s.AccessToken(); ok {
				t.Error("AccessToken() present after Clear()")
			}
			if _, ok := s.IDToken(); ok {
				t.Error("IDToken() present after Clear()")
			}
			if _, ok := s.RefreshToken(); ok {
				t.Error("RefreshToken() present after Clear()")
			}
			if _, ok := s.User(); ok {
				t.Error("User() present after Clear()")
			}
		})
	}
}

func TestClear_Idempotent(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Clear(); err != nil {
				t.Errorf("Clear() on empty store error: %v", err)
			}
			if err := s.Clear(); err != nil {
				t.Errorf("second Clear() error: %v", err)
			}
		})
	}
}

func TestFile_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	first, err := store.NewFile(dir)
	if err != nil {
		t.Fatalf("NewFile() error: %v", err)
	}
	if err := first.SaveSession(fullSession()); err != nil {
		t.Fatalf("SaveSession() error: %v", err)
	}

	second, err := store.NewFile(dir)
	if err != nil {
		t.Fatalf("NewFile() error: %v", err)
	}
	if tok, ok := second.AccessToken(); !ok || tok != "access-1" {
		t.Errorf("AccessToken() after reopen = %q, %v; want access-1, true", tok, ok)
	}
}
