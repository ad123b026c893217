package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	booking "github.com/roomhub/booking-go"
)

// File is a durable SessionStore keeping one file per record under a state
// directory. Files are written with 0600 permissions; the directory is
// created on first use.
type File struct {
	dir string
	mu  sync.RWMutex
}

var _ booking.SessionStore = (*File)(nil)

// NewFile creates a file-backed session store rooted at dir.
func NewFile(dir string) (*File, error) {
	if dir == "" {
		return nil, fmt.Errorf("store: state directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("store: create state dir: %w", err)
	}
	return &File{dir: dir}, nil
}

// SaveSession writes each present field to its own file. Empty fields leave
// the existing file untouched, so a rotation that withheld a refresh token
// keeps the previous one on disk.
func (f *File) SaveSession(s booking.Session) error {
	user, err := encodeUser(s)
	if err != nil {
		return fmt.Errorf("store: encode user: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for record, value := range map[string]string{
		RecordAccessToken:  s.AccessToken,
		RecordIDToken:      s.IDToken,
		RecordRefreshToken: s.RefreshToken,
		RecordUser:         user,
	} {
		if value == "" {
			continue
		}
		if err := os.WriteFile(f.path(record), []byte(value), 0o600); err != nil {
			return fmt.Errorf("store: write %s: %w", record, err)
		}
	}
	return nil
}

// AccessToken returns the stored access token.
func (f *File) AccessToken() (string, bool) { return f.get(RecordAccessToken) }

// IDToken returns the stored identity token.
func (f *File) IDToken() (string, bool) { return f.get(RecordIDToken) }

// RefreshToken returns the stored refresh token.
func (f *File) RefreshToken() (string, bool) { return f.get(RecordRefreshToken) }

// User returns the stored user profile.
func (f *File) User() (*booking.User, bool) {
	raw, ok := f.get(RecordUser)
	if !ok {
		return nil, false
	}
	return decodeUser(raw)
}

// Clear removes all four record files. Missing files are not an error.
func (f *File) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var firstErr error
	for _, record := range records {
		if err := os.Remove(f.path(record)); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = fmt.Errorf("store: remove %s: %w", record, err)
		}
	}
	return firstErr
}

func (f *File) get(record string) (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := os.ReadFile(f.path(record))
	if err != nil || len(data) == 0 {
		return "", false
	}
	return string(data), true
}

func (f *File) path(record string) string {
	return filepath.Join(f.dir, record)
}
