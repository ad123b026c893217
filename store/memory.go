package store

import (
	"fmt"
	"sync"

	booking "github.com/roomhub/booking-go"
)

// Memory is a map-backed SessionStore for tests and ephemeral sessions.
type Memory struct {
	mu      sync.RWMutex
	records map[string]string
}

var _ booking.SessionStore = (*Memory)(nil)

// NewMemory creates an empty in-memory session store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]string)}
}

// SaveSession writes each present field as its own record. Empty fields
// leave the stored record untouched.
func (m *Memory) SaveSession(s booking.Session) error {
	user, err := encodeUser(s)
	if err != nil {
		return fmt.Errorf("store: encode user: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for record, value := range map[string]string{
		RecordAccessToken:  s.AccessToken,
		RecordIDToken:      s.IDToken,
		RecordRefreshToken: s.RefreshToken,
		RecordUser:         user,
	} {
		if value != "" {
			m.records[record] = value
		}
	}
	return nil
}

// AccessToken returns the stored access token.
func (m *Memory) AccessToken() (string, bool) { return m.get(RecordAccessToken) }

// IDToken returns the stored identity token.
func (m *Memory) IDToken() (string, bool) { return m.get(RecordIDToken) }

// RefreshToken returns the stored refresh token.
func (m *Memory) RefreshToken() (string, bool) { return m.get(RecordRefreshToken) }

// User returns the stored user profile.
func (m *Memory) User() (*booking.User, bool) {
	raw, ok := m.get(RecordUser)
	if !ok {
		return nil, false
	}
	return decodeUser(raw)
}

// Clear removes all four records.
func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, record := range records {
		delete(m.records, record)
	}
	return nil
}

func (m *Memory) get(record string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.records[record]
	return v, ok && v != ""
}
