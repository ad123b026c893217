// Package store provides SessionStore implementations.
//
// A session is persisted as four independent records — access token,
// identity token, refresh token, and the user profile as JSON — so a
// partial write never corrupts the other records. The record names are
// fixed and removable as a unit on logout.
package store

import (
	"encoding/json"

	booking "github.com/roomhub/booking-go"
)

// Record names under which session fields are persisted.
const (
	RecordAccessToken  = "access_token"
	RecordIDToken      = "id_token"
	RecordRefreshToken = "refresh_token"
	RecordUser         = "user"
)

// records lists every record name, in the order they are written.
var records = []string{RecordAccessToken, RecordIDToken, RecordRefreshToken, RecordUser}

// encodeUser serializes the profile carried by a session, or returns ""
// when the session carries none.
func encodeUser(s booking.Session) (string, error) {
	if s.UserID == "" {
		return "", nil
	}
	data, err := json.Marshal(booking.User{ID: s.UserID, Email: s.Email, Role: s.Role})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeUser(raw string) (*booking.User, bool) {
	var u booking.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, false
	}
	return &u, true
}
