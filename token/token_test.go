package token_test

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	booking "github.com/roomhub/booking-go"
	"github.com/roomhub/booking-go/token"
)

func mint(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("SignedString() error: %v", err)
	}
	return signed
}

func TestDecode_StandardClaims(t *testing.T) {
	now := time.Now()
	raw := mint(t, jwt.MapClaims{
		"sub":            "user-1",
		"email":          "mario@example.com",
		"cognito:groups": []string{"OWNERS", "TESTERS"},
		"exp":            now.Add(time.Hour).Unix(),
		"iat":            now.Unix(),
		"custom":         "value",
	})

	claims, err := token.Decode(raw)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Errorf("Subject = %q, want %q", claims.Subject, "user-1")
	}
	if claims.Email != "mario@example.com" {
		t.Errorf("Email = %q, want %q", claims.Email, "mario@example.com")
	}
	if len(claims.Groups) != 2 || claims.Groups[0] != "OWNERS" {
		t.Errorf("Groups = %v, want [OWNERS TESTERS]", claims.Groups)
	}
	if claims.ExpiresAt.Unix() != now.Add(time.Hour).Unix() {
		t.Errorf("ExpiresAt = %v, want %v", claims.ExpiresAt, now.Add(time.Hour))
	}
	if claims.Extra["custom"] != "value" {
		t.Errorf("Extra[custom] = %v, want %q", claims.Extra["custom"], "value")
	}
}

func TestDecode_NoGroups(t *testing.T) {
	raw := mint(t, jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(time.Hour).Unix()})

	claims, err := token.Decode(raw)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if len(claims.Groups) != 0 {
		t.Errorf("Groups = %v, want empty", claims.Groups)
	}
}

func TestDecode_Malformed(t *testing.T) {
	for _, raw := range []string{"", "not-a-token", "a.b", "x.y.z"} {
		_, err := token.Decode(raw)
		if err == nil {
			t.Errorf("Decode(%q) expected error", raw)
			continue
		}
		if !errors.Is(err, booking.ErrTokenMalformed) {
			t.Errorf("Decode(%q) error = %v, want ErrTokenMalformed", raw, err)
		}
	}
}

func TestExpiringSoon_Boundaries(t *testing.T) {
	threshold := 60 * time.Second

	tests := []struct {
		name string
		exp  time.Time
		want bool
	}{
		{"expires in 59s", time.Now().Add(59 * time.Second), true},
		{"expires in 61s", time.Now().Add(61 * time.Second), false},
		{"already expired", time.Now().Add(-time.Hour), true},
		{"far future", time.Now().Add(24 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := mint(t, jwt.MapClaims{"sub": "u", "exp": tt.exp.Unix()})
			if got := token.ExpiringSoon(raw, threshold); got != tt.want {
				t.Errorf("ExpiringSoon() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpiringSoon_FailsSafe(t *testing.T) {
	if !token.ExpiringSoon("garbage", token.DefaultExpiryThreshold) {
		t.Error("ExpiringSoon() on undecodable token = false, want true")
	}

	// Well-formed token without an exp claim is treated as expiring.
	raw := mint(t, jwt.MapClaims{"sub": "u"})
	if !token.ExpiringSoon(raw, token.DefaultExpiryThreshold) {
		t.Error("ExpiringSoon() without exp claim = false, want true")
	}
}

func TestRoleFromGroups(t *testing.T) {
	tests := []struct {
		name        string
		groups      []string
		ownersGroup string
		want        booking.Role
	}{
		{"owners member", []string{"OWNERS"}, "", booking.RoleOwner},
		{"owners among others", []string{"TESTERS", "OWNERS"}, "", booking.RoleOwner},
		{"no groups", nil, "", booking.RoleGuest},
		{"unrelated groups", []string{"TESTERS"}, "", booking.RoleGuest},
		{"custom owners group", []string{"hosts"}, "hosts", booking.RoleOwner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := token.RoleFromGroups(tt.groups, tt.ownersGroup); got != tt.want {
				t.Errorf("RoleFromGroups(%v) = %v, want %v", tt.groups, got, tt.want)
			}
		})
	}
}

func TestUserFromIDToken(t *testing.T) {
	raw := mint(t, jwt.MapClaims{
		"sub":            "user-7",
		"email":          "owner@example.com",
		"cognito:groups": []string{"OWNERS"},
		"exp":            time.Now().Add(time.Hour).Unix(),
	})

	user, err := token.UserFromIDToken(raw, "")
	if err != nil {
		t.Fatalf("UserFromIDToken() error: %v", err)
	}
	if user.ID != "user-7" {
		t.Errorf("ID = %q, want %q", user.ID, "user-7")
	}
	if user.Role != booking.RoleOwner {
		t.Errorf("Role = %v, want %v", user.Role, booking.RoleOwner)
	}
}

func TestUserFromIDToken_MissingSubject(t *testing.T) {
	raw := mint(t, jwt.MapClaims{"email": "x@example.com"})

	_, err := token.UserFromIDToken(raw, "")
	if !errors.Is(err, booking.ErrTokenMalformed) {
		t.Errorf("error = %v, want ErrTokenMalformed", err)
	}
}
