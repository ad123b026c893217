package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	booking "github.com/roomhub/booking-go"
	"github.com/roomhub/booking-go/fake"
	"github.com/roomhub/booking-go/session"
	"github.com/roomhub/booking-go/store"
)

func newService(t *testing.T, opts ...fake.Option) (*session.Service, *fake.Provider, *store.Memory) {
	t.Helper()
	provider := fake.New(opts...)
	st := store.NewMemory()
	svc, err := session.New(provider, st)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return svc, provider, st
}

func TestNew_RequiresDependencies(t *testing.T) {
	if _, err := session.New(nil, store.NewMemory()); err == nil {
		t.Error("New(nil provider) expected error")
	}
	if _, err := session.New(fake.New(), nil); err == nil {
		t.Error("New(nil store) expected error")
	}
}

func TestLogin_PersistsSession(t *testing.T) {
	svc, _, st := newService(t, fake.WithUser("owner@example.com", "pw", "OWNERS"))

	user, err := svc.Login(context.Background(), "owner@example.com", "pw")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if user.Role != booking.RoleOwner {
		t.Errorf("Role = %v, want %v", user.Role, booking.RoleOwner)
	}

	if _, ok := st.AccessToken(); !ok {
		t.Error("access token not persisted")
	}
	if _, ok := st.IDToken(); !ok {
		t.Error("id token not persisted")
	}
	if _, ok := st.RefreshToken(); !ok {
		t.Error("refresh token not persisted")
	}
	stored, ok := st.User()
	if !ok {
		t.Fatal("user profile not persisted")
	}
	if stored.ID != user.ID {
		t.Errorf("stored user ID = %q, want %q", stored.ID, user.ID)
	}

	if !svc.IsAuthenticated() {
		t.Error("IsAuthenticated() = false after login")
	}
}

func TestLogin_FailureLeavesStoreEmpty(t *testing.T) {
	svc, _, st := newService(t, fake.WithUser("owner@example.com", "pw"))

	_, err := svc.Login(context.Background(), "owner@example.com", "wrong")
	if !errors.Is(err, booking.ErrInvalidCredentials) {
		t.Fatalf("Login() error = %v, want ErrInvalidCredentials", err)
	}
	if _, ok := st.AccessToken(); ok {
		t.Error("store should stay empty after failed login")
	}
}

func TestSignup_DoesNotMutateSession(t *testing.T) {
	svc, _, st := newService(t, fake.WithUser("owner@example.com", "pw"))

	if _, err := svc.Login(context.Background(), "owner@example.com", "pw"); err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	before, _ := st.AccessToken()

	if _, err := svc.Signup(context.Background(), booking.User{Email: "new@example.com"}, "pw"); err != nil {
		t.Fatalf("Signup() error: %v", err)
	}

	after, ok := st.AccessToken()
	if !ok || after != before {
		t.Error("Signup() must not touch the stored session")
	}
}

func TestRefreshOrLogout_Success(t *testing.T) {
	svc, _, st := newService(t, fake.WithUser("owner@example.com", "pw"))

	if _, err := svc.Login(context.Background(), "owner@example.com", "pw"); err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	before, _ := st.AccessToken()

	tok, ok := svc.RefreshOrLogout(context.Background())
	if !ok {
		t.Fatal("RefreshOrLogout() = not ok, want new token")
	}
	if tok == before {
		t.Error("RefreshOrLogout() returned the old access token")
	}

	stored, _ := st.AccessToken()
	if stored != tok {
		t.Errorf("stored access token = %q, want returned token %q", stored, tok)
	}
	if !svc.IsAuthenticated() {
		t.Error("session should stay active after a successful refresh")
	}
}

func TestRefreshOrLogout_RetainsRefreshTokenWhenOmitted(t *testing.T) {
	svc, _, st := newService(t,
		fake.WithUser("owner@example.com", "pw"),
		fake.WithRefreshRotation(false),
	)

	if _, err := svc.Login(context.Background(), "owner@example.com", "pw"); err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	before, _ := st.RefreshToken()

	if _, ok := svc.RefreshOrLogout(context.Background()); !ok {
		t.Fatal("RefreshOrLogout() failed")
	}

	after, ok := st.RefreshToken()
	if !ok || after != before {
		t.Errorf("refresh token after refresh = %q, want retained %q", after, before)
	}
}

func TestRefreshOrLogout_NoRefreshTokenClearsStore(t *testing.T) {
	svc, provider, st := newService(t)

	tok, ok := svc.RefreshOrLogout(context.Background())
	if ok || tok != "" {
		t.Errorf("RefreshOrLogout() = %q, %v; want \"\", false", tok, ok)
	}
	if provider.RefreshCalls() != 0 {
		t.Errorf("provider refresh called %d times, want 0", provider.RefreshCalls())
	}
	if _, ok := st.AccessToken(); ok {
		t.Error("store should be cleared")
	}
}

func TestRefreshOrLogout_FailureClearsStore(t *testing.T) {
	svc, provider, st := newService(t, fake.WithUser("owner@example.com", "pw"))

	if _, err := svc.Login(context.Background(), "owner@example.com", "pw"); err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	provider.FailRefresh(true)

	tok, ok := svc.RefreshOrLogout(context.Background())
	if ok || tok != "" {
		t.Errorf("RefreshOrLogout() = %q, %v; want \"\", false", tok, ok)
	}

	// Binary outcome: failed refresh leaves no session behind.
	if _, ok := st.AccessToken(); ok {
		t.Error("access token present after failed refresh")
	}
	if _, ok := st.RefreshToken(); ok {
		t.Error("refresh token present after failed refresh")
	}
	if _, ok := st.User(); ok {
		t.Error("user profile present after failed refresh")
	}
}

func TestRefreshOrLogout_Singleflight(t *testing.T) {
	svc, provider, _ := newService(t,
		fake.WithUser("owner@example.com", "pw"),
		fake.WithRefreshLatency(50*time.Millisecond),
	)

	if _, err := svc.Login(context.Background(), "owner@example.com", "pw"); err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	const n = 10
	tokens := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tok, ok := svc.RefreshOrLogout(context.Background())
			if !ok {
				t.Errorf("RefreshOrLogout() failed for caller %d", i)
			}
			tokens[i] = tok
		}(i)
	}
	wg.Wait()

	if provider.RefreshCalls() != 1 {
		t.Errorf("provider refresh called %d times, want 1 (coalesced)", provider.RefreshCalls())
	}
	for i := 1; i < n; i++ {
		if tokens[i] != tokens[0] {
			t.Errorf("caller %d observed token %q, caller 0 observed %q", i, tokens[i], tokens[0])
		}
	}
}

// slowProvider delegates to a fake provider but honors the caller's context
// during Refresh, the way a real HTTP provider does.
type slowProvider struct {
	*fake.Provider
	delay time.Duration
}

func (p *slowProvider) Refresh(ctx context.Context, refreshToken string) (*booking.AuthResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(p.delay):
	}
	return p.Provider.Refresh(ctx, refreshToken)
}

func TestRefreshOrLogout_DetachedFromCallerContext(t *testing.T) {
	inner := fake.New(fake.WithUser("owner@example.com", "pw"))
	provider := &slowProvider{Provider: inner, delay: 100 * time.Millisecond}
	st := store.NewMemory()
	svc, err := session.New(provider, st)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if _, err := svc.Login(context.Background(), "owner@example.com", "pw"); err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	// The first caller's deadline elapses while the refresh is in flight.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	var first, second bool
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, first = svc.RefreshOrLogout(ctx)
	}()
	time.Sleep(20 * time.Millisecond)

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, second = svc.RefreshOrLogout(context.Background())
	}()
	wg.Wait()

	if !first || !second {
		t.Errorf("outcomes = %v, %v; want both callers to observe the successful refresh", first, second)
	}
	if _, ok := st.AccessToken(); !ok {
		t.Error("session cleared: a caller's deadline aborted the shared refresh")
	}
	if inner.RefreshCalls() != 1 {
		t.Errorf("provider refresh called %d times, want 1", inner.RefreshCalls())
	}
}

func TestLogout_ClearsAllRecords(t *testing.T) {
	svc, _, st := newService(t, fake.WithUser("owner@example.com", "pw"))

	if _, err := svc.Login(context.Background(), "owner@example.com", "pw"); err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	if err := svc.Logout(context.Background()); err != nil {
		t.Fatalf("Logout() error: %v", err)
	}

	if _, ok := st.AccessToken(); ok {
		t.Error("access token present after logout")
	}
	if _, ok := st.IDToken(); ok {
		t.Error("id token present after logout")
	}
	if _, ok := st.RefreshToken(); ok {
		t.Error("refresh token present after logout")
	}
	if _, ok := st.User(); ok {
		t.Error("user profile present after logout")
	}
}

func TestLogout_Idempotent(t *testing.T) {
	svc, _, _ := newService(t)

	if err := svc.Logout(context.Background()); err != nil {
		t.Errorf("Logout() without session error: %v", err)
	}
	if err := svc.Logout(context.Background()); err != nil {
		t.Errorf("second Logout() error: %v", err)
	}
}
