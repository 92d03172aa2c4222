package v1

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynhne/auth-gateway/internal/core/cache"
	"github.com/duynhne/auth-gateway/internal/core/domain"
)

type fakeSessionResolver struct {
	calls   atomic.Int64
	session *domain.SessionUser
	err     error
}

func (f *fakeSessionResolver) Resolve(_ context.Context, _ domain.Credentials) (*domain.SessionUser, error) {
	f.calls.Add(1)
	return f.session, f.err
}

type fakeProfileResolver struct {
	calls   atomic.Int64
	profile *domain.Profile
	err     error
}

func (f *fakeProfileResolver) Profile(_ context.Context, _ domain.Credentials) (*domain.Profile, error) {
	f.calls.Add(1)
	return f.profile, f.err
}

func sessionFor(userID string) *domain.SessionUser {
	return &domain.SessionUser{
		Session: &domain.Session{
			ID:        "sess-" + userID,
			UserID:    userID,
			ExpiresAt: time.Now().Add(time.Hour),
		},
		User: &domain.User{ID: userID, Email: userID + "@example.com"},
	}
}

func newGuard(sessions *fakeSessionResolver, profiles *fakeProfileResolver) *GuardService {
	return NewGuardService(sessions, profiles, cache.New(30*time.Second, 100), NewRouteTable(DefaultRules()))
}

var creds = domain.Credentials{Cookie: "session_token=abc"}

func TestSkipPathNeverResolves(t *testing.T) {
	sessions := &fakeSessionResolver{session: sessionFor("u1")}
	profiles := &fakeProfileResolver{profile: &domain.Profile{ProfileType: "trader", Role: "user", IsActive: true}}
	guard := newGuard(sessions, profiles)

	d := guard.Authorize(context.Background(), "/assets/app.css", creds)

	assert.True(t, d.Allow)
	assert.Zero(t, sessions.calls.Load(), "static assets must not hit the session endpoint")
	assert.Zero(t, profiles.calls.Load(), "static assets must not hit the profile endpoint")
}

func TestProtectedWithoutSessionRedirectsToLogin(t *testing.T) {
	guard := newGuard(&fakeSessionResolver{}, &fakeProfileResolver{})

	for _, path := range []string{"/dashboard", "/dashboard/trader", "/settings", "/dashboard/admin/billing"} {
		d := guard.Authorize(context.Background(), path, creds)
		assert.False(t, d.Allow, path)
		assert.Equal(t, "/login", d.RedirectTo, path)
		assert.Equal(t, http.StatusFound, d.Status, path)
		assert.ErrorIs(t, d.Reason, ErrNoSession)
	}
}

func TestEmptyCredentialsShortCircuit(t *testing.T) {
	sessions := &fakeSessionResolver{session: sessionFor("u1")}
	guard := newGuard(sessions, &fakeProfileResolver{})

	d := guard.Authorize(context.Background(), "/dashboard", domain.Credentials{})

	assert.Equal(t, "/login", d.RedirectTo)
	assert.Zero(t, sessions.calls.Load(), "no credentials means nothing to resolve")
}

func TestExpiredSessionIsUnauthenticated(t *testing.T) {
	su := sessionFor("u1")
	su.Session.ExpiresAt = time.Now().Add(-time.Minute)
	guard := newGuard(
		&fakeSessionResolver{session: su},
		&fakeProfileResolver{profile: &domain.Profile{ProfileType: "trader", Role: "user", IsActive: true}},
	)

	d := guard.Authorize(context.Background(), "/dashboard", creds)

	assert.Equal(t, "/login", d.RedirectTo)
	assert.ErrorIs(t, d.Reason, ErrNoSession)
}

func TestInactiveAccountRedirectsWithErrorIndicator(t *testing.T) {
	guard := newGuard(
		&fakeSessionResolver{session: sessionFor("u1")},
		&fakeProfileResolver{profile: &domain.Profile{ProfileType: "trader", Role: "user", IsActive: false}},
	)

	d := guard.Authorize(context.Background(), "/dashboard", creds)

	assert.False(t, d.Allow)
	assert.Equal(t, "/login?error=account_inactive", d.RedirectTo)
	assert.Equal(t, http.StatusFound, d.Status)
	assert.ErrorIs(t, d.Reason, ErrAccountInactive)
}

func TestTraderOnAdminDashboardRedirectsToOwnDashboard(t *testing.T) {
	guard := newGuard(
		&fakeSessionResolver{session: sessionFor("u1")},
		&fakeProfileResolver{profile: &domain.Profile{ProfileType: "trader", Role: "user", IsActive: true}},
	)

	d := guard.Authorize(context.Background(), "/dashboard/admin", creds)

	assert.False(t, d.Allow, "a trader must never be granted admin access")
	assert.Equal(t, "/dashboard/trader", d.RedirectTo)
	assert.Equal(t, http.StatusFound, d.Status)
	assert.ErrorIs(t, d.Reason, ErrProfileForbidden)
}

func TestRoleDenialIsForbiddenToDefaultDashboard(t *testing.T) {
	guard := newGuard(
		&fakeSessionResolver{session: sessionFor("u1")},
		&fakeProfileResolver{profile: &domain.Profile{ProfileType: "admin", Role: "support", IsActive: true}},
	)

	d := guard.Authorize(context.Background(), "/dashboard/admin/billing", creds)

	assert.False(t, d.Allow)
	assert.Equal(t, "/dashboard", d.RedirectTo)
	assert.Equal(t, http.StatusForbidden, d.Status)
	assert.ErrorIs(t, d.Reason, ErrRoleForbidden)
}

func TestAllowedProfileAndRolePassThrough(t *testing.T) {
	guard := newGuard(
		&fakeSessionResolver{session: sessionFor("u1")},
		&fakeProfileResolver{profile: &domain.Profile{ProfileType: "admin", Role: "owner", IsActive: true}},
	)

	d := guard.Authorize(context.Background(), "/dashboard/admin/billing", creds)

	require.True(t, d.Allow)
	require.NotNil(t, d.Identity)
	assert.Equal(t, "u1", d.Identity.User.ID)
}

func TestAuthPageWithActiveSessionRedirectsToDashboard(t *testing.T) {
	guard := newGuard(
		&fakeSessionResolver{session: sessionFor("u1")},
		&fakeProfileResolver{profile: &domain.Profile{ProfileType: "trader", Role: "user", IsActive: true}},
	)

	for _, path := range []string{"/login", "/register"} {
		d := guard.Authorize(context.Background(), path, creds)
		assert.False(t, d.Allow, path)
		assert.Equal(t, "/dashboard", d.RedirectTo, path)
		assert.ErrorIs(t, d.Reason, ErrAlreadyAuthenticated)
	}
}

func TestAuthPageWithoutSessionPassesThrough(t *testing.T) {
	guard := newGuard(&fakeSessionResolver{}, &fakeProfileResolver{})

	d := guard.Authorize(context.Background(), "/login", creds)

	assert.True(t, d.Allow)
	assert.Nil(t, d.Identity)
}

func TestPublicRouteAttachesIdentityButNeverRequiresIt(t *testing.T) {
	guard := newGuard(
		&fakeSessionResolver{session: sessionFor("u1")},
		&fakeProfileResolver{profile: &domain.Profile{ProfileType: "trader", Role: "user", IsActive: true}},
	)

	d := guard.Authorize(context.Background(), "/pricing", creds)
	require.True(t, d.Allow)
	require.NotNil(t, d.Identity, "identity is attached for personalization")

	d = guard.Authorize(context.Background(), "/pricing", domain.Credentials{})
	assert.True(t, d.Allow)
	assert.Nil(t, d.Identity)
}

func TestResolverFailureDegradesToUnauthenticated(t *testing.T) {
	guard := newGuard(
		&fakeSessionResolver{err: errors.New("connection refused")},
		&fakeProfileResolver{err: errors.New("connection refused")},
	)

	d := guard.Authorize(context.Background(), "/dashboard", creds)

	assert.False(t, d.Allow)
	assert.Equal(t, "/login", d.RedirectTo)
	assert.ErrorIs(t, d.Reason, ErrNoSession)
}

func TestProfileFailureDoesNotLockOutPlainProtectedRoutes(t *testing.T) {
	guard := newGuard(
		&fakeSessionResolver{session: sessionFor("u1")},
		&fakeProfileResolver{err: errors.New("profile service down")},
	)

	d := guard.Authorize(context.Background(), "/dashboard", creds)
	assert.True(t, d.Allow, "a profile blip must not bounce users off unrestricted pages")

	d = guard.Authorize(context.Background(), "/dashboard/admin", creds)
	assert.False(t, d.Allow, "restricted routes stay closed without a profile")
	assert.Equal(t, "/dashboard", d.RedirectTo)
}

func TestResolutionIsCachedWithinTTL(t *testing.T) {
	sessions := &fakeSessionResolver{session: sessionFor("u1")}
	profiles := &fakeProfileResolver{profile: &domain.Profile{ProfileType: "trader", Role: "user", IsActive: true}}
	guard := newGuard(sessions, profiles)

	for i := 0; i < 5; i++ {
		guard.Authorize(context.Background(), "/dashboard", creds)
	}

	assert.Equal(t, int64(1), sessions.calls.Load(), "repeat requests within the TTL must hit the cache")
	assert.Equal(t, int64(1), profiles.calls.Load())
}

func TestAbsentResolutionIsCachedToo(t *testing.T) {
	sessions := &fakeSessionResolver{}
	guard := newGuard(sessions, &fakeProfileResolver{})

	for i := 0; i < 5; i++ {
		guard.Authorize(context.Background(), "/dashboard", creds)
	}

	assert.Equal(t, int64(1), sessions.calls.Load(), "confirmed absence must not be re-resolved per request")
}

func TestDistinctCredentialsResolveIndependently(t *testing.T) {
	sessions := &fakeSessionResolver{session: sessionFor("u1")}
	guard := newGuard(sessions, &fakeProfileResolver{profile: &domain.Profile{ProfileType: "trader", Role: "user", IsActive: true}})

	guard.Authorize(context.Background(), "/dashboard", domain.Credentials{Cookie: "session_token=a"})
	guard.Authorize(context.Background(), "/dashboard", domain.Credentials{Cookie: "session_token=b"})

	assert.Equal(t, int64(2), sessions.calls.Load(), "resolutions are never shared across credential hashes")
}
