package v1

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/duynhne/auth-gateway/internal/core/cache"
	"github.com/duynhne/auth-gateway/internal/core/domain"
	"github.com/duynhne/auth-gateway/internal/logger"
	"github.com/duynhne/auth-gateway/middleware"
)

// Decision is the guard's verdict for one request.
type Decision struct {
	// Allow passes the request through to the renderer.
	Allow bool
	// RedirectTo is the target path when Allow is false.
	RedirectTo string
	// Status is the response status for a deny: 302 for redirects, 403
	// for role denials (which still carry a Location header).
	Status int
	// Reason is the sentinel explaining a deny; nil when allowed.
	Reason error
	// Identity is the resolved identity, nil when unauthenticated. Set on
	// allows so the web layer can attach user and session downstream.
	Identity *domain.Identity
}

// GuardService implements the session-resolution and route-guarding rules.
// It depends on the resolver interfaces (injected via constructor) and
// never talks HTTP to the backend directly.
type GuardService struct {
	sessions domain.SessionResolver
	profiles domain.ProfileResolver
	cache    *cache.Cache
	routes   *RouteTable

	now func() time.Time
}

// NewGuardService creates a GuardService with the given dependencies.
func NewGuardService(sessions domain.SessionResolver, profiles domain.ProfileResolver, c *cache.Cache, routes *RouteTable) *GuardService {
	return &GuardService{
		sessions: sessions,
		profiles: profiles,
		cache:    c,
		routes:   routes,
		now:      time.Now,
	}
}

// Authorize classifies the path, resolves an identity for the credentials
// (through the cache) and evaluates the redirect policy. It never returns
// an error: resolution failures degrade to the unauthenticated path.
func (s *GuardService) Authorize(ctx context.Context, path string, creds domain.Credentials) Decision {
	ctx, span := middleware.StartSpan(ctx, "guard.authorize", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("guard.path", path),
	))
	defer span.End()

	cl := s.routes.Classify(path)
	if cl.Class == RouteSkip {
		// Skip paths never trigger session resolution.
		span.SetAttributes(attribute.String("guard.class", "skip"))
		middleware.RecordGuardDecision("skip")
		return Decision{Allow: true}
	}

	identity := s.resolveIdentity(ctx, creds)
	d := s.decide(cl, identity)

	span.SetAttributes(
		attribute.Bool("guard.allow", d.Allow),
		attribute.Bool("session.present", identity != nil),
	)
	if d.Reason != nil {
		span.AddEvent("guard.denied", trace.WithAttributes(
			attribute.String("reason", d.Reason.Error()),
			attribute.String("redirect", d.RedirectTo),
		))
	}
	middleware.RecordGuardDecision(outcome(d))
	return d
}

// resolveIdentity establishes the identity for the credentials, consulting
// the cache first. On a miss the session and profile lookups are issued
// concurrently, and the combined result — including a confirmed absence —
// is cached under the credential hash.
func (s *GuardService) resolveIdentity(ctx context.Context, creds domain.Credentials) *domain.Identity {
	if creds.Empty() {
		return nil
	}

	hash := creds.Hash()
	if identity, ok := s.cache.Get(hash); ok {
		middleware.RecordCacheHit()
		return identity
	}
	middleware.RecordCacheMiss()

	var (
		su      *domain.SessionUser
		profile *domain.Profile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if su, err = s.sessions.Resolve(gctx, creds); err != nil {
			s.degrade(ctx, "session", err)
			su = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if profile, err = s.profiles.Profile(gctx, creds); err != nil {
			s.degrade(ctx, "profile", err)
			profile = nil
		}
		return nil
	})
	_ = g.Wait() // workers only degrade, never fail

	var identity *domain.Identity
	if su != nil {
		identity = &domain.Identity{Session: su.Session, User: su.User, Profile: profile}
	}
	s.cache.Put(hash, identity)
	return identity
}

// degrade logs a backend failure that was absorbed into "unauthenticated".
func (s *GuardService) degrade(ctx context.Context, endpoint string, err error) {
	middleware.RecordResolverFailure(endpoint)
	logger.FromContext(ctx).Warn().
		Err(fmt.Errorf("resolve %s: %w", endpoint, err)).
		Msg("Auth backend call degraded to unauthenticated")
}

// decide evaluates the redirect decision table in order.
func (s *GuardService) decide(cl Classification, identity *domain.Identity) Decision {
	now := s.now()

	if cl.AuthPage && identity.Active(now) {
		return Decision{
			RedirectTo: "/dashboard",
			Status:     http.StatusFound,
			Reason:     ErrAlreadyAuthenticated,
			Identity:   identity,
		}
	}

	if cl.Class != RouteProtected {
		return Decision{Allow: true, Identity: identity}
	}

	if identity == nil || identity.Session.Expired(now) {
		return Decision{
			RedirectTo: "/login",
			Status:     http.StatusFound,
			Reason:     ErrNoSession,
		}
	}

	if identity.Profile != nil && !identity.Profile.IsActive {
		return Decision{
			RedirectTo: "/login?error=account_inactive",
			Status:     http.StatusFound,
			Reason:     ErrAccountInactive,
		}
	}

	rule := cl.Rule
	if len(rule.AllowedProfiles) > 0 && !contains(rule.AllowedProfiles, profileType(identity)) {
		return Decision{
			RedirectTo: dashboardFor(profileType(identity)),
			Status:     http.StatusFound,
			Reason:     ErrProfileForbidden,
		}
	}

	if len(rule.AllowedRoles) > 0 && !contains(rule.AllowedRoles, role(identity)) {
		return Decision{
			RedirectTo: "/dashboard",
			Status:     http.StatusForbidden,
			Reason:     ErrRoleForbidden,
		}
	}

	return Decision{Allow: true, Identity: identity}
}

func profileType(identity *domain.Identity) string {
	if identity == nil || identity.Profile == nil {
		return ""
	}
	return identity.Profile.ProfileType
}

func role(identity *domain.Identity) string {
	if identity == nil || identity.Profile == nil {
		return ""
	}
	return identity.Profile.Role
}

// dashboardFor maps a profile type to its own dashboard root. Unknown or
// missing profile types land on the default dashboard.
func dashboardFor(profileType string) string {
	if profileType == "" {
		return "/dashboard"
	}
	return "/dashboard/" + profileType
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func outcome(d Decision) string {
	switch {
	case d.Allow:
		return "pass"
	case d.Status == http.StatusForbidden:
		return "forbidden"
	case d.Reason == ErrNoSession:
		return "redirect_login"
	case d.Reason == ErrAccountInactive:
		return "redirect_inactive"
	case d.Reason == ErrProfileForbidden:
		return "redirect_profile"
	case d.Reason == ErrAlreadyAuthenticated:
		return "redirect_dashboard"
	default:
		return "redirect"
	}
}
