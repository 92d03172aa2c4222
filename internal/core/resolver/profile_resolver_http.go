package resolver

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/auth-gateway/internal/core/domain"
	"github.com/duynhne/auth-gateway/middleware"
)

const profilePath = "/api/user/profile"

// HTTPProfileResolver implements domain.ProfileResolver against the auth
// backend's profile endpoint.
type HTTPProfileResolver struct {
	client *http.Client
	url    string
}

// NewProfileResolver creates an HTTPProfileResolver for the given backend
// base URL.
func NewProfileResolver(baseURL string, timeout time.Duration) *HTTPProfileResolver {
	return &HTTPProfileResolver{
		client: newClient(timeout),
		url:    joinURL(baseURL, profilePath),
	}
}

// Profile fetches the account profile for the credentials.
// Returns (nil, nil) when the backend has no profile for them or the body
// carries no profile type.
func (r *HTTPProfileResolver) Profile(ctx context.Context, creds domain.Credentials) (*domain.Profile, error) {
	ctx, span := middleware.StartSpan(ctx, "resolver.profile", trace.WithAttributes(
		attribute.String("layer", "resolver"),
	))
	defer span.End()

	var body domain.Profile
	ok, err := fetchJSON(ctx, r.client, r.url, creds, &body)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !ok || body.ProfileType == "" {
		span.SetAttributes(attribute.Bool("profile.found", false))
		return nil, nil
	}

	span.SetAttributes(
		attribute.Bool("profile.found", true),
		attribute.String("profile.type", body.ProfileType),
	)
	return &body, nil
}
