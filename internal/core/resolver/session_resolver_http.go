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

const sessionPath = "/api/auth/get-session"

// HTTPSessionResolver implements domain.SessionResolver against the auth
// backend's session-validation endpoint.
type HTTPSessionResolver struct {
	client *http.Client
	url    string
}

// NewSessionResolver creates an HTTPSessionResolver for the given backend
// base URL. The timeout applies per call; non-positive falls back to
// DefaultTimeout.
func NewSessionResolver(baseURL string, timeout time.Duration) *HTTPSessionResolver {
	return &HTTPSessionResolver{
		client: newClient(timeout),
		url:    joinURL(baseURL, sessionPath),
	}
}

// Resolve validates the credentials against the backend.
// Returns (nil, nil) when the backend reports no session, which includes a
// 200 body missing either the session or the user field.
func (r *HTTPSessionResolver) Resolve(ctx context.Context, creds domain.Credentials) (*domain.SessionUser, error) {
	ctx, span := middleware.StartSpan(ctx, "resolver.session", trace.WithAttributes(
		attribute.String("layer", "resolver"),
	))
	defer span.End()

	var body domain.SessionUser
	ok, err := fetchJSON(ctx, r.client, r.url, creds, &body)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !ok || body.Session == nil || body.User == nil {
		span.SetAttributes(attribute.Bool("session.found", false))
		return nil, nil
	}

	span.SetAttributes(
		attribute.Bool("session.found", true),
		attribute.String("user.id", body.User.ID),
	)
	return &body, nil
}
