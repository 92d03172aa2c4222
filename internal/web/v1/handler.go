package v1

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/auth-gateway/internal/core/domain"
	"github.com/duynhne/auth-gateway/internal/logger"
	logicv1 "github.com/duynhne/auth-gateway/internal/logic/v1"
	"github.com/duynhne/auth-gateway/middleware"
)

// Context keys consumed by downstream rendering.
const (
	ContextUserKey    = "user"
	ContextSessionKey = "session"
)

// Identity headers forwarded to the render upstream. Inbound values are
// stripped so clients cannot spoof them.
const (
	HeaderUserID    = "X-User-Id"
	HeaderSessionID = "X-Session-Id"
)

// Handler wires the route guard into the request pipeline and proxies
// allowed requests to the render upstream.
// Dependencies are injected via the constructor — no global state.
type Handler struct {
	guard *logicv1.GuardService
	proxy *httputil.ReverseProxy
}

// NewHandler creates a Handler guarding the given upstream.
func NewHandler(guard *logicv1.GuardService, upstreamURL string) (*Handler, error) {
	upstream, err := url.Parse(upstreamURL)
	if err != nil {
		return nil, fmt.Errorf("parse upstream URL %q: %w", upstreamURL, err)
	}

	proxy := httputil.NewSingleHostReverseProxy(upstream)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.FromContext(r.Context()).Error().Err(err).Msg("Render upstream unreachable")
		w.WriteHeader(http.StatusBadGateway)
	}

	return &Handler{guard: guard, proxy: proxy}, nil
}

// Guard is the gin middleware implementing the redirect policy. Allowed
// requests continue with user and session attached to the context; denied
// ones are redirected and aborted.
func (h *Handler) Guard() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := middleware.StartSpan(c.Request.Context(), "http.guard", trace.WithAttributes(
			attribute.String("layer", "web"),
			attribute.String("method", c.Request.Method),
			attribute.String("path", c.Request.URL.Path),
		))
		defer span.End()

		creds := domain.Credentials{
			Cookie:        c.GetHeader("Cookie"),
			Authorization: c.GetHeader("Authorization"),
		}

		d := h.guard.Authorize(ctx, c.Request.URL.Path, creds)
		if !d.Allow {
			span.SetAttributes(attribute.String("guard.redirect", d.RedirectTo))

			switch {
			case errors.Is(d.Reason, logicv1.ErrRoleForbidden):
				logger.FromContext(ctx).Warn().
					Str("path", c.Request.URL.Path).
					Msg("Role denied")
			case errors.Is(d.Reason, logicv1.ErrProfileForbidden):
				logger.FromContext(ctx).Warn().
					Str("path", c.Request.URL.Path).
					Msg("Profile type denied")
			}

			// Redirect decisions depend on who is asking; never cacheable.
			c.Header("Cache-Control", "no-store")
			if d.Status == http.StatusForbidden {
				c.Header("Location", d.RedirectTo)
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			c.Redirect(d.Status, d.RedirectTo)
			c.Abort()
			return
		}

		if d.Identity != nil {
			c.Set(ContextUserKey, d.Identity.User)
			c.Set(ContextSessionKey, d.Identity.Session)
			c.Set("user_id", d.Identity.User.ID)
			span.SetAttributes(attribute.String("user.id", d.Identity.User.ID))
		}
		c.Next()
	}
}

// Render proxies the request to the page-rendering upstream, forwarding
// the resolved identity as headers.
func (h *Handler) Render(c *gin.Context) {
	c.Request.Header.Del(HeaderUserID)
	c.Request.Header.Del(HeaderSessionID)

	if u, ok := c.Get(ContextUserKey); ok {
		if user, ok := u.(*domain.User); ok && user != nil {
			c.Request.Header.Set(HeaderUserID, user.ID)
		}
	}
	if s, ok := c.Get(ContextSessionKey); ok {
		if session, ok := s.(*domain.Session); ok && session != nil {
			c.Request.Header.Set(HeaderSessionID, session.ID)
		}
	}

	h.proxy.ServeHTTP(c.Writer, c.Request)
}
