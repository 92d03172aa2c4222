// Package resolver implements the domain resolver contracts over the
// remote auth backend's HTTP API. Every failure mode — connection error,
// non-2xx status, malformed body — degrades to an absent resolution so the
// request path never blocks on, or crashes from, the backend.
package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/duynhne/auth-gateway/internal/core/domain"
)

// DefaultTimeout caps a single call to the auth backend. The gateway must
// fail open to "unauthenticated" rather than hang on a slow backend.
const DefaultTimeout = 5 * time.Second

// maxBodySize bounds how much of a response body is read when decoding.
const maxBodySize = 1 << 20

func newClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// fetchJSON performs one GET against the backend, forwarding the request
// credentials, and decodes a 2xx JSON body into out.
//
// Return values follow the repository convention: (false, nil) means the
// backend answered but had nothing for these credentials (non-2xx), and a
// non-nil error means transport or decoding failed. Callers treat both as
// an absent resolution.
func fetchJSON(ctx context.Context, client *http.Client, url string, creds domain.Credentials, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("build request %s: %w", url, err)
	}
	if creds.Cookie != "" {
		req.Header.Set("Cookie", creds.Cookie)
	}
	if creds.Authorization != "" {
		req.Header.Set("Authorization", creds.Authorization)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return false, fmt.Errorf("call %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return false, nil
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(out); err != nil {
		return false, fmt.Errorf("decode %s response: %w", url, err)
	}
	return true, nil
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + path
}
