package domain

import "context"

// SessionResolver defines the contract for validating request credentials
// against the remote auth backend. Implementations live in
// internal/core/resolver (Core layer).
type SessionResolver interface {
	// Resolve validates the credentials against the session-validation
	// endpoint. Returns (nil, nil) when the backend reports no session;
	// a non-nil error indicates a transport or decoding failure, which
	// callers must treat as "no session" rather than failing the request.
	Resolve(ctx context.Context, creds Credentials) (*SessionUser, error)
}

// ProfileResolver defines the contract for fetching the account profile
// associated with the same credentials.
type ProfileResolver interface {
	// Profile fetches the account profile for the credentials.
	// Returns (nil, nil) when the backend has no profile for them; errors
	// carry the same degrade-to-absent contract as SessionResolver.Resolve.
	Profile(ctx context.Context, creds Credentials) (*Profile, error)
}
