// Package v1 implements the route-guard business logic: classifying
// incoming paths, resolving an identity through the session cache, and
// deciding pass-through versus redirect.
//
// Error Handling:
// Deny decisions carry one of the sentinel errors below as their Reason so
// callers and logs can distinguish outcomes with errors.Is. None of them
// ever fails a request — every one maps to a redirect.
package v1

import "errors"

// Sentinel reasons for deny decisions.
var (
	// ErrNoSession indicates no authenticated identity could be
	// established for a protected route. Redirects to /login.
	ErrNoSession = errors.New("no session")

	// ErrAccountInactive indicates the session resolved but the account is
	// deactivated. Redirects to /login with an error indicator.
	ErrAccountInactive = errors.New("account inactive")

	// ErrProfileForbidden indicates the account's profile type is not in
	// the route's allow-list. Redirects to the profile's own dashboard.
	ErrProfileForbidden = errors.New("profile type not allowed")

	// ErrRoleForbidden indicates the account's role is not in the route's
	// allow-list. Redirects to the default dashboard with a 403.
	ErrRoleForbidden = errors.New("role not allowed")

	// ErrAlreadyAuthenticated indicates an active session requested an
	// auth page (login/register). Redirects to the dashboard.
	ErrAlreadyAuthenticated = errors.New("already authenticated")
)
