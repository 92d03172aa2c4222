package domain

import "time"

// Session is the backend-owned session record returned by the auth API.
// This layer never creates or mutates sessions; it only forwards them.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
	IPAddress string    `json:"ipAddress,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
}

// Expired reports whether the session has expired relative to now.
// A nil session is always expired.
func (s *Session) Expired(now time.Time) bool {
	return s == nil || !s.ExpiresAt.After(now)
}

// User is the backend-owned user record returned alongside the session.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	EmailVerified bool      `json:"emailVerified"`
	Image         string    `json:"image,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Profile carries the authorization attributes of a user account.
type Profile struct {
	ProfileType string `json:"profileType"`
	Role        string `json:"role"`
	IsActive    bool   `json:"isActive"`
}

// SessionUser pairs a session with its owning user, as returned by the
// session-validation endpoint. Both fields are always non-nil; an absent
// session is represented by a nil *SessionUser.
type SessionUser struct {
	Session *Session `json:"session"`
	User    *User    `json:"user"`
}

// Identity is the normalized resolution the gateway derives for one set of
// request credentials: the validated session, its user, and the account
// profile. A nil *Identity means the request is unauthenticated.
type Identity struct {
	Session *Session
	User    *User
	Profile *Profile
}

// Active reports whether the identity belongs to an active account with a
// session that has not expired.
func (i *Identity) Active(now time.Time) bool {
	if i == nil || i.Session.Expired(now) {
		return false
	}
	return i.Profile == nil || i.Profile.IsActive
}
