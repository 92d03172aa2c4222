package domain

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Credentials are the forwarded request headers the auth backend validates.
// The gateway never inspects their contents; it only forwards and hashes them.
type Credentials struct {
	Cookie        string
	Authorization string
}

// Empty reports whether the request carried no credentials at all.
// Empty credentials can never resolve to a session.
func (c Credentials) Empty() bool {
	return c.Cookie == "" && c.Authorization == ""
}

// Hash returns a stable cache key for the credentials. Distinct credentials
// must never collide onto one key, so a cryptographic hash is used rather
// than the raw header values (which would otherwise sit in cache memory).
func (c Credentials) Hash() string {
	sum := blake2b.Sum256([]byte(c.Cookie + "\x00" + c.Authorization))
	return hex.EncodeToString(sum[:])
}
