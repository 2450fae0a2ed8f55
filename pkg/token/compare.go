package token

import "crypto/subtle"

// Equal reports whether two tokens are identical.
//
// Uses constant-time comparison to prevent timing attacks. Empty tokens
// never match, not even each other.
func Equal(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
