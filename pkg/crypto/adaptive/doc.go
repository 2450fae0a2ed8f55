// Package adaptive seals short values with an AEAD chosen for the host.
//
// AES-256-GCM is used where the platform has hardware AES support,
// ChaCha20-Poly1305 elsewhere. Both take a 32-byte key and bind every
// sealed value to caller-supplied associated data, so a value sealed for
// one cookie name does not open under another.
//
// Usage:
//
//	c, err := adaptive.New(key)
//	sealed, err := c.SealString("token", []byte("_csrf"))
//	plain, err := c.OpenString(sealed, []byte("_csrf"))
package adaptive
