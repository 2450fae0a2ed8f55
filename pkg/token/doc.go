// Package token provides CSRF token generation and comparison utilities.
//
// Token format:
//
//   - Body: Base64 RawURL encoded random bytes from crypto/rand
//   - Default: 32 bytes (43 characters)
//   - Minimum: 16 bytes (128 bits of entropy)
//
// Security:
//
//   - Uses crypto/rand for CSPRNG
//   - Comparison runs in constant time for equal-length inputs
package token
