// Package cookie stores CSRF tokens in sealed HttpOnly cookies.
//
// A Store wraps one request/response pair. Values are sealed with
// pkg/crypto/adaptive using the cookie name as associated data, so a
// client can neither read the token from the cookie nor move it to
// another name. Cookies that fail to open read as absent.
package cookie
