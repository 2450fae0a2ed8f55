// Package service provides the CSRF token guard.
//
// The guard contains the token lifecycle logic and defines interfaces for
// its collaborators, allowing storage and randomness to be injected:
//
//   - TokenStore: key-value storage of the current token (session or cookie)
//   - RandomSource: cryptographically secure token generator
//   - ValidationHook: observer invoked after every check
//
// A TokenGuard serves one request or session at a time and holds no locks;
// concurrent guards sharing a store rely on the store's own consistency.
package service
