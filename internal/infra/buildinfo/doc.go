// Package buildinfo exposes the csrfguard version, commit and build time.
//
// Usage:
//
//	go build -ldflags "-X .../buildinfo.Version=1.0.0 -X .../buildinfo.Commit=abc123"
package buildinfo
