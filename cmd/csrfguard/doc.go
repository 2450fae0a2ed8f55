// Package main provides the entry point for csrfguard.
//
// csrfguard issues and verifies CSRF tokens bound to a session ID,
// backed by the in-memory engine or a Badger directory:
//
//	csrfguard session new --with-token --data-dir /var/lib/csrfguard
//	csrfguard --session sess-... --data-dir /var/lib/csrfguard token check <token>
//
// A rejected check exits with status 1.
package main
