// Package command defines the csrfguard CLI.
//
// The CLI drives a TokenGuard against a session scoped store so operators
// can issue, inspect and verify tokens without an application in front:
//
//	csrfguard session new
//	csrfguard --session sess-... token get
//	csrfguard --session sess-... token check <token>
//	csrfguard --session sess-... token check --from-env
//
// Commands share one runtime built in the App's Before hook from the
// loaded configuration; it is torn down in After.
package command
