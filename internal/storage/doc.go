// Package storage provides token storage backends for csrfguard.
//
// Tokens live in an embedded key-value engine and are scoped per session:
//
//   - KVEngine: minimal engine contract (get/set with TTL/delete/scan)
//   - BadgerEngine: durable engine on Badger v3
//   - memory.Engine: in-process engine (subpackage)
//   - SessionStore: binds an engine to one session and exposes the
//     get/add/remove/exists contract the token guard consumes
//
// Keys have the form csrf/<session>/<param>.
package storage
