// Package memory provides an in-process storage.KVEngine.
//
// Entries live in a sharded concurrent map (pkg/cmap). Expired entries
// are dropped lazily on read and in bulk by Sweep.
package memory
