// Package cmap provides a sharded concurrent map keyed by strings.
//
//   - Sharding: power-of-two shard count, murmur3-distributed keys
//   - Fine-grained Locking: per-shard RWMutex
//   - Conditional removal: RemoveIf for expiry sweeps
//
// Usage:
//
//	m := cmap.New[entry]()
//	m.Set("csrf/sess-1/_csrf", e)
//	val, ok := m.Get("csrf/sess-1/_csrf")
//
// All operations are safe for concurrent use.
package cmap
