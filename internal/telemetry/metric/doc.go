// Package metric exposes csrfguard counters in Prometheus format.
//
// Metrics:
//
//   - csrfguard_tokens_generated_total: tokens written to a store
//   - csrfguard_tokens_removed_total: tokens removed from a store
//   - csrfguard_checks_total{result,source}: completed checks
//
// Registry.ValidationHook feeds the check counter from a TokenGuard;
// Registry.InstrumentStore wraps a TokenStore to count writes and removals.
package metric
