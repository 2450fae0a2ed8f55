// Package audit logs rejected CSRF checks.
//
// Entries are written at warn level through the telemetry logger and
// throttled with a token bucket so a flood of forged requests cannot
// flood the log. Entries dropped by the limiter are counted and the count
// is attached to the next entry that gets through.
package audit
