// Package logger provides structured logging for csrfguard.
//
// It wraps the standard library log/slog:
//
//   - logger.go: handler configuration, levels and the default logger
//   - context.go: context-aware logging with request IDs
//   - redact.go: sensitive data redaction
//
// Token values and cookie keys never reach the output: attributes whose
// key mentions a token, csrf value or secret are replaced, and session
// IDs are partially masked.
package logger
