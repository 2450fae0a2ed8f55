// Package domain defines the core domain values for csrfguard.
//
// Domain values are pure constants and helpers without any IO
// dependencies or framework coupling. This package contains:
//
//   - CSRF naming conventions: parameter name, header name and the
//     CGI environment variable that carries the header
//   - Session identifiers used to scope stored tokens
//   - Errors: coded domain errors for configuration and wiring faults
package domain
