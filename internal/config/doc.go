// Package config defines the csrfguard configuration.
//
//   - config.go: Config struct definition
//   - default.go: default values
//   - verify.go: validation
//   - sanitize.go: masking secrets for display
//   - load.go: loading through internal/infra/confloader
//
// Sources, later wins: defaults, YAML file, CSRFGUARD_* environment
// variables, explicit overrides (command-line flags).
package config
