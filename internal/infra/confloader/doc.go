// Package confloader loads configuration with koanf.
//
// Priority (highest to lowest):
//
//  1. Explicit maps (command-line flags)
//  2. Environment variables (CSRFGUARD_ prefix)
//  3. YAML configuration file
//  4. Defaults already present in the target struct
package confloader
