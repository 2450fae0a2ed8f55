// Package output renders csrfguard CLI results as a table, JSON or YAML.
package output
