// Package config provides agentduel configuration loading with defaults,
// YAML files, and AGENTDUEL_* environment variable overrides.
package config
