// Package persistence snapshots the in-memory state to SQLite so a
// restart does not lose agents or conversation trees. Disabled by
// default; enabled through the store section of the configuration.
package persistence
