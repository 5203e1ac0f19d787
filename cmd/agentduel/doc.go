// Command agentduel runs the AI conflict simulation HTTP service.
//
// Layout:
//   - main.go: subcommands (serve, version, health), logger setup
//   - server.go: component wiring and lifecycle
//   - middleware.go: HTTP middleware chain
//
// Build metadata (Version, BuildTime, GitCommit) is injected via ldflags.
package main
