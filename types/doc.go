// Package types provides core types used across the agentduel backend.
// This package has ZERO dependencies on other agentduel packages to avoid
// circular imports. All other packages should import types from here.
package types
