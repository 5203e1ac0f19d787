// Package handlers contains the HTTP handlers for agents,
// conversations, visualization projections, and health endpoints,
// plus shared JSON response and error-mapping helpers.
package handlers
