// Package agent provides the persona registry: creation, lookup, and
// listing of the immutable agent definitions that author conversation
// messages.
package agent
