// Package providers holds the helpers shared by the concrete provider
// implementations: HTTP error mapping, the OpenAI-compatible wire types,
// and the common client configuration.
package providers
