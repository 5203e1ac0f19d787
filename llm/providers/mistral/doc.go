// Package mistral implements the llm.Provider contract for Mistral AI
// via the OpenAI-compatible chat completions endpoint.
package mistral
