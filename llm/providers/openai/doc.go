// Package openai implements the llm.Provider contract against the
// OpenAI Chat Completions API. It is also the base for providers that
// speak the same wire protocol on a different endpoint; see NewCompatible.
package openai
