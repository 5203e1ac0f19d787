// Package gemini implements the llm.Provider contract against the
// Google Gemini generateContent API.
package gemini
