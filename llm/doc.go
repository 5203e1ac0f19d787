// Package llm defines the model provider contract and the prompt
// assembly shared by every provider implementation.
//
// A Provider turns a TurnRequest into one in-character message and an
// AnalysisRequest into an observer report. Providers surface failures as
// *types.Error with provider and retryability attached; callers decide
// whether a retryable failure is worth retrying.
package llm
