// Package ai defines the shared, provider-agnostic types used by every
// enhancement provider (Gemini, Anthropic, OpenAI-compatible). Each provider
// package maps these types to its own wire format so the client never sees
// provider-specific details.
//
// The central interface is [Provider], which builds exactly one HTTP request
// from an [EnhanceRequest] and the current [Settings], and extracts the
// rewritten prompt from exactly one HTTP response. Failures are reported with
// the error taxonomy in errors.go; use [KindOf] to classify them.
package ai
