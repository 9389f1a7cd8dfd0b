// Package prompt holds the per-tool prompt records and the operations that
// edit them.
//
// Every tool has exactly one Shape, chosen by its family:
//
//   - VideoShape for sora and veo
//   - ConversationalShape for grok
//   - ImageShape for midjourney
//   - DiffusionShape for comfy (with Nodes) and a1111 (with Params)
//
// State is an immutable value: every operation returns a new State and never
// modifies the receiver or any slice it shares. Store wraps a State for
// callers that need a single, concurrently accessed current value.
package prompt
