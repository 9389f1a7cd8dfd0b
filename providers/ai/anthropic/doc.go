// Package anthropic implements [ai.Provider] for Anthropic's Messages API.
//
// The credential travels in the x-api-key header (Anthropic does not use
// Bearer tokens) and the wire format is pinned by the anthropic-version
// header. The instruction is sent as the top-level system prompt and the draft
// as the single user message; the reply text is the concatenation of every
// text-typed content block.
package anthropic
