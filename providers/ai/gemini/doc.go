// Package gemini implements [ai.Provider] for Google's Gemini generative
// language API.
//
// Requests go to the generateContent endpoint with the model name in the URL
// path and the API key as the "key" query parameter. The instruction and the
// draft prompt travel as a single text part; the rewritten prompt is read from
// candidates[0].content.parts[0].text.
//
// The primary entry point is [New]. Use [GeminiProvider.WithBaseURL] to point
// the provider at a proxy or a test server.
package gemini
