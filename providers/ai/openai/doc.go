// Package openai implements [ai.Provider] for the OpenAI chat completions API
// and every endpoint that speaks the same dialect (DeepSeek, Mistral, Ollama,
// OpenRouter, vLLM...).
//
// The base URL comes from [ai.Settings.BaseURL] and falls back to
// https://api.openai.com/v1; requests go to {baseURL}/chat/completions with a
// Bearer token. The rewritten prompt is choices[0].message.content.
package openai
