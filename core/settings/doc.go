// Package settings persists the single, process-wide provider configuration.
//
// The record is flat: provider, key, model and baseUrl, stored under one
// namespace. Load returns defaults (provider gemini, everything else empty)
// when nothing has been saved; Save overwrites the record synchronously.
//
// FileStore keeps the record in a TOML file through koanf and overlays
// PROMPTCRAFT_AI_* environment variables on load. MemoryStore keeps it in
// memory for tests and embedding.
package settings
