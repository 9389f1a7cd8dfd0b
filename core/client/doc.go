// Package client is the enhancement client: it reads the current provider
// settings, selects the registered [ai.Provider] for them, performs exactly
// one HTTP exchange and returns the rewritten prompt.
//
// The primary entry point is [New], which accepts a [SettingsSource] and a set
// of functional options ([WithProviders], [WithHTTPClient], [WithMiddleware]).
// The client never retries and never imposes its own deadline; callers cancel
// through the context they pass to [Client.Enhance].
package client
