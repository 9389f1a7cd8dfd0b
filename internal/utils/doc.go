// Package utils provides shared low-level helpers used throughout the
// promptcraft internals: JSON-over-HTTP request construction and response
// decoding for the provider packages, lenient JSON parsing for user supplied
// documents, and string truncation for logs and error previews.
//
// Key entry points: [NewJSONRequest] and [DecodeJSON] for the provider wire
// round-trip, [ParseJSONAs] for tolerant parsing, and [TruncateString].
package utils
