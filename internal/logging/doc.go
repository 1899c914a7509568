// Package logging provides slog helpers used throughout the application:
// shared attribute keys, nil-safe error attributes, and PII-safe
// representations of attendee emails and OAuth tokens.
package logging
