// Package config loads the scheduler's environment driven configuration:
// the scheduling policy, the working-hours table, the owner's identity and
// the Google OAuth client settings.
package config
