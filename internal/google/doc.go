// Package google manages the calendar owner's OAuth credential: atomic
// file persistence, the refresh-with-margin lifecycle, and the initial
// authorization-code exchange. All calendar access goes through a token
// handed out by the Manager for the duration of a single request.
package google
