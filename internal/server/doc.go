// Package server exposes the booking engine over HTTP: the public booking
// API, the owner's OAuth setup pages, health endpoints for probes, and a
// dedicated Prometheus metrics server.
package server
