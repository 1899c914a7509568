// Package calendar provides the request-scoped Google Calendar handle used
// by the booking engine: free/busy queries and event inserts with
// provider-generated Meet conferencing.
package calendar
