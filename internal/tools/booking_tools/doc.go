// Package booking_tools provides MCP tools for browsing availability and
// booking meetings against the owner's calendar.
//
// The tools mirror the HTTP API: scheduler_list_dates, scheduler_list_slots,
// scheduler_check_slot and scheduler_book. check is advisory only; book
// revalidates the slot before committing the event.
package booking_tools
