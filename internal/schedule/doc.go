// Package schedule implements the availability and booking engine: candidate
// slot generation from the owner's working-hours policy, conflict resolution
// against externally reported busy periods, and the check-then-commit
// booking protocol.
//
// The external calendar is the only system of record. Because its event
// insert has no conditional-write support, two revalidated bookings racing
// across processes can still double-book in a narrow window; the in-process
// slot guard only narrows that window for attempts sharing one process.
package schedule
