// Package policy holds the time-window rules for message mutation.
// Everything here is a pure function of its inputs so the rules can be
// tested without a clock.
package policy

import "time"

const (
	// EditWindowMinutes is how long after creation a message may be edited.
	EditWindowMinutes = 5.0
	// DeleteWindowMinutes is how long after creation a message may be deleted.
	DeleteWindowMinutes = 1.0
)

// ElapsedMinutes returns the minutes between since and now as a float.
func ElapsedMinutes(since, now time.Time) float64 {
	return now.Sub(since).Minutes()
}

// WithinEditWindow reports whether a message created at createdAt may still
// be edited at now. The boundary itself is excluded: at exactly the window
// the edit is rejected.
func WithinEditWindow(createdAt, now time.Time) bool {
	return ElapsedMinutes(createdAt, now) < EditWindowMinutes
}

// WithinDeleteWindow reports whether a message created at createdAt may
// still be deleted at now. Boundary excluded, same as the edit window.
func WithinDeleteWindow(createdAt, now time.Time) bool {
	return ElapsedMinutes(createdAt, now) < DeleteWindowMinutes
}
