package engine

import "time"

// TimeSpec is the external calendar-time helper the spec treats as an
// out-of-scope collaborator: something that knows how to turn a textual
// time-of-day/calendar pattern into concrete occurrences. Timer conditions
// only ever call Next; how a given pattern's occurrences are computed
// (weekday masks, sunrise/sunset offsets, month filters) is left to
// whatever TimeSpec implementation a deployment wires in.
type TimeSpec interface {
	// Next returns the first instant strictly after from that this spec
	// matches.
	Next(from time.Time) time.Time
}
