package condition

import (
	"fmt"
	"time"

	"github.com/linknx-go/ruled/engine"
)

// DailyTimeSpec is a minimal stand-in for the engine's external TimeSpec
// collaborator: a time-of-day that recurs every day. The original engine's
// calendar patterns (weekday masks, month filters, sunrise/sunset offsets)
// are out of scope; this implementation covers the common case well enough
// for a standalone deployment and for tests, without pretending to
// reproduce the full calendar grammar.
type DailyTimeSpec struct {
	hour, min, sec int
}

// ParseTimeSpec parses "HH:MM" or "HH:MM:SS" into a DailyTimeSpec.
func ParseTimeSpec(s string) (engine.TimeSpec, error) {
	var h, m, sec int
	n, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec)
	if err != nil || n < 2 {
		n2, err2 := fmt.Sscanf(s, "%d:%d", &h, &m)
		if err2 != nil || n2 != 2 {
			return nil, engine.NewConfigError("timer: bad time spec: %q", s)
		}
	}
	if h < 0 || h > 23 || m < 0 || m > 59 || sec < 0 || sec > 59 {
		return nil, engine.NewConfigError("timer: time spec out of range: %q", s)
	}
	return &DailyTimeSpec{hour: h, min: m, sec: sec}, nil
}

func (d *DailyTimeSpec) Next(from time.Time) time.Time {
	next := time.Date(from.Year(), from.Month(), from.Day(), d.hour, d.min, d.sec, 0, from.Location())
	if !next.After(from) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// String renders the time spec back in "HH:MM:SS" form, the inverse of
// ParseTimeSpec. Used by Timer.Serialize to round-trip <at>/<until>.
func (d *DailyTimeSpec) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", d.hour, d.min, d.sec)
}
