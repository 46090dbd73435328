// Package object provides the bus-object shapes the spec treats as an
// external collaborator: typed values, a change-notifying Object, and an
// in-memory ObjectController suitable for both a small standalone
// deployment and the engine's own tests. A real deployment would replace
// Controller with one backed by an actual bus gateway; nothing above the
// engine.ObjectController interface would need to change.
package object

import (
	"fmt"
	"strconv"

	"github.com/linknx-go/ruled/engine"
)

// BoolValue is an engine.ObjectValue for switching (on/off) objects.
type BoolValue bool

func (v BoolValue) String() string {
	if v {
		return "on"
	}
	return "off"
}

func (v BoolValue) Compare(other engine.ObjectValue) int {
	o := other.(BoolValue)
	if v == o {
		return 0
	}
	if !v && o {
		return -1
	}
	return 1
}

// ParseBoolValue parses the textual switch literals accepted throughout the
// configuration surface: "on"/"true"/"yes"/"1" for true, and
// "off"/"false"/"no"/"0"/"" for false. Any other literal is an error.
func ParseBoolValue(s string) (BoolValue, error) {
	switch s {
	case "on", "true", "yes", "1":
		return BoolValue(true), nil
	case "off", "false", "no", "0", "":
		return BoolValue(false), nil
	default:
		return false, fmt.Errorf("object: bad bool literal: %q", s)
	}
}

// ByteValue is an engine.ObjectValue for 8-bit unsigned objects (dimmer
// levels).
type ByteValue uint8

func (v ByteValue) String() string {
	return strconv.Itoa(int(v))
}

func (v ByteValue) Compare(other engine.ObjectValue) int {
	o := other.(ByteValue)
	switch {
	case v < o:
		return -1
	case v > o:
		return 1
	default:
		return 0
	}
}

// ParseByteValue parses a decimal 0..255 literal.
func ParseByteValue(s string) (ByteValue, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("object: bad byte literal: %q", s)
	}
	if n < 0 || n > 255 {
		return 0, fmt.Errorf("object: byte literal out of range: %q", s)
	}
	return ByteValue(n), nil
}
