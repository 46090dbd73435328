// Package action implements the action catalog's concrete kinds. Every kind
// self-registers with the engine's action factory in its own init().
package action

import (
	"time"

	"github.com/linknx-go/ruled/duration"
	"github.com/linknx-go/ruled/engine"
)

// sleep waits for d, returning false early (without completing the wait) if
// stop closes first. This is the single cooperative suspension point every
// action with a delay or step interval goes through.
func sleep(d time.Duration, stop <-chan struct{}) bool {
	if d <= 0 {
		select {
		case <-stop:
			return false
		default:
			return true
		}
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-stop:
		return false
	}
}

// runDelay waits out an action's configured pre-delay before Run performs
// its effect.
func runDelay(delaySeconds int, stop <-chan struct{}) bool {
	return sleep(time.Duration(delaySeconds)*time.Second, stop)
}

// sleepSeconds is sleep with a whole-seconds duration, used by the step
// intervals of CycleOnOff.
func sleepSeconds(seconds int, stop <-chan struct{}) bool {
	return sleep(time.Duration(seconds)*time.Second, stop)
}

func parseDelay(node engine.Node) (int, error) {
	s, _ := node.Attr("delay")
	n, err := duration.Parse(s, false)
	if err != nil {
		return 0, engine.NewConfigError("action: bad delay: %v", err)
	}
	return n, nil
}
