package engine

import (
	"log"

	"github.com/linknx-go/ruled/util/semaphore"
)

// Logf is the logging signature used throughout the engine: a closure
// handed down from whatever owns the process, rather than a package-level
// logger. Rules, conditions, and actions never import a logging library
// directly; they call the Logf they were configured with.
type Logf func(format string, v ...interface{})

// StdLogf adapts the standard library logger to the Logf signature, for use
// by callers (tests, small standalone programs) that don't wire up their
// own structured logging.
func StdLogf(l *log.Logger) Logf {
	return func(format string, v ...interface{}) {
		l.Printf(format, v...)
	}
}

// ConditionContext bundles the collaborators a Condition needs at configure
// time: the object registry it resolves object ids through, the scheduler
// it registers timer-driven conditions with, and a logger. It is built once
// by the process glue (lib), handed to the RuleServer, and threaded down
// through Rule.Configure.
type ConditionContext struct {
	Objects   ObjectController
	Scheduler Scheduler
	Script    ScriptEvaluator
	Logf      Logf
}

// ActionContext bundles the collaborators an Action needs at configure and
// run time: the object registry, the outward-facing gateways, a logger, and
// the named-semaphore registry rules contend on via their meta params.
type ActionContext struct {
	Objects    ObjectController
	Gateways   Gateways
	Logf       Logf
	Semaphores *semaphore.Registry
}
