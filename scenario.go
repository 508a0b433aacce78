// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package scenario is a state-transition test harness for charms. A
// test declares the juju state a charm finds when it wakes up, the
// event that wakes it, and a Runner that plays the charm's part; the
// harness checks the declared scenario for internal consistency,
// binds the event to the state, executes the runner and hands back
// the output state together with everything the charm did along the
// way (logging, status changes, emitted events, action results).
package scenario

import (
	"context"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/canonical/scenario/core/status"
	"github.com/canonical/scenario/state"
)

const (
	// ErrInvalidEvent is reported when an event is handed to the
	// wrong entry point, such as an action event given to Run.
	ErrInvalidEvent = errors.ConstError("invalid event")

	// ErrActionFailed is reported by RunAction when the charm failed
	// the action and the context was configured to treat that as an
	// error rather than as a result.
	ErrActionFailed = errors.ConstError("action failed")
)

// Runner executes a single charm event against an input state. The
// event arrives bound: its entity references name the entities of the
// scenario being run. The state st is the run's private copy, so
// implementations mutate it freely and return it, or build a fresh
// state; a nil output state means the charm left the state untouched.
// Effects carries everything the charm did that is not part of the
// state itself.
type Runner interface {
	Run(ctx context.Context, ev *state.Event, st *state.State) (*state.State, *Effects, error)
}

// RunnerFunc adapts a plain function to the Runner interface.
type RunnerFunc func(ctx context.Context, ev *state.Event, st *state.State) (*state.State, *Effects, error)

// Run implements Runner.
func (f RunnerFunc) Run(ctx context.Context, ev *state.Event, st *state.State) (*state.State, *Effects, error) {
	return f(ctx, ev, st)
}

// JujuLogLine is a single juju-log call made by the charm.
type JujuLogLine struct {
	Level   loggo.Level
	Message string
}

// Effects collects the side effects of one charm execution that are
// not rightfully part of the output state. The context accumulates
// them across runs; action fields are reset after each RunAction.
type Effects struct {
	// JujuLog holds the charm's juju-log calls in order.
	JujuLog []JujuLogLine

	// AppStatusHistory and UnitStatusHistory hold the statuses the
	// charm set during the run, in order. The final status belongs
	// in the output state, not here.
	AppStatusHistory  []status.StatusInfo
	UnitStatusHistory []status.StatusInfo

	// WorkloadVersionHistory holds the workload versions the charm
	// set during the run.
	WorkloadVersionHistory []string

	// EmittedEvents holds the events the framework dispatched to
	// observers, in emission order.
	EmittedEvents []*state.Event

	// RequestedStorages maps storage names to how many additional
	// instances the charm asked juju for.
	RequestedStorages map[string]int

	// ActionLogs, ActionResults and ActionFailure record the
	// charm's action-log calls, its action-set results and the
	// action-fail message. Only meaningful for action events.
	ActionLogs    []string
	ActionResults map[string]interface{}
	ActionFailure string
}

// ActionOutput wraps the outcome of running an action event: the
// output state plus the action's logs, results and failure message.
type ActionOutput struct {
	State   *state.State
	Logs    []string
	Results map[string]interface{}
	Failure string
}

// Success reports whether the charm completed the action without
// failing it.
func (o ActionOutput) Success() bool {
	return o.Failure == ""
}
