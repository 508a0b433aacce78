// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package scenario

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/juju/names/v5"

	"github.com/canonical/scenario/charm"
	"github.com/canonical/scenario/consistency"
	"github.com/canonical/scenario/core/sequencer"
	"github.com/canonical/scenario/core/status"
	"github.com/canonical/scenario/internal/statedb"
	"github.com/canonical/scenario/state"
)

var logger = loggo.GetLogger("scenario.context")

// DefaultJujuVersion is the juju version a context simulates when the
// caller does not name one.
const DefaultJujuVersion = "3.4"

// ContextArgs is the argument struct for NewContext. Runner is
// required; everything else has a sensible default.
type ContextArgs struct {
	// Runner plays the charm's part when an event is run.
	Runner Runner

	// Spec is the charm's declared metadata, config and actions.
	Spec charm.Spec

	// AppName overrides the application name from the charm
	// metadata. At least one of the two must name the application.
	AppName string

	// UnitID is the unit number of the simulated unit. Defaults to
	// 0.
	UnitID int

	// JujuVersion is the simulated juju version. Defaults to
	// DefaultJujuVersion.
	JujuVersion string

	// CharmRoot, when set, is the directory holding the unit's
	// on-disk state. Run round-trips deferred events and stored
	// state through the unit-state database found there.
	CharmRoot string

	// Clock stamps status-history records. Defaults to the wall
	// clock.
	Clock clock.Clock

	// Sequencer allocates entity IDs for events built from the
	// context's catalog. Defaults to the shared package sequencer.
	Sequencer *sequencer.Sequencer

	// FailOnActionFailure makes RunAction return an error satisfying
	// ErrActionFailed when the charm fails the action, instead of
	// reporting the failure only through ActionOutput.
	FailOnActionFailure bool
}

// Context drives charm executions. It validates scenarios, hands
// bound events to its Runner, and accumulates the side effects of
// every run so tests can assert on the charm's whole trajectory.
//
// A Context is not tied to a single state: the same context can run
// many events, each against its own input state.
type Context struct {
	runner              Runner
	spec                charm.Spec
	appName             string
	unitID              int
	jujuVersion         string
	charmRoot           string
	failOnActionFailure bool

	seq     *sequencer.Sequencer
	logCtx  *loggo.Context
	history *status.History
	catalog *Catalog

	mu                sync.Mutex
	jujuLog           []JujuLogLine
	workloadVersions  []string
	emitted           []*state.Event
	requestedStorages map[string]int
	actionLogs        []string
	actionResults     map[string]interface{}
	actionFailure     string
	outputState       *state.State
}

// NewContext returns a context running events through args.Runner.
func NewContext(args ContextArgs) (*Context, error) {
	if args.Runner == nil {
		return nil, errors.NotValidf("nil Runner")
	}
	appName := args.AppName
	if appName == "" && args.Spec.Meta != nil {
		appName = args.Spec.Meta.Name
	}
	if appName == "" {
		return nil, errors.NotValidf("missing application name: charm metadata has no name")
	}
	if !names.IsValidApplication(appName) {
		return nil, errors.NotValidf("application name %q", appName)
	}
	if args.UnitID < 0 {
		return nil, errors.NotValidf("negative unit ID %d", args.UnitID)
	}
	jujuVersion := args.JujuVersion
	if jujuVersion == "" {
		jujuVersion = DefaultJujuVersion
	}
	if strings.SplitN(jujuVersion, ".", 2)[0] == "2" {
		logger.Warningf("juju 2.x is closed and unsupported; you may encounter inconsistencies")
	}
	clk := args.Clock
	if clk == nil {
		clk = clock.WallClock
	}
	seq := args.Sequencer
	if seq == nil {
		seq = sequencer.Default()
	}
	c := &Context{
		runner:              args.Runner,
		spec:                args.Spec,
		appName:             appName,
		unitID:              args.UnitID,
		jujuVersion:         jujuVersion,
		charmRoot:           args.CharmRoot,
		failOnActionFailure: args.FailOnActionFailure,
		seq:                 seq,
		history:             status.NewHistory(clk),
		requestedStorages:   make(map[string]int),
	}
	c.catalog = newCatalog(args.Spec, seq)
	c.logCtx = loggo.NewContext(loggo.DEBUG)
	if err := c.logCtx.AddWriter("capture", &captureWriter{ctx: c}); err != nil {
		return nil, errors.Trace(err)
	}
	return c, nil
}

// UnitName returns the simulated unit's name, e.g. "myapp/0".
func (c *Context) UnitName() string {
	return fmt.Sprintf("%s/%d", c.appName, c.unitID)
}

// AppName returns the simulated application's name.
func (c *Context) AppName() string {
	return c.appName
}

// JujuVersion returns the simulated juju version.
func (c *Context) JujuVersion() string {
	return c.jujuVersion
}

// Logger returns the logger a runner should route the charm's
// juju-log calls through. Everything logged to it lands in JujuLog.
func (c *Context) Logger() loggo.Logger {
	return c.logCtx.GetLogger(fmt.Sprintf("unit.%s.juju-log", c.UnitName()))
}

// Events returns the catalog of events this charm can receive,
// derived from its metadata at construction time.
func (c *Context) Events() *Catalog {
	return c.catalog
}

// Sequencer returns the sequencer used for events built from the
// catalog. Tests reset it between scenarios for stable IDs.
func (c *Context) Sequencer() *sequencer.Sequencer {
	return c.seq
}

// Run executes a non-action event against the given state and
// returns the state the charm left behind. The input state is not
// mutated. Use RunAction for action events.
func (c *Context) Run(ctx context.Context, event *state.Event, st *state.State) (*state.State, error) {
	if event == nil {
		return nil, errors.NotValidf("nil event")
	}
	if event.Kind().IsAction() {
		return nil, fmt.Errorf("cannot run action event %q directly%w: use RunAction", event.Name(), errors.Hide(ErrInvalidEvent))
	}
	output, _, err := c.run(ctx, event, st)
	return output, errors.Trace(err)
}

// RunAction executes an action event against the given state. The
// returned ActionOutput carries the output state plus the action's
// logs, results and failure message; the context's action record is
// reset afterwards so the next action starts clean.
func (c *Context) RunAction(ctx context.Context, action *state.Action, st *state.State) (ActionOutput, error) {
	if action == nil {
		return ActionOutput{}, errors.NotValidf("nil action")
	}
	output, _, err := c.run(ctx, action.Event(), st)
	if err != nil {
		return ActionOutput{}, errors.Trace(err)
	}
	return c.finalizeAction(output)
}

func (c *Context) run(ctx context.Context, event *state.Event, st *state.State) (*state.State, *Effects, error) {
	if st == nil {
		return nil, nil, errors.NotValidf("nil state")
	}
	bound, err := event.Bind(st)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	if err := consistency.Check(st, bound, c.spec, c.jujuVersion); err != nil {
		return nil, nil, errors.Trace(err)
	}

	var db *statedb.DB
	if c.charmRoot != "" {
		db, err = statedb.Open(filepath.Join(c.charmRoot, statedb.Filename))
		if err != nil {
			return nil, nil, errors.Trace(err)
		}
		defer func() { _ = db.Close() }()
		if err := db.ApplyState(ctx, st); err != nil {
			return nil, nil, errors.Trace(err)
		}
	}

	logger.Debugf("running %s on %s", bound, c.UnitName())
	output, effects, err := c.runner.Run(ctx, bound, st.Copy())
	if err != nil {
		return nil, nil, errors.Annotatef(err, "running %s", bound)
	}
	if output == nil {
		output = st.Copy()
	}

	// The unit-state database is authoritative for deferred events
	// and stored state once a charm root is in play: whatever the
	// run left there replaces the runner's in-memory view.
	if db != nil {
		deferred, err := db.DeferredEvents(ctx)
		if err != nil {
			return nil, nil, errors.Trace(err)
		}
		stored, err := db.StoredStates(ctx)
		if err != nil {
			return nil, nil, errors.Trace(err)
		}
		output.Deferred = deferred
		output.StoredStates = stored
	}

	c.record(effects)
	c.mu.Lock()
	c.outputState = output
	c.mu.Unlock()
	return output, effects, nil
}

// record folds one run's effects into the context's accumulated
// record.
func (c *Context) record(effects *Effects) {
	if effects == nil {
		return
	}
	for _, si := range effects.AppStatusHistory {
		c.history.RecordStatus(c.appNamespace(), si)
	}
	for _, si := range effects.UnitStatusHistory {
		c.history.RecordStatus(c.unitNamespace(), si)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.jujuLog = append(c.jujuLog, effects.JujuLog...)
	c.workloadVersions = append(c.workloadVersions, effects.WorkloadVersionHistory...)
	c.emitted = append(c.emitted, effects.EmittedEvents...)
	for name, count := range effects.RequestedStorages {
		c.requestedStorages[name] += count
	}
	c.actionLogs = append(c.actionLogs, effects.ActionLogs...)
	if effects.ActionResults != nil {
		c.actionResults = effects.ActionResults
	}
	if effects.ActionFailure != "" {
		c.actionFailure = effects.ActionFailure
	}
}

// finalizeAction drains the action record into an ActionOutput.
func (c *Context) finalizeAction(output *state.State) (ActionOutput, error) {
	c.mu.Lock()
	result := ActionOutput{
		State:   output,
		Logs:    c.actionLogs,
		Results: c.actionResults,
		Failure: c.actionFailure,
	}
	c.actionLogs = nil
	c.actionResults = nil
	c.actionFailure = ""
	c.mu.Unlock()
	if c.failOnActionFailure && result.Failure != "" {
		return result, fmt.Errorf("%s%w", result.Failure, errors.Hide(ErrActionFailed))
	}
	return result, nil
}

// JujuLog returns every juju-log line recorded so far: lines logged
// through Logger plus lines reported by the runner.
func (c *Context) JujuLog() []JujuLogLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]JujuLogLine, len(c.jujuLog))
	copy(out, c.jujuLog)
	return out
}

// AppStatusHistory returns the application statuses the charm has set
// across all runs, oldest first.
func (c *Context) AppStatusHistory() []status.StatusInfo {
	return c.history.Namespace(c.appNamespace())
}

// UnitStatusHistory returns the unit statuses the charm has set
// across all runs, oldest first.
func (c *Context) UnitStatusHistory() []status.StatusInfo {
	return c.history.Namespace(c.unitNamespace())
}

// StatusHistory returns the underlying status history register, with
// timestamps.
func (c *Context) StatusHistory() *status.History {
	return c.history
}

// WorkloadVersionHistory returns the workload versions the charm has
// set across all runs, oldest first.
func (c *Context) WorkloadVersionHistory() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.workloadVersions))
	copy(out, c.workloadVersions)
	return out
}

// EmittedEvents returns the events the framework dispatched across
// all runs, in emission order.
func (c *Context) EmittedEvents() []*state.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*state.Event, len(c.emitted))
	copy(out, c.emitted)
	return out
}

// RequestedStorages returns how many additional storage instances the
// charm has asked juju for, by storage name.
func (c *Context) RequestedStorages() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int, len(c.requestedStorages))
	for name, count := range c.requestedStorages {
		out[name] = count
	}
	return out
}

// OutputState returns the state produced by the most recent run.
func (c *Context) OutputState() (*state.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.outputState == nil {
		return nil, fmt.Errorf("output state%w: no event has been run", errors.Hide(errors.NotYetAvailable))
	}
	return c.outputState, nil
}

func (c *Context) appNamespace() status.Namespace {
	return status.Namespace{Kind: "application", ID: c.appName}
}

func (c *Context) unitNamespace() status.Namespace {
	return status.Namespace{Kind: "unit", ID: c.UnitName()}
}

// captureWriter funnels everything logged through the context's log
// context into its juju-log record.
type captureWriter struct {
	ctx *Context
}

// Write implements loggo.Writer.
func (w *captureWriter) Write(entry loggo.Entry) {
	w.ctx.mu.Lock()
	defer w.ctx.mu.Unlock()
	w.ctx.jujuLog = append(w.ctx.jujuLog, JujuLogLine{
		Level:   entry.Level,
		Message: entry.Message,
	})
}
