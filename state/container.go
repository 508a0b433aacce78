// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package state

import (
	"time"

	"github.com/juju/clock"
	"github.com/juju/collections/set"
	"github.com/juju/errors"
	"gopkg.in/yaml.v3"

	"github.com/canonical/scenario/core/sequencer"
	"github.com/canonical/scenario/hooks"
)

// ServiceStartup says whether a Pebble service starts automatically.
type ServiceStartup string

const (
	StartupEnabled  ServiceStartup = "enabled"
	StartupDisabled ServiceStartup = "disabled"
)

// ServiceStatus is the current state of a Pebble service.
type ServiceStatus string

const (
	ServiceActive   ServiceStatus = "active"
	ServiceInactive ServiceStatus = "inactive"
	ServiceError    ServiceStatus = "error"
)

// Service is one service entry in a Pebble layer.
type Service struct {
	Override    string            `yaml:"override,omitempty"`
	Summary     string            `yaml:"summary,omitempty"`
	Description string            `yaml:"description,omitempty"`
	Command     string            `yaml:"command,omitempty"`
	Startup     string            `yaml:"startup,omitempty"`
	After       []string          `yaml:"after,omitempty"`
	Before      []string          `yaml:"before,omitempty"`
	Requires    []string          `yaml:"requires,omitempty"`
	Environment map[string]string `yaml:"environment,omitempty"`
}

// Layer is a named Pebble configuration layer.
type Layer struct {
	Summary     string             `yaml:"summary,omitempty"`
	Description string             `yaml:"description,omitempty"`
	Services    map[string]Service `yaml:"services,omitempty"`
}

// Plan is a rendered Pebble plan: the effective configuration after
// layering.
type Plan struct {
	Services map[string]Service `yaml:"services,omitempty"`
}

// YAML renders the plan the way pebble serializes it.
func (p Plan) YAML() (string, error) {
	out, err := yaml.Marshal(p)
	if err != nil {
		return "", errors.Annotate(err, "marshalling plan")
	}
	return string(out), nil
}

// ServiceInfo is the running state of one planned service.
type ServiceInfo struct {
	Name    string
	Startup ServiceStartup
	Current ServiceStatus
}

// Mount maps a location inside the container to content supplied by
// the test.
type Mount struct {
	// Location is the mount point inside the container.
	Location string

	// Source is the local path providing the mounted content.
	Source string
}

// ExecOutput is the mocked outcome of one command executed in a
// container.
type ExecOutput struct {
	// ReturnCode is the process exit code, 0 for success.
	ReturnCode int

	// Stdout and Stderr are the captured process streams.
	Stdout string
	Stderr string

	// ChangeID identifies the Pebble change tracking the execution.
	ChangeID int
}

// ExecOutputArgs is the argument struct for NewExecOutput.
type ExecOutputArgs struct {
	ReturnCode int
	Stdout     string
	Stderr     string
	ChangeID   int
}

// NewExecOutput returns an ExecOutput with a change ID assigned if
// none was given.
func NewExecOutput(args ExecOutputArgs) ExecOutput {
	if args.ChangeID == 0 {
		args.ChangeID = sequencer.NextChangeID()
	}
	return ExecOutput{
		ReturnCode: args.ReturnCode,
		Stdout:     args.Stdout,
		Stderr:     args.Stderr,
		ChangeID:   args.ChangeID,
	}
}

// NoticeType is the kind of a Pebble notice.
type NoticeType string

const (
	NoticeCustom       NoticeType = "custom"
	NoticeChangeUpdate NoticeType = "change-update"
	NoticeWarning      NoticeType = "warning"
)

// Notice is a Pebble notice recorded against a container. Notices
// are identified by (type, key) within one container.
type Notice struct {
	// Key differentiates notices of the same type, in domain/path
	// form, e.g. "example.com/mycharm/retrain".
	Key string

	// ID is the notice's unique ID.
	ID string

	// UserID is the UID allowed to view the notice. Nil means
	// public.
	UserID *int

	// Type is the notice kind.
	Type NoticeType

	// FirstOccurred, LastOccurred and LastRepeated mark the notice's
	// occurrence history.
	FirstOccurred time.Time
	LastOccurred  time.Time
	LastRepeated  time.Time

	// Occurrences counts how many times the notice has occurred.
	Occurrences int

	// LastData is the data captured from the latest occurrence.
	LastData map[string]string

	// RepeatAfter is the minimum interval before Pebble repeats the
	// notice. ExpireAfter is how long until Pebble drops it.
	RepeatAfter time.Duration
	ExpireAfter time.Duration
}

// NoticeArgs is the argument struct for NewNotice. Key is required.
type NoticeArgs struct {
	Key           string
	ID            string
	UserID        *int
	Type          NoticeType
	FirstOccurred time.Time
	LastOccurred  time.Time
	LastRepeated  time.Time
	Occurrences   int
	LastData      map[string]string
	RepeatAfter   time.Duration
	ExpireAfter   time.Duration
}

// NewNotice returns a custom notice with a fresh ID and the current
// time filled into any unset timestamps.
func NewNotice(args NoticeArgs) *Notice {
	if args.ID == "" {
		args.ID = sequencer.NextNoticeID()
	}
	if args.Type == "" {
		args.Type = NoticeCustom
	}
	now := clock.WallClock.Now().UTC()
	if args.FirstOccurred.IsZero() {
		args.FirstOccurred = now
	}
	if args.LastOccurred.IsZero() {
		args.LastOccurred = now
	}
	if args.LastRepeated.IsZero() {
		args.LastRepeated = now
	}
	if args.Occurrences == 0 {
		args.Occurrences = 1
	}
	if args.LastData == nil {
		args.LastData = map[string]string{}
	}
	return &Notice{
		Key:           args.Key,
		ID:            args.ID,
		UserID:        args.UserID,
		Type:          args.Type,
		FirstOccurred: args.FirstOccurred,
		LastOccurred:  args.LastOccurred,
		LastRepeated:  args.LastRepeated,
		Occurrences:   args.Occurrences,
		LastData:      args.LastData,
		RepeatAfter:   args.RepeatAfter,
		ExpireAfter:   args.ExpireAfter,
	}
}

// CheckLevel ties a Pebble check to a service lifecycle concern.
type CheckLevel string

const (
	CheckLevelNone  CheckLevel = ""
	CheckLevelAlive CheckLevel = "alive"
	CheckLevelReady CheckLevel = "ready"
)

// CheckStatus is the current state of a Pebble check.
type CheckStatus string

const (
	CheckUp   CheckStatus = "up"
	CheckDown CheckStatus = "down"
)

// CheckInfo is the runtime state of one Pebble check in a container.
type CheckInfo struct {
	// Name identifies the check in the plan.
	Name string

	// Level is the check's level, if any.
	Level CheckLevel

	// Status says whether the check is currently passing.
	Status CheckStatus

	// Failures counts consecutive failures; at Threshold the check
	// goes down and stays down until it passes again.
	Failures  int
	Threshold int
}

// CheckInfoArgs is the argument struct for NewCheckInfo. Name is
// required.
type CheckInfoArgs struct {
	Name      string
	Level     CheckLevel
	Status    CheckStatus
	Failures  int
	Threshold int
}

// NewCheckInfo returns a check with pebble's defaults: passing, with
// the standard threshold of 3.
func NewCheckInfo(args CheckInfoArgs) *CheckInfo {
	if args.Status == "" {
		args.Status = CheckUp
	}
	if args.Threshold == 0 {
		args.Threshold = 3
	}
	return &CheckInfo{
		Name:      args.Name,
		Level:     args.Level,
		Status:    args.Status,
		Failures:  args.Failures,
		Threshold: args.Threshold,
	}
}

// Container is a sidecar container a charm's workload runs in.
type Container struct {
	// Name is the container name from the charm metadata.
	Name string

	// CanConnect gates Pebble interaction: while false, all Pebble
	// operations against this container fail.
	CanConnect bool

	// BasePlan is the plan Pebble starts from, before any layers.
	// Layers cannot be recovered from a live system, only the
	// computed plan can, so the two are modelled separately.
	BasePlan Plan

	// Layers holds the configuration layers added on top of the base
	// plan, keyed by label. Rendering merges them in sorted label
	// order, later labels winning per service.
	Layers map[string]Layer

	// ServiceStatuses is the current status of each Pebble service.
	// Services absent from the map are inactive.
	ServiceStatuses map[string]ServiceStatus

	// Mounts exposes test-provided content inside the container,
	// keyed by mount name.
	Mounts map[string]Mount

	// ExecMocks maps a command line, joined with single spaces, to
	// the mocked outcome of executing it.
	ExecMocks map[string]ExecOutput

	// Notices are the Pebble notices recorded in this container.
	Notices []*Notice

	// Checks are the Pebble checks configured in this container.
	Checks []*CheckInfo
}

// ContainerArgs is the argument struct for NewContainer. Name is
// required.
type ContainerArgs struct {
	Name            string
	CanConnect      bool
	BasePlan        Plan
	Layers          map[string]Layer
	ServiceStatuses map[string]ServiceStatus
	Mounts          map[string]Mount
	ExecMocks       map[string]ExecOutput
	Notices         []*Notice
	Checks          []*CheckInfo
}

// NewContainer returns a container that cannot connect yet and has
// nothing planned.
func NewContainer(args ContainerArgs) *Container {
	if args.Layers == nil {
		args.Layers = map[string]Layer{}
	}
	if args.ServiceStatuses == nil {
		args.ServiceStatuses = map[string]ServiceStatus{}
	}
	if args.Mounts == nil {
		args.Mounts = map[string]Mount{}
	}
	if args.ExecMocks == nil {
		args.ExecMocks = map[string]ExecOutput{}
	}
	return &Container{
		Name:            args.Name,
		CanConnect:      args.CanConnect,
		BasePlan:        args.BasePlan,
		Layers:          args.Layers,
		ServiceStatuses: args.ServiceStatuses,
		Mounts:          args.Mounts,
		ExecMocks:       args.ExecMocks,
		Notices:         args.Notices,
		Checks:          args.Checks,
	}
}

// renderServices flattens the layers into one service map, merging
// in sorted label order so that later labels win.
func (c *Container) renderServices() map[string]Service {
	services := make(map[string]Service)
	for _, label := range set.NewStrings(labels(c.Layers)...).SortedValues() {
		for name, service := range c.Layers[label].Services {
			services[name] = service
		}
	}
	return services
}

func labels(layers map[string]Layer) []string {
	out := make([]string, 0, len(layers))
	for label := range layers {
		out = append(out, label)
	}
	return out
}

// RenderedPlan is the computed Pebble plan: the base plan plus the
// layers added on top. Assertions belong on this, not on the layers,
// which are input data.
func (c *Container) RenderedPlan() Plan {
	plan := Plan{Services: map[string]Service{}}
	for name, service := range c.BasePlan.Services {
		plan.Services[name] = service
	}
	for name, service := range c.renderServices() {
		plan.Services[name] = service
	}
	return plan
}

// ServiceInfos reports the running state of every service in the
// rendered layers, in name order.
func (c *Container) ServiceInfos() []ServiceInfo {
	services := c.renderServices()
	names := make([]string, 0, len(services))
	for name := range services {
		names = append(names, name)
	}
	infos := make([]ServiceInfo, 0, len(services))
	for _, name := range set.NewStrings(names...).SortedValues() {
		service := services[name]
		startup := StartupDisabled
		if service.Startup != "" {
			startup = ServiceStartup(service.Startup)
		}
		current, ok := c.ServiceStatuses[name]
		if !ok {
			current = ServiceInactive
		}
		infos = append(infos, ServiceInfo{
			Name:    name,
			Startup: startup,
			Current: current,
		})
	}
	return infos
}

// Notice returns the notice with the given key and type.
func (c *Container) Notice(key string, noticeType NoticeType) (*Notice, error) {
	for _, notice := range c.Notices {
		if notice.Key == key && notice.Type == noticeType {
			return notice, nil
		}
	}
	return nil, errors.NotFoundf("notice %q of type %q in container %q", key, noticeType, c.Name)
}

// Check returns the check with the given name.
func (c *Container) Check(name string) (*CheckInfo, error) {
	for _, check := range c.Checks {
		if check.Name == name {
			return check, nil
		}
	}
	return nil, errors.NotFoundf("check %q in container %q", name, c.Name)
}

// PebbleReadyEvent returns the pebble-ready event for this container.
func (c *Container) PebbleReadyEvent() *Event {
	return NewEvent(hooks.NormalizeName(c.Name)+hooks.PebbleReadySuffix, WithContainer(c))
}

// CustomNoticeEvent returns the pebble-custom-notice event for the
// given notice in this container.
func (c *Container) CustomNoticeEvent(notice *Notice) *Event {
	return NewEvent(hooks.NormalizeName(c.Name)+hooks.PebbleCustomNoticeSuffix,
		WithContainer(c), WithNotice(notice))
}

// CheckFailedEvent returns the pebble-check-failed event for the
// given check in this container.
func (c *Container) CheckFailedEvent(check *CheckInfo) *Event {
	return NewEvent(hooks.NormalizeName(c.Name)+hooks.PebbleCheckFailedSuffix,
		WithContainer(c), WithCheck(check))
}

// CheckRecoveredEvent returns the pebble-check-recovered event for
// the given check in this container.
func (c *Container) CheckRecoveredEvent(check *CheckInfo) *Event {
	return NewEvent(hooks.NormalizeName(c.Name)+hooks.PebbleCheckRecoveredSuffix,
		WithContainer(c), WithCheck(check))
}
