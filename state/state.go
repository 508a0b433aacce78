// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package state models the juju-owned portion of a unit's world: the
// data a charm can observe through hook tools and Pebble during one
// event dispatch. A State is assembled by the test author, handed to
// a run together with an Event, and never mutated by it; the run
// produces a new State instead.
//
// Entities carrying juju-assigned identifiers (relations, storage,
// actions, notices) draw them from the sequencer the way juju hands
// them out model-wide, so freshly constructed entities never collide.
package state

import (
	"github.com/juju/errors"
	"github.com/mohae/deepcopy"

	"github.com/canonical/scenario/core/status"
	"github.com/canonical/scenario/hooks"
)

// State is the aggregate root: everything juju would let this unit
// observe at the moment an event is dispatched. status-get reads
// UnitStatus, is-leader reads Leader, and so on.
type State struct {
	// Config is the charm configuration as config-get reports it.
	// Values are strings, ints, floats or bools, matching the
	// declared option types.
	Config map[string]interface{}

	// Relations lists every relation the charm currently has, of
	// any kind.
	Relations []RelationView

	// Networks overrides the network attached to a binding. Any
	// binding not listed here is defaulted when asked for.
	Networks map[string]Network

	// Containers lists the sidecar containers the charm knows,
	// whether they can connect or not.
	Containers []*Container

	// Storages lists the attached storage instances. Detached
	// storage is simply absent.
	Storages []*Storage

	// OpenedPorts lists the ports juju has opened for this charm.
	OpenedPorts []Port

	// Leader says whether this unit holds application leadership.
	Leader bool

	// Model describes the model the charm is deployed in.
	Model Model

	// Secrets lists the secrets this charm can read, as owner or
	// grantee.
	Secrets []*Secret

	// Resources maps resource names to the local path serving them.
	Resources map[string]string

	// PlannedUnits is the number of non-dying units planned for the
	// application.
	PlannedUnits int

	// Deferred lists the events a previous run deferred; they run
	// again before the next incoming event.
	Deferred []*DeferredEvent

	// StoredStates lists the framework-managed stored state blobs.
	StoredStates []*StoredState

	// AppStatus and UnitStatus are the current statuses.
	AppStatus  status.StatusInfo
	UnitStatus status.StatusInfo

	// WorkloadVersion is the version string the charm last set.
	WorkloadVersion string
}

// StateArgs is the argument struct for NewState. The zero value is a
// valid minimal state.
type StateArgs struct {
	Config          map[string]interface{}
	Relations       []RelationView
	Networks        map[string]Network
	Containers      []*Container
	Storages        []*Storage
	OpenedPorts     []Port
	Leader          bool
	Model           Model
	Secrets         []*Secret
	Resources       map[string]string
	PlannedUnits    int
	Deferred        []*DeferredEvent
	StoredStates    []*StoredState
	AppStatus       status.StatusInfo
	UnitStatus      status.StatusInfo
	WorkloadVersion string
}

// NewState returns a State with juju's defaults filled in: unknown
// statuses, one planned unit, and a fresh default model unless one
// was supplied.
func NewState(args StateArgs) *State {
	if args.Config == nil {
		args.Config = map[string]interface{}{}
	}
	if args.Networks == nil {
		args.Networks = map[string]Network{}
	}
	if args.Resources == nil {
		args.Resources = map[string]string{}
	}
	if args.PlannedUnits == 0 {
		args.PlannedUnits = 1
	}
	if args.Model.Name == "" && args.Model.UUID == "" {
		args.Model = NewModel(ModelArgs{})
	}
	if args.AppStatus.Status == "" {
		args.AppStatus = status.UnknownStatus()
	}
	if args.UnitStatus.Status == "" {
		args.UnitStatus = status.UnknownStatus()
	}
	return &State{
		Config:          args.Config,
		Relations:       args.Relations,
		Networks:        args.Networks,
		Containers:      args.Containers,
		Storages:        args.Storages,
		OpenedPorts:     args.OpenedPorts,
		Leader:          args.Leader,
		Model:           args.Model,
		Secrets:         args.Secrets,
		Resources:       args.Resources,
		PlannedUnits:    args.PlannedUnits,
		Deferred:        args.Deferred,
		StoredStates:    args.StoredStates,
		AppStatus:       args.AppStatus,
		UnitStatus:      args.UnitStatus,
		WorkloadVersion: args.WorkloadVersion,
	}
}

// Copy returns a deep, independent copy of the state. Entities in
// the copy share nothing with the original.
func (s *State) Copy() *State {
	return deepcopy.Copy(s).(*State)
}

// Container returns the container with the given name.
func (s *State) Container(name string) (*Container, error) {
	for _, container := range s.Containers {
		if container.Name == name {
			return container, nil
		}
	}
	return nil, errors.NotFoundf("container %q in state", name)
}

// RelationsOn returns all relations on the given endpoint, of any
// kind. The endpoint name is normalized before comparison, so
// "foo-bar" and "foo_bar" address the same endpoint.
func (s *State) RelationsOn(endpoint string) []RelationView {
	normalized := hooks.NormalizeName(endpoint)
	var out []RelationView
	for _, relation := range s.Relations {
		if hooks.NormalizeName(relation.EndpointName()) == normalized {
			out = append(out, relation)
		}
	}
	return out
}

// StorageInstances returns all attached instances of the named
// storage.
func (s *State) StorageInstances(name string) []*Storage {
	var out []*Storage
	for _, storage := range s.Storages {
		if storage.Name == name {
			out = append(out, storage)
		}
	}
	return out
}

// Secret returns the secret with the given ID.
func (s *State) Secret(id string) (*Secret, error) {
	for _, secret := range s.Secrets {
		if secret.ID == id {
			return secret, nil
		}
	}
	return nil, errors.NotFoundf("secret %q in state", id)
}

// WithLeadership returns a copy of the state with leadership set as
// given.
func (s *State) WithLeadership(leader bool) *State {
	out := s.Copy()
	out.Leader = leader
	return out
}

// WithCanConnect returns a copy of the state with the named
// container's connectivity set as given.
func (s *State) WithCanConnect(containerName string, canConnect bool) *State {
	out := s.Copy()
	for _, container := range out.Containers {
		if container.Name == containerName {
			container.CanConnect = canConnect
		}
	}
	return out
}

// WithUnitStatus returns a copy of the state with the unit status
// set as given.
func (s *State) WithUnitStatus(info status.StatusInfo) *State {
	out := s.Copy()
	out.UnitStatus = info
	return out
}

// WithAppStatus returns a copy of the state with the application
// status set as given.
func (s *State) WithAppStatus(info status.StatusInfo) *State {
	out := s.Copy()
	out.AppStatus = info
	return out
}
