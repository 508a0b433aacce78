// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package sequence generates the canonical event sequences juju fires
// over a unit's lifetime. Instead of hand-writing one test per event,
// a charm test can replay a whole startup or teardown sequence against
// a template state and assert that the charm survives every step.
package sequence

import (
	"github.com/juju/collections/transform"

	"github.com/canonical/scenario/hooks"
	"github.com/canonical/scenario/state"
)

// Step pairs an event with the state to fire it against. Every step
// owns an independent deep copy of the template state, so mutating
// one step's state never leaks into another.
type Step struct {
	Event *state.Event
	State *state.State
}

// Startup returns the sequence of events juju fires to bring a unit
// up, templated on the given state: storage-attached for each storage
// instance, start, relation-created for each relation, the leadership
// event matching the template's leader flag, config-changed and
// install.
func Startup(template *state.State) []Step {
	steps := storageSteps(template, true)
	steps = append(steps, Step{
		Event: state.NewEvent("start"),
		State: template.Copy(),
	})
	steps = append(steps, relationSteps(template, hooks.RelationCreatedSuffix)...)

	leadership := "leader_settings_changed"
	if template.Leader {
		leadership = "leader_elected"
	}
	for _, name := range []string{leadership, "config_changed", "install"} {
		steps = append(steps, Step{
			Event: state.NewEvent(name),
			State: template.Copy(),
		})
	}
	return steps
}

// Teardown returns the sequence of events juju fires to take a unit
// down: relation-broken for each relation, storage-detaching for each
// storage instance, stop and remove.
func Teardown(template *state.State) []Step {
	steps := relationSteps(template, hooks.RelationBrokenSuffix)
	steps = append(steps, storageSteps(template, false)...)
	for _, name := range []string{"stop", "remove"} {
		steps = append(steps, Step{
			Event: state.NewEvent(name),
			State: template.Copy(),
		})
	}
	return steps
}

// Builtin returns the startup sequence followed by the teardown
// sequence for each template in turn.
func Builtin(templates ...*state.State) []Step {
	var steps []Step
	for _, template := range templates {
		steps = append(steps, Startup(template)...)
		steps = append(steps, Teardown(template)...)
	}
	return steps
}

// relationSteps decomposes the template's relations into one event per
// relation, in template order. The events are attached to the template
// relation instances; each step still gets its own state copy, and the
// matching relation is recovered there by ID.
func relationSteps(template *state.State, suffix string) []Step {
	return transform.Slice(template.Relations, func(r state.RelationView) Step {
		return Step{
			Event: state.NewEvent(
				hooks.NormalizeName(r.EndpointName())+suffix,
				state.WithRelation(r),
			),
			State: template.Copy(),
		}
	})
}

func storageSteps(template *state.State, attached bool) []Step {
	return transform.Slice(template.Storages, func(s *state.Storage) Step {
		event := s.DetachingEvent()
		if attached {
			event = s.AttachedEvent()
		}
		return Step{Event: event, State: template.Copy()}
	})
}
