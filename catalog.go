// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package scenario

import (
	"sort"

	"github.com/juju/errors"

	"github.com/canonical/scenario/charm"
	"github.com/canonical/scenario/core/sequencer"
	"github.com/canonical/scenario/hooks"
	"github.com/canonical/scenario/state"
)

// EventFactory builds a ready-to-run event against a given state.
// Factories for entity-scoped events resolve their entity by binding,
// so an ambiguous or impossible scenario surfaces as an error when
// the event is built rather than when it is run.
type EventFactory func(st *state.State) (*state.Event, error)

// Catalog is the static table of events a charm can receive, derived
// once from its metadata. There is no runtime discovery: an event
// outside the catalog is one this charm would never be sent.
//
// Pebble notice and check events are not in the catalog because they
// cannot be built from a name alone; construct those through the
// container's event methods.
type Catalog struct {
	factories map[string]EventFactory
}

var relationEventSuffixes = []string{
	hooks.RelationCreatedSuffix,
	hooks.RelationJoinedSuffix,
	hooks.RelationChangedSuffix,
	hooks.RelationDepartedSuffix,
	hooks.RelationBrokenSuffix,
}

// newCatalog derives the event table from the charm metadata. Action
// events draw their invocation IDs from the given sequencer.
func newCatalog(spec charm.Spec, seq *sequencer.Sequencer) *Catalog {
	factories := make(map[string]EventFactory)
	plain := func(name string) EventFactory {
		return func(st *state.State) (*state.Event, error) {
			return state.NewEvent(name).Bind(st)
		}
	}
	for _, name := range hooks.BuiltinEvents().Values() {
		factories[name] = plain(name)
	}
	for _, name := range hooks.FrameworkEvents().Values() {
		factories[name] = plain(name)
	}
	for _, name := range hooks.SecretEvents().Values() {
		factories[name] = plain(name)
	}
	if spec.Meta != nil {
		for _, rel := range spec.AllRelations() {
			prefix := hooks.NormalizeName(rel.Name)
			for _, suffix := range relationEventSuffixes {
				name := prefix + suffix
				factories[name] = plain(name)
			}
		}
		for storageName := range spec.Meta.Storage {
			prefix := hooks.NormalizeName(storageName)
			for _, suffix := range []string{hooks.StorageAttachedSuffix, hooks.StorageDetachingSuffix} {
				name := prefix + suffix
				factories[name] = plain(name)
			}
		}
		for containerName := range spec.Meta.Containers {
			name := hooks.NormalizeName(containerName) + hooks.PebbleReadySuffix
			factories[name] = plain(name)
		}
	}
	if spec.Actions != nil {
		for actionName := range spec.Actions.Specs {
			name := hooks.NormalizeName(actionName) + hooks.ActionSuffix
			factories[name] = actionFactory(actionName, seq)
		}
	}
	return &Catalog{factories: factories}
}

func actionFactory(actionName string, seq *sequencer.Sequencer) EventFactory {
	return func(st *state.State) (*state.Event, error) {
		action := state.NewAction(state.ActionArgs{
			Name: actionName,
			ID:   seq.NextActionID(),
		})
		return action.Event(), nil
	}
}

// Names returns every event name in the catalog, sorted.
func (cat *Catalog) Names() []string {
	names := make([]string, 0, len(cat.factories))
	for name := range cat.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether the named event is in the catalog. The name may
// be in juju (dashed) or framework (underscored) form.
func (cat *Catalog) Has(name string) bool {
	_, ok := cat.factories[hooks.NormalizeName(name)]
	return ok
}

// Event builds the named event, bound to the given state. The name
// may be in juju (dashed) or framework (underscored) form.
func (cat *Catalog) Event(name string, st *state.State) (*state.Event, error) {
	factory, ok := cat.factories[hooks.NormalizeName(name)]
	if !ok {
		return nil, errors.NotFoundf("event %q in catalog", name)
	}
	ev, err := factory(st)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return ev, nil
}
