// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package state

import (
	"fmt"

	"github.com/juju/errors"
)

// ErrBindFailed is returned when an event's implicit subject cannot
// be resolved against a State. It is distinct from an inconsistency:
// binding runs before any metadata cross-checks.
const ErrBindFailed = errors.ConstError("cannot bind event to state")

// Bind resolves the entity this event needs from the given state and
// returns a bound copy. Events that already carry their entity, and
// events whose kind needs none, come back unchanged.
//
// Resolution must be unambiguous: more than one candidate is a bind
// failure, as is none. Binding is deterministic: the same event and
// state always resolve to the identical entity.
func (e *Event) Bind(st *State) (*Event, error) {
	kind := e.path.Kind
	switch {
	case kind.IsWorkload():
		if e.container != nil {
			return e, nil
		}
		container, err := st.Container(e.path.Prefix)
		if err != nil {
			return nil, fmt.Errorf("no container found with name %q%w",
				e.path.Prefix, errors.Hide(ErrBindFailed))
		}
		bound := *e
		bound.container = container
		return &bound, nil

	case kind.IsSecret():
		if e.secret != nil {
			return e, nil
		}
		if len(st.Secrets) < 1 {
			return nil, fmt.Errorf("no secrets in state: cannot bind %q%w",
				e.path.Name, errors.Hide(ErrBindFailed))
		}
		if len(st.Secrets) > 1 {
			return nil, fmt.Errorf("%d secrets in state: cannot bind %q unambiguously%w",
				len(st.Secrets), e.path.Name, errors.Hide(ErrBindFailed))
		}
		bound := *e
		bound.secret = st.Secrets[0]
		return &bound, nil

	case kind.IsStorage():
		if e.storage != nil {
			return e, nil
		}
		instances := st.StorageInstances(e.path.Prefix)
		if len(instances) < 1 {
			return nil, fmt.Errorf("no storage called %q in state%w",
				e.path.Prefix, errors.Hide(ErrBindFailed))
		}
		if len(instances) > 1 {
			return nil, fmt.Errorf("%d storage instances called %q: cannot bind %q unambiguously%w",
				len(instances), e.path.Prefix, e.path.Name, errors.Hide(ErrBindFailed))
		}
		bound := *e
		bound.storage = instances[0]
		return &bound, nil

	case kind.IsRelation():
		if e.relation != nil {
			return e, nil
		}
		relations := st.RelationsOn(e.path.Prefix)
		if len(relations) < 1 {
			return nil, fmt.Errorf("no relations on %q in state%w",
				e.path.Prefix, errors.Hide(ErrBindFailed))
		}
		if len(relations) > 1 {
			return nil, fmt.Errorf("%d relations on %q: cannot bind %q unambiguously%w",
				len(relations), e.path.Prefix, e.path.Name, errors.Hide(ErrBindFailed))
		}
		bound := *e
		bound.relation = relations[0]
		return &bound, nil

	case kind.IsAction():
		if e.action != nil {
			return e, nil
		}
		return nil, fmt.Errorf("cannot infer an action invocation from its event name alone: "+
			"construct the event from an Action%w", errors.Hide(ErrBindFailed))

	default:
		// Builtin, framework and custom events have no entity to
		// resolve.
		return e, nil
	}
}
