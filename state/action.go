// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package state

import (
	"github.com/canonical/scenario/core/sequencer"
	"github.com/canonical/scenario/hooks"
)

// Action is one juju run invocation of a charm action.
type Action struct {
	// Name is the action name from the charm metadata.
	Name string

	// Params holds the parameter values passed on the command line.
	Params map[string]interface{}

	// ID is the juju action ID. Juju currently numbers actions but
	// has used UUIDs in the past, so it is a string.
	ID string
}

// ActionArgs is the argument struct for NewAction. Name is required.
type ActionArgs struct {
	Name   string
	Params map[string]interface{}
	ID     string
}

// NewAction returns an action invocation with a fresh ID unless one
// was given.
func NewAction(args ActionArgs) *Action {
	if args.Params == nil {
		args.Params = map[string]interface{}{}
	}
	if args.ID == "" {
		args.ID = sequencer.NextActionID()
	}
	return &Action{
		Name:   args.Name,
		Params: args.Params,
		ID:     args.ID,
	}
}

// Event returns the action event for this invocation.
func (a *Action) Event() *Event {
	return NewEvent(hooks.NormalizeName(a.Name)+hooks.ActionSuffix, WithAction(a))
}
