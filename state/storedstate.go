// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package state

import (
	"fmt"
	"strings"
)

// StoredState is one framework-managed stored state blob.
type StoredState struct {
	// OwnerPath is the /-separated path of the owning object, e.g.
	// "MyCharm/MyCharmLib". Empty means the framework itself owns it.
	OwnerPath string

	// Name is the stored state attribute name.
	Name string

	// Content is the stored payload. It must be plain data: strings,
	// booleans, numbers, nil, and lists or string-keyed maps of
	// those. The consistency checker enforces this.
	Content map[string]interface{}

	// DataTypeName is the framework type implementing the blob.
	DataTypeName string
}

// StoredStateArgs is the argument struct for NewStoredState.
type StoredStateArgs struct {
	OwnerPath string
	Name      string
	Content   map[string]interface{}
}

// NewStoredState returns a stored state blob with the framework's
// default attribute name.
func NewStoredState(args StoredStateArgs) *StoredState {
	name := args.Name
	if name == "" {
		name = "_stored"
	}
	content := args.Content
	if content == nil {
		content = map[string]interface{}{}
	}
	return &StoredState{
		OwnerPath:    args.OwnerPath,
		Name:         name,
		Content:      content,
		DataTypeName: "StoredStateData",
	}
}

// HandlePath returns the framework handle path for this blob, e.g.
// "MyCharm/StoredStateData[_stored]".
func (s *StoredState) HandlePath() string {
	return fmt.Sprintf("%s/%s[%s]", s.OwnerPath, s.DataTypeName, s.Name)
}

// DeferredEvent is an event a previous execution deferred; it will
// re-run before the next incoming event.
type DeferredEvent struct {
	// HandlePath is the framework handle of the deferred observer
	// binding, e.g. "MyCharm/on/update_status[1]".
	HandlePath string

	// Owner is the name of the object that emitted the event.
	Owner string

	// Observer is the name of the method that observed it.
	Observer string

	// SnapshotData is the event snapshot stored alongside, which
	// must serialize cleanly.
	SnapshotData map[string]interface{}
}

// Name returns the event name embedded in the handle path.
func (d *DeferredEvent) Name() string {
	segments := strings.Split(d.HandlePath, "/")
	last := segments[len(segments)-1]
	if i := strings.Index(last, "["); i >= 0 {
		last = last[:i]
	}
	return last
}
