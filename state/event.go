// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package state

import (
	"fmt"

	"github.com/canonical/scenario/hooks"
)

// Event is one hook event to dispatch to the charm: a classified
// path plus whatever entity the event concerns. Events are built
// either from the sugar methods on entities, which arrive bound, or
// from a bare path, in which case Bind resolves the entity against a
// State.
type Event struct {
	path hooks.Path

	relation  RelationView
	secret    *Secret
	storage   *Storage
	container *Container
	action    *Action

	remoteUnitID    *int
	departingUnitID *int
	secretRevision  *int
	notice          *Notice
	check           *CheckInfo
}

// EventOption attaches an entity or auxiliary datum to an event
// under construction.
type EventOption func(*Event)

// WithRelation binds the event to a relation.
func WithRelation(relation RelationView) EventOption {
	return func(e *Event) { e.relation = relation }
}

// WithRemoteUnitID records which remote unit the event concerns,
// for relation events with more than one remote unit.
func WithRemoteUnitID(id int) EventOption {
	return func(e *Event) { e.remoteUnitID = &id }
}

// WithDepartingUnitID records the unit leaving the relation, for
// relation-departed events.
func WithDepartingUnitID(id int) EventOption {
	return func(e *Event) { e.departingUnitID = &id }
}

// WithSecret binds the event to a secret.
func WithSecret(secret *Secret) EventOption {
	return func(e *Event) { e.secret = secret }
}

// WithSecretRevision records the revision a secret-expired or
// secret-rotate event concerns.
func WithSecretRevision(revision int) EventOption {
	return func(e *Event) { e.secretRevision = &revision }
}

// WithStorage binds the event to a storage instance.
func WithStorage(storage *Storage) EventOption {
	return func(e *Event) { e.storage = storage }
}

// WithContainer binds the event to a container.
func WithContainer(container *Container) EventOption {
	return func(e *Event) { e.container = container }
}

// WithNotice records the Pebble notice a pebble-custom-notice event
// delivers.
func WithNotice(notice *Notice) EventOption {
	return func(e *Event) { e.notice = notice }
}

// WithCheck records the Pebble check a pebble-check-failed or
// pebble-check-recovered event concerns.
func WithCheck(check *CheckInfo) EventOption {
	return func(e *Event) { e.check = check }
}

// WithAction binds the event to an action invocation.
func WithAction(action *Action) EventOption {
	return func(e *Event) { e.action = action }
}

// NewEvent returns the event for the given path. The path is
// normalized and classified on construction; classification is
// total, so any string produces a valid event.
func NewEvent(path string, opts ...EventOption) *Event {
	e := &Event{path: hooks.Parse(path)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Path returns the normalized event path, owner path included.
func (e *Event) Path() string { return e.path.Full }

// Name returns the event name, e.g. "foo_relation_changed".
func (e *Event) Name() string { return e.path.Name }

// Kind returns the event's semantic category.
func (e *Event) Kind() hooks.Kind { return e.path.Kind }

// Prefix returns the entity name embedded in the event name, for
// the kinds that embed one.
func (e *Event) Prefix() string { return e.path.Prefix }

// OwnerPath returns the path of the object emitting the event,
// defaulting to the charm's own "on".
func (e *Event) OwnerPath() []string { return e.path.OwnerPath }

// Relation returns the bound relation, if any.
func (e *Event) Relation() RelationView { return e.relation }

// Secret returns the bound secret, if any.
func (e *Event) Secret() *Secret { return e.secret }

// Storage returns the bound storage instance, if any.
func (e *Event) Storage() *Storage { return e.storage }

// Container returns the bound container, if any.
func (e *Event) Container() *Container { return e.container }

// Action returns the bound action invocation, if any.
func (e *Event) Action() *Action { return e.action }

// RemoteUnitID returns the remote unit the event concerns, or nil.
func (e *Event) RemoteUnitID() *int { return e.remoteUnitID }

// DepartingUnitID returns the departing unit, or nil.
func (e *Event) DepartingUnitID() *int { return e.departingUnitID }

// SecretRevision returns the secret revision the event concerns, or
// nil.
func (e *Event) SecretRevision() *int { return e.secretRevision }

// Notice returns the delivered Pebble notice, if any.
func (e *Event) Notice() *Notice { return e.notice }

// Check returns the Pebble check the event concerns, if any.
func (e *Event) Check() *CheckInfo { return e.check }

// String implements fmt.Stringer.
func (e *Event) String() string {
	return fmt.Sprintf("event %q (%s)", e.path.Name, e.path.Kind)
}

// Deferred returns the DeferredEvent a previous run would have left
// in the state had the given observer deferred this event. The
// owner is the observing object's name, typically the charm type;
// the handler is the observing method.
func (e *Event) Deferred(owner, handler string, eventID int) *DeferredEvent {
	snapshot := map[string]interface{}{}
	switch {
	case e.path.Kind.IsWorkload() && e.container != nil:
		snapshot["container_name"] = e.container.Name
		if e.notice != nil {
			snapshot["notice_id"] = e.notice.ID
			snapshot["notice_key"] = e.notice.Key
			snapshot["notice_type"] = string(e.notice.Type)
		}
	case e.path.Kind.IsRelation() && e.relation != nil:
		remoteApp := "local"
		switch relation := e.relation.(type) {
		case *Relation:
			remoteApp = relation.RemoteAppName
		case *SubordinateRelation:
			remoteApp = relation.RemoteAppName
		}
		remoteUnit := 0
		if e.remoteUnitID != nil {
			remoteUnit = *e.remoteUnitID
		}
		snapshot["relation_name"] = e.relation.EndpointName()
		snapshot["relation_id"] = e.relation.RelationID()
		snapshot["app_name"] = remoteApp
		snapshot["unit_name"] = fmt.Sprintf("%s/%d", remoteApp, remoteUnit)
	}
	return &DeferredEvent{
		HandlePath:   fmt.Sprintf("%s/on/%s[%d]", owner, e.path.Name, eventID),
		Owner:        owner,
		Observer:     handler,
		SnapshotData: snapshot,
	}
}
