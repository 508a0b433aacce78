// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package state

import (
	"fmt"

	"github.com/juju/errors"

	"github.com/canonical/scenario/core/sequencer"
	"github.com/canonical/scenario/hooks"
)

// defaultIP is the address juju puts in a fresh unit databag. The
// leading space is present in real juju databags, so we reproduce it.
const defaultIP = " 192.0.2.0"

// DefaultJujuDatabag returns the databag juju seeds a unit with before
// the charm has written anything to it.
func DefaultJujuDatabag() map[string]string {
	return map[string]string{
		"egress-subnets":  defaultIP,
		"ingress-address": defaultIP,
		"private-address": defaultIP,
	}
}

// RelationView is the read surface shared by the relation kinds:
// Relation, PeerRelation and SubordinateRelation. Code that does not
// care which kind it holds dispatches through this interface; code
// that does, type-switches on the concrete types.
type RelationView interface {
	// EndpointName returns the name of the local endpoint this
	// relation is attached to.
	EndpointName() string

	// InterfaceName returns the interface declared for the endpoint,
	// if known. Empty means derive it from the charm metadata.
	InterfaceName() string

	// RelationID returns the juju-wide relation ID.
	RelationID() int

	// AppData returns this application's databag.
	AppData() map[string]string

	// UnitData returns this unit's databag.
	UnitData() map[string]string

	// RemoteUnitIDs returns the IDs of the units on the other side of
	// the relation. For peer relations these are the peer units.
	RemoteUnitIDs() []int

	// RemoteUnitData returns the databag of the given remote unit.
	RemoteUnitData(unitID int) (map[string]string, error)
}

// RelationCore holds the fields common to every relation kind.
type RelationCore struct {
	// Endpoint is the local endpoint name. It must match an endpoint
	// declared in the charm metadata.
	Endpoint string

	// Interface is the interface name attached to the endpoint in the
	// charm metadata. Left empty, it is derived from the metadata.
	Interface string

	// ID is the juju-wide relation ID. Constructors assign a unique
	// one when it is left zero.
	ID int

	// LocalAppData is this application's databag for the relation.
	LocalAppData map[string]string

	// LocalUnitData is this unit's databag for the relation.
	LocalUnitData map[string]string
}

// EndpointName returns the local endpoint name.
func (c *RelationCore) EndpointName() string { return c.Endpoint }

// InterfaceName returns the declared interface name.
func (c *RelationCore) InterfaceName() string { return c.Interface }

// RelationID returns the juju-wide relation ID.
func (c *RelationCore) RelationID() int { return c.ID }

// AppData returns this application's databag.
func (c *RelationCore) AppData() map[string]string { return c.LocalAppData }

// UnitData returns this unit's databag.
func (c *RelationCore) UnitData() map[string]string { return c.LocalUnitData }

func newRelationCore(endpoint, iface string, id int, appData, unitData map[string]string) RelationCore {
	if id == 0 {
		id = sequencer.NextRelationID()
	}
	if appData == nil {
		appData = map[string]string{}
	}
	if unitData == nil {
		unitData = DefaultJujuDatabag()
	}
	return RelationCore{
		Endpoint:      endpoint,
		Interface:     iface,
		ID:            id,
		LocalAppData:  appData,
		LocalUnitData: unitData,
	}
}

// Relation is an integration between the charm and another
// application.
type Relation struct {
	RelationCore

	// RemoteAppName is the name of the application on the other side.
	RemoteAppName string

	// Limit is the maximum number of integrations on this endpoint.
	Limit int

	// RemoteAppData is the remote application's databag.
	RemoteAppData map[string]string

	// RemoteUnitsData holds the databag of each remote unit, keyed by
	// unit ID.
	RemoteUnitsData map[int]map[string]string
}

// RelationArgs is the argument struct for NewRelation. Endpoint is
// required; everything else defaults to a fresh relation with one
// remote unit carrying the default juju databag.
type RelationArgs struct {
	Endpoint        string
	Interface       string
	ID              int
	LocalAppData    map[string]string
	LocalUnitData   map[string]string
	RemoteAppName   string
	Limit           int
	RemoteAppData   map[string]string
	RemoteUnitsData map[int]map[string]string
}

// NewRelation returns a regular relation on the given endpoint,
// defaulted the way juju would present a one-remote-unit integration.
func NewRelation(args RelationArgs) *Relation {
	if args.RemoteAppName == "" {
		args.RemoteAppName = "remote"
	}
	if args.Limit == 0 {
		args.Limit = 1
	}
	if args.RemoteAppData == nil {
		args.RemoteAppData = map[string]string{}
	}
	if args.RemoteUnitsData == nil {
		args.RemoteUnitsData = map[int]map[string]string{
			0: DefaultJujuDatabag(),
		}
	}
	return &Relation{
		RelationCore:    newRelationCore(args.Endpoint, args.Interface, args.ID, args.LocalAppData, args.LocalUnitData),
		RemoteAppName:   args.RemoteAppName,
		Limit:           args.Limit,
		RemoteAppData:   args.RemoteAppData,
		RemoteUnitsData: args.RemoteUnitsData,
	}
}

// RemoteUnitIDs returns the IDs of the remote units, unordered.
func (r *Relation) RemoteUnitIDs() []int {
	ids := make([]int, 0, len(r.RemoteUnitsData))
	for id := range r.RemoteUnitsData {
		ids = append(ids, id)
	}
	return ids
}

// RemoteUnitData returns the databag of the given remote unit.
func (r *Relation) RemoteUnitData(unitID int) (map[string]string, error) {
	data, ok := r.RemoteUnitsData[unitID]
	if !ok {
		return nil, errors.NotFoundf("remote unit %d on %q", unitID, r.Endpoint)
	}
	return data, nil
}

// CreatedEvent returns the relation-created event for this relation.
func (r *Relation) CreatedEvent() *Event { return relationEvent(r, hooks.RelationCreatedSuffix) }

// JoinedEvent returns the relation-joined event for this relation.
func (r *Relation) JoinedEvent() *Event { return relationEvent(r, hooks.RelationJoinedSuffix) }

// ChangedEvent returns the relation-changed event for this relation.
func (r *Relation) ChangedEvent() *Event { return relationEvent(r, hooks.RelationChangedSuffix) }

// DepartedEvent returns the relation-departed event for this relation.
func (r *Relation) DepartedEvent() *Event { return relationEvent(r, hooks.RelationDepartedSuffix) }

// BrokenEvent returns the relation-broken event for this relation.
func (r *Relation) BrokenEvent() *Event { return relationEvent(r, hooks.RelationBrokenSuffix) }

// SubordinateRelation is a container-scoped integration: this unit is
// attached to exactly one remote unit, its principal.
type SubordinateRelation struct {
	RelationCore

	// RemoteAppName is the principal application's name.
	RemoteAppName string

	// RemoteUnitID is the ID of the principal unit this unit is
	// attached to.
	RemoteUnitID int

	// RemoteAppData is the principal application's databag.
	RemoteAppData map[string]string

	// RemoteUnitDatabag is the principal unit's databag.
	RemoteUnitDatabag map[string]string
}

// SubordinateRelationArgs is the argument struct for
// NewSubordinateRelation.
type SubordinateRelationArgs struct {
	Endpoint       string
	Interface      string
	ID             int
	LocalAppData   map[string]string
	LocalUnitData  map[string]string
	RemoteAppName  string
	RemoteUnitID   int
	RemoteAppData  map[string]string
	RemoteUnitData map[string]string
}

// NewSubordinateRelation returns a subordinate relation on the given
// endpoint, attached to unit 0 of a remote application by default.
func NewSubordinateRelation(args SubordinateRelationArgs) *SubordinateRelation {
	if args.RemoteAppName == "" {
		args.RemoteAppName = "remote"
	}
	if args.RemoteAppData == nil {
		args.RemoteAppData = map[string]string{}
	}
	if args.RemoteUnitData == nil {
		args.RemoteUnitData = DefaultJujuDatabag()
	}
	return &SubordinateRelation{
		RelationCore:      newRelationCore(args.Endpoint, args.Interface, args.ID, args.LocalAppData, args.LocalUnitData),
		RemoteAppName:     args.RemoteAppName,
		RemoteUnitID:      args.RemoteUnitID,
		RemoteAppData:     args.RemoteAppData,
		RemoteUnitDatabag: args.RemoteUnitData,
	}
}

// RemoteUnitIDs returns the single principal unit ID.
func (r *SubordinateRelation) RemoteUnitIDs() []int {
	return []int{r.RemoteUnitID}
}

// RemoteUnitData returns the principal unit's databag. Only the
// principal's ID is valid.
func (r *SubordinateRelation) RemoteUnitData(unitID int) (map[string]string, error) {
	if unitID != r.RemoteUnitID {
		return nil, errors.Errorf(
			"invalid unit ID %d: subordinate relation has a single remote with ID %d",
			unitID, r.RemoteUnitID)
	}
	return r.RemoteUnitDatabag, nil
}

// RemoteUnitName returns the principal unit's name.
func (r *SubordinateRelation) RemoteUnitName() string {
	return fmt.Sprintf("%s/%d", r.RemoteAppName, r.RemoteUnitID)
}

// CreatedEvent returns the relation-created event for this relation.
func (r *SubordinateRelation) CreatedEvent() *Event {
	return relationEvent(r, hooks.RelationCreatedSuffix)
}

// JoinedEvent returns the relation-joined event for this relation.
func (r *SubordinateRelation) JoinedEvent() *Event {
	return relationEvent(r, hooks.RelationJoinedSuffix)
}

// ChangedEvent returns the relation-changed event for this relation.
func (r *SubordinateRelation) ChangedEvent() *Event {
	return relationEvent(r, hooks.RelationChangedSuffix)
}

// DepartedEvent returns the relation-departed event for this relation.
func (r *SubordinateRelation) DepartedEvent() *Event {
	return relationEvent(r, hooks.RelationDepartedSuffix)
}

// BrokenEvent returns the relation-broken event for this relation.
func (r *SubordinateRelation) BrokenEvent() *Event {
	return relationEvent(r, hooks.RelationBrokenSuffix)
}

// PeerRelation is a relation shared between the units of this
// application.
type PeerRelation struct {
	RelationCore

	// PeersData holds the databag of each peer unit, keyed by unit
	// ID. This unit's own ID must not appear here.
	PeersData map[int]map[string]string
}

// PeerRelationArgs is the argument struct for NewPeerRelation.
type PeerRelationArgs struct {
	Endpoint      string
	Interface     string
	ID            int
	LocalAppData  map[string]string
	LocalUnitData map[string]string
	PeersData     map[int]map[string]string
}

// NewPeerRelation returns a peer relation on the given endpoint with
// a single peer unit by default.
func NewPeerRelation(args PeerRelationArgs) *PeerRelation {
	if args.PeersData == nil {
		args.PeersData = map[int]map[string]string{
			0: DefaultJujuDatabag(),
		}
	}
	return &PeerRelation{
		RelationCore: newRelationCore(args.Endpoint, args.Interface, args.ID, args.LocalAppData, args.LocalUnitData),
		PeersData:    args.PeersData,
	}
}

// RemoteUnitIDs returns the IDs of the peer units, unordered.
func (r *PeerRelation) RemoteUnitIDs() []int {
	ids := make([]int, 0, len(r.PeersData))
	for id := range r.PeersData {
		ids = append(ids, id)
	}
	return ids
}

// RemoteUnitData returns the databag of the given peer unit.
func (r *PeerRelation) RemoteUnitData(unitID int) (map[string]string, error) {
	data, ok := r.PeersData[unitID]
	if !ok {
		return nil, errors.NotFoundf("peer unit %d on %q", unitID, r.Endpoint)
	}
	return data, nil
}

// CreatedEvent returns the relation-created event for this relation.
func (r *PeerRelation) CreatedEvent() *Event { return relationEvent(r, hooks.RelationCreatedSuffix) }

// JoinedEvent returns the relation-joined event for this relation.
func (r *PeerRelation) JoinedEvent() *Event { return relationEvent(r, hooks.RelationJoinedSuffix) }

// ChangedEvent returns the relation-changed event for this relation.
func (r *PeerRelation) ChangedEvent() *Event { return relationEvent(r, hooks.RelationChangedSuffix) }

// DepartedEvent returns the relation-departed event for this relation.
func (r *PeerRelation) DepartedEvent() *Event {
	return relationEvent(r, hooks.RelationDepartedSuffix)
}

// BrokenEvent returns the relation-broken event for this relation.
func (r *PeerRelation) BrokenEvent() *Event { return relationEvent(r, hooks.RelationBrokenSuffix) }

func relationEvent(r RelationView, suffix string) *Event {
	return NewEvent(hooks.NormalizeName(r.EndpointName())+suffix, WithRelation(r))
}
