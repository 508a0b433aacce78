// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package state

import (
	"time"

	"github.com/juju/collections/set"
	"github.com/juju/errors"
	"github.com/rs/xid"
)

// SecretOwner says who manages a secret this charm can read.
type SecretOwner string

const (
	// OwnerNone marks a secret granted to this unit by some other
	// owner. The charm can read it but not manage it.
	OwnerNone SecretOwner = ""

	// OwnerUnit marks a secret owned by this unit.
	OwnerUnit SecretOwner = "unit"

	// OwnerApp marks a secret owned by this application.
	OwnerApp SecretOwner = "app"
)

// RotatePolicy is a secret's automatic rotation cadence.
type RotatePolicy string

const (
	RotateNever   RotatePolicy = "never"
	RotateHourly  RotatePolicy = "hourly"
	RotateDaily   RotatePolicy = "daily"
	RotateWeekly  RotatePolicy = "weekly"
	RotateMonthly RotatePolicy = "monthly"
	RotateYearly  RotatePolicy = "yearly"
)

// Secret is a juju secret this charm owns or has been granted.
type Secret struct {
	// ID is the secret URI. Constructors assign a canonical
	// "secret:" prefixed one when it is left empty.
	ID string

	// Contents maps revision numbers to that revision's payload.
	Contents map[int]map[string]string

	// Owner says whether this unit, this application or a remote
	// owner manages the secret.
	Owner SecretOwner

	// Revision is the revision currently tracked by this charm.
	// Only meaningful for secrets this charm does not own.
	Revision int

	// RemoteGrants maps relation IDs to the remote units and
	// applications the secret has been granted to. Only meaningful
	// for secrets this charm owns.
	RemoteGrants map[int]set.Strings

	// Label is the charm-local name for the secret.
	Label string

	// Description is the human-facing description.
	Description string

	// Expire is when the current revision expires, if ever.
	Expire time.Time

	// Rotate is the automatic rotation cadence, if any.
	Rotate RotatePolicy
}

// SecretArgs is the argument struct for NewSecret. Contents is
// required; a canonical ID is generated when none is given.
type SecretArgs struct {
	ID           string
	Contents     map[int]map[string]string
	Owner        SecretOwner
	Revision     int
	RemoteGrants map[int]set.Strings
	Label        string
	Description  string
	Expire       time.Time
	Rotate       RotatePolicy
}

// NewSecret returns a secret with the given contents. The generated
// ID has the canonical "secret:" prefix followed by 20 lowercase
// alphanumerics, the shape juju itself hands out.
func NewSecret(args SecretArgs) *Secret {
	id := args.ID
	if id == "" {
		id = "secret:" + xid.New().String()
	}
	contents := args.Contents
	if contents == nil {
		contents = map[int]map[string]string{}
	}
	grants := args.RemoteGrants
	if grants == nil {
		grants = map[int]set.Strings{}
	}
	return &Secret{
		ID:           id,
		Contents:     contents,
		Owner:        args.Owner,
		Revision:     args.Revision,
		RemoteGrants: grants,
		Label:        args.Label,
		Description:  args.Description,
		Expire:       args.Expire,
		Rotate:       args.Rotate,
	}
}

// ChangedEvent returns the secret-changed event for this secret.
// Only the consumer side of a secret observes changes, so this fails
// for a secret this charm owns.
func (s *Secret) ChangedEvent() (*Event, error) {
	if s.Owner != OwnerNone {
		return nil, errors.Errorf("this unit will never receive secret-changed for a secret it owns")
	}
	return NewEvent("secret_changed", WithSecret(s)), nil
}

// RotateEvent returns the secret-rotate event for this secret. Only
// the owner observes rotation, so this fails for a secret this charm
// does not own.
func (s *Secret) RotateEvent() (*Event, error) {
	if s.Owner == OwnerNone {
		return nil, errors.Errorf("this unit will never receive secret-rotate for a secret it does not own")
	}
	return NewEvent("secret_rotate", WithSecret(s)), nil
}

// ExpiredEvent returns the secret-expired event for this secret.
// Owner-only, like RotateEvent.
func (s *Secret) ExpiredEvent() (*Event, error) {
	if s.Owner == OwnerNone {
		return nil, errors.Errorf("this unit will never receive secret-expired for a secret it does not own")
	}
	return NewEvent("secret_expired", WithSecret(s)), nil
}

// RemoveEvent returns the secret-remove event for this secret.
// Owner-only, like RotateEvent.
func (s *Secret) RemoveEvent() (*Event, error) {
	if s.Owner == OwnerNone {
		return nil, errors.Errorf("this unit will never receive secret-remove for a secret it does not own")
	}
	return NewEvent("secret_remove", WithSecret(s)), nil
}
