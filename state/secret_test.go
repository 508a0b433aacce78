// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package state_test

import (
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/canonical/scenario/hooks"
	"github.com/canonical/scenario/state"
)

type secretSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&secretSuite{})

func (s *secretSuite) TestNewSecretGeneratesCanonicalID(c *gc.C) {
	secret := state.NewSecret(state.SecretArgs{
		Contents: map[int]map[string]string{0: {"key": "private"}},
	})
	c.Check(secret.ID, gc.Matches, `secret:[a-z0-9]{20}`)

	other := state.NewSecret(state.SecretArgs{
		Contents: map[int]map[string]string{0: {"key": "private"}},
	})
	c.Check(other.ID, gc.Not(gc.Equals), secret.ID)
}

func (s *secretSuite) TestNewSecretKeepsExplicitID(c *gc.C) {
	secret := state.NewSecret(state.SecretArgs{
		ID:       "secret:custom",
		Contents: map[int]map[string]string{0: {"key": "private"}},
	})
	c.Check(secret.ID, gc.Equals, "secret:custom")
}

func (s *secretSuite) TestNewSecretDefaults(c *gc.C) {
	secret := state.NewSecret(state.SecretArgs{})
	c.Check(secret.Contents, gc.NotNil)
	c.Check(secret.RemoteGrants, gc.NotNil)
	c.Check(secret.Owner, gc.Equals, state.OwnerNone)
	c.Check(secret.Revision, gc.Equals, 0)
	c.Check(secret.Rotate, gc.Equals, state.RotatePolicy(""))
}

func (s *secretSuite) TestConsumerEvents(c *gc.C) {
	secret := state.NewSecret(state.SecretArgs{
		Contents: map[int]map[string]string{0: {"key": "private"}},
	})

	changed, err := secret.ChangedEvent()
	c.Assert(err, jc.ErrorIsNil)
	c.Check(changed.Name(), gc.Equals, "secret_changed")
	c.Check(changed.Kind(), gc.Equals, hooks.Secret)
	c.Check(changed.Secret(), gc.Equals, secret)

	_, err = secret.RotateEvent()
	c.Check(err, gc.ErrorMatches, "this unit will never receive secret-rotate for a secret it does not own")
	_, err = secret.ExpiredEvent()
	c.Check(err, gc.ErrorMatches, "this unit will never receive secret-expired for a secret it does not own")
	_, err = secret.RemoveEvent()
	c.Check(err, gc.ErrorMatches, "this unit will never receive secret-remove for a secret it does not own")
}

func (s *secretSuite) TestOwnerEvents(c *gc.C) {
	secret := state.NewSecret(state.SecretArgs{
		Contents: map[int]map[string]string{0: {"key": "private"}},
		Owner:    state.OwnerApp,
	})

	_, err := secret.ChangedEvent()
	c.Check(err, gc.ErrorMatches, "this unit will never receive secret-changed for a secret it owns")

	rotate, err := secret.RotateEvent()
	c.Assert(err, jc.ErrorIsNil)
	c.Check(rotate.Name(), gc.Equals, "secret_rotate")
	c.Check(rotate.Secret(), gc.Equals, secret)

	expired, err := secret.ExpiredEvent()
	c.Assert(err, jc.ErrorIsNil)
	c.Check(expired.Name(), gc.Equals, "secret_expired")

	removed, err := secret.RemoveEvent()
	c.Assert(err, jc.ErrorIsNil)
	c.Check(removed.Name(), gc.Equals, "secret_remove")
}
