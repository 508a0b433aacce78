// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package state_test

import (
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/canonical/scenario/state"
)

type networkSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&networkSuite{})

func (s *networkSuite) TestDefaultNetwork(c *gc.C) {
	network := state.DefaultNetwork()

	c.Check(network, jc.DeepEquals, state.Network{
		BindAddresses: []state.BindAddress{{
			Addresses: []state.Address{{Value: "192.0.2.0"}},
		}},
		IngressAddresses: []string{"192.0.2.0"},
		EgressSubnets:    []string{"192.0.2.0/24"},
	})
}
