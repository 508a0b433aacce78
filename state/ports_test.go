// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package state_test

import (
	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/canonical/scenario/state"
)

type portSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&portSuite{})

func (s *portSuite) TestNewPort(c *gc.C) {
	tests := []struct {
		protocol state.Protocol
		number   int
		err      string
	}{{
		protocol: state.ProtocolTCP,
		number:   8080,
	}, {
		protocol: state.ProtocolUDP,
		number:   53,
	}, {
		protocol: state.ProtocolTCP,
		number:   1,
	}, {
		protocol: state.ProtocolTCP,
		number:   65535,
	}, {
		protocol: state.ProtocolICMP,
	}, {
		protocol: state.ProtocolICMP,
		number:   8,
		err:      `port number 8 with icmp protocol not valid`,
	}, {
		protocol: state.ProtocolTCP,
		err:      `tcp port without a port number not valid`,
	}, {
		protocol: state.ProtocolUDP,
		err:      `udp port without a port number not valid`,
	}, {
		protocol: state.ProtocolTCP,
		number:   65536,
		err:      `port number 65536 outside range \[1, 65535\] not valid`,
	}, {
		protocol: state.ProtocolUDP,
		number:   -1,
		err:      `port number -1 outside range \[1, 65535\] not valid`,
	}, {
		protocol: state.Protocol("sctp"),
		number:   100,
		err:      `protocol "sctp" not valid`,
	}}
	for i, test := range tests {
		c.Logf("test %d: %s/%d", i, test.protocol, test.number)
		port, err := state.NewPort(test.protocol, test.number)
		if test.err != "" {
			c.Check(err, gc.ErrorMatches, test.err)
			c.Check(err, jc.ErrorIs, errors.NotValid)
			continue
		}
		c.Assert(err, jc.ErrorIsNil)
		c.Check(port, gc.Equals, state.Port{Protocol: test.protocol, Number: test.number})
	}
}
