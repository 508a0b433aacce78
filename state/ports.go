// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package state

import (
	"github.com/juju/errors"
)

// Protocol is a port protocol juju can open.
type Protocol string

const (
	ProtocolTCP  Protocol = "tcp"
	ProtocolUDP  Protocol = "udp"
	ProtocolICMP Protocol = "icmp"
)

// Port is a port opened by the charm on its host.
type Port struct {
	// Protocol is the transport protocol.
	Protocol Protocol

	// Number is the port number. Zero for ICMP, which has no ports.
	Number int
}

// NewPort returns an opened port, validating the protocol and port
// number combination. ICMP takes no port number; TCP and UDP require
// one in [1, 65535].
func NewPort(protocol Protocol, number int) (Port, error) {
	switch protocol {
	case ProtocolICMP:
		if number != 0 {
			return Port{}, errors.NotValidf("port number %d with icmp protocol", number)
		}
	case ProtocolTCP, ProtocolUDP:
		if number == 0 {
			return Port{}, errors.NotValidf("%s port without a port number", protocol)
		}
		if number < 1 || number > 65535 {
			return Port{}, errors.NotValidf("port number %d outside range [1, 65535]", number)
		}
	default:
		return Port{}, errors.NotValidf("protocol %q", protocol)
	}
	return Port{Protocol: protocol, Number: number}, nil
}
