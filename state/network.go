// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package state

// Address is a single address attached to a network interface.
type Address struct {
	// Value is the address itself, e.g. "192.0.2.0".
	Value string

	// Hostname is the DNS name the address resolves from, if any.
	Hostname string

	// CIDR is the subnet the address belongs to, if known.
	CIDR string
}

// BindAddress is the set of addresses a bound network exposes on one
// interface.
type BindAddress struct {
	// InterfaceName names the device carrying the addresses.
	InterfaceName string

	// Addresses holds the addresses assigned to the interface.
	Addresses []Address

	// MACAddress is the hardware address of the interface, if known.
	MACAddress string
}

// Network is the provider network attached to one binding, as
// network-get would report it to the charm.
type Network struct {
	// BindAddresses lists the local addresses, per interface.
	BindAddresses []BindAddress

	// IngressAddresses lists the addresses remote units should
	// connect to.
	IngressAddresses []string

	// EgressSubnets lists the subnets traffic from this unit may
	// originate from.
	EgressSubnets []string
}

// DefaultNetwork returns the network juju reports for a binding that
// has not been overridden: a single anonymous interface on the
// 192.0.2.0 test net.
func DefaultNetwork() Network {
	return Network{
		BindAddresses: []BindAddress{{
			Addresses: []Address{{Value: "192.0.2.0"}},
		}},
		IngressAddresses: []string{"192.0.2.0"},
		EgressSubnets:    []string{"192.0.2.0/24"},
	}
}
