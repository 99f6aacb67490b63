// Package lsa defines the minimal LSA and LSDB surface the MDR engine,
// Hello/DD codec, and SPF engine consult. spec.md §1 places the "base
// OSPFv3 area/LSDB machinery as defined by RFC 5340 (LSA serialization,
// aging, flooding)" out of scope as an external collaborator; this package
// is the narrow read side of that collaborator's output -- just enough
// decoded structure for SPF (internal/spf) and the advertised-neighbor
// decision (internal/mdr) to consult, never the origination/aging/flooding
// machinery itself.
package lsa

import (
	"net"

	"github.com/ospf6mdr/ospf6d/internal/router6"
)

// Type distinguishes the LSA kinds the SPF walk and MDR engine need.
type Type int

const (
	TypeRouter Type = iota
	TypeNetwork
	TypeLink
	TypeIntraPrefix
)

// DescriptorType classifies one router-LSA link descriptor.
type DescriptorType int

const (
	DescPointToPoint DescriptorType = iota
	DescTransitNetwork
	DescVirtualLink
)

// RouterDescriptor is one entry in a router-LSA's list of links, the unit
// the SPF relaxation step walks (spec.md §4.E).
type RouterDescriptor struct {
	Type           DescriptorType
	Metric         uint16
	InterfaceID    uint32
	NeighborIfID   uint32
	NeighborRouter router6.ID // the neighbor's router-id; for TransitNetwork this is the segment DR's router-id, pairing with NeighborIfID as the network-LSA's (AdvRouter, InterfaceID) key
}

// RouterLSA is the decoded subset of an RFC 5340 router-LSA the core
// needs: origin identity, the capability/option byte copied onto SPF
// vertices, and the link-descriptor list.
type RouterLSA struct {
	AdvRouter   router6.ID
	Options     uint32 // 24-bit OSPFv3 options field, low byte carries legacy bits
	Descriptors []RouterDescriptor
}

// NetworkLSA is the decoded subset of a transit-network LSA: which
// routers are attached (their router-ids), used to resolve
// TransitNetwork-to-network SPF descriptors.
type NetworkLSA struct {
	AdvRouter       router6.ID // the DR that originated it
	InterfaceID     uint32
	AttachedRouters []router6.ID
	Options         uint32
}

// LinkLSA is the decoded subset of a link-LSA: the originating router's
// link-local address on the interface plus its advertised prefixes. SPF
// nexthop resolution for MDR neighbors reads LinkLocalAddr directly
// (spec.md §4.E).
type LinkLSA struct {
	AdvRouter     router6.ID
	InterfaceID   uint32
	LinkLocalAddr net.IP
	Priority      uint8
	Options       uint32
	Prefixes      []net.IPNet
}
