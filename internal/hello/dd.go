package hello

import (
	"fmt"

	"github.com/ospf6mdr/ospf6d/internal/router6"
)

// DDHeaderRef identifies one LSA header entry in a Database Description
// packet without decoding the LSA body itself -- the real LSDB
// collaborator (spec.md §1, internal/lsa.DB) owns bodies; the DD
// exchange only ever needs type/link-state-id/advertising-router/
// sequence-number to drive the summary/request-list bookkeeping in
// internal/neighbor.
type DDHeaderRef struct {
	LSType    uint16
	LinkState uint32
	AdvRouter router6.ID
	SeqNum    uint32
}

// DDPacket is an OSPFv3 Database Description packet body (RFC 5340
// §A.3.3), with the three bit flags packed into Bits per the wire
// format (bit 0 = MS, bit 1 = M, bit 2 = I).
type DDPacket struct {
	IfMTU   uint16
	Options uint32
	Bits    uint8
	SeqNum  uint32
	Headers []DDHeaderRef
}

const (
	ddBitMS = 1 << 0
	ddBitM  = 1 << 1
	ddBitI  = 1 << 2
)

func (p DDPacket) MasterSlave() bool { return p.Bits&ddBitMS != 0 }
func (p DDPacket) More() bool        { return p.Bits&ddBitM != 0 }
func (p DDPacket) Init() bool        { return p.Bits&ddBitI != 0 }

// EncodeDDBody serializes the fixed DD header followed by one 20-byte
// LSA-header-summary entry per Headers element. Each entry carries only
// the LS type (bytes 0-1), link-state id (2-5), advertising router (6-9)
// and sequence number (10-13); the remaining 6 bytes, where an RFC 5340
// LSA header holds age, checksum and length, are left zero.
func EncodeDDBody(p DDPacket) []byte {
	out := make([]byte, 10)
	out[0] = byte(p.IfMTU >> 8)
	out[1] = byte(p.IfMTU)
	out[2] = byte(p.Options >> 16)
	out[3] = byte(p.Options >> 8)
	out[4] = byte(p.Options)
	out[5] = p.Bits
	putU32(out[6:10], p.SeqNum)

	for _, h := range p.Headers {
		var entry [20]byte
		entry[0] = byte(h.LSType >> 8)
		entry[1] = byte(h.LSType)
		putU32(entry[2:6], h.LinkState)
		putU32(entry[6:10], uint32(h.AdvRouter))
		putU32(entry[10:14], h.SeqNum)
		out = append(out, entry[:]...)
	}
	return out
}

// DecodeDDBody parses a Database Description packet body.
func DecodeDDBody(body []byte) (DDPacket, error) {
	if len(body) < 10 {
		return DDPacket{}, fmt.Errorf("hello: DD body too short (%d bytes)", len(body))
	}
	p := DDPacket{
		IfMTU:   uint16(body[0])<<8 | uint16(body[1]),
		Options: uint32(body[2])<<16 | uint32(body[3])<<8 | uint32(body[4]),
		Bits:    body[5],
		SeqNum:  getU32(body[6:10]),
	}
	rest := body[10:]
	if len(rest)%20 != 0 {
		return DDPacket{}, fmt.Errorf("hello: DD LSA-header list length %d not a multiple of 20", len(rest))
	}
	for len(rest) >= 20 {
		p.Headers = append(p.Headers, DDHeaderRef{
			LSType:    uint16(rest[0])<<8 | uint16(rest[1]),
			LinkState: getU32(rest[2:6]),
			AdvRouter: router6.ID(getU32(rest[6:10])),
			SeqNum:    getU32(rest[10:14]),
		})
		rest = rest[20:]
	}
	return p, nil
}
