package hello

import (
	"fmt"

	"github.com/ospf6mdr/ospf6d/internal/router6"
)

// Packet is an OSPFv3 Hello packet body (RFC 5340 §A.3.2) plus the MDR
// extension's neighbor-classification lists, which ride in the Hello's
// own neighbor-id list segmented by spec.md §4.C's five categories
// (lost, init, dependent, sel-adv, other-bidirectional) rather than a
// single flat list -- full-hello vs diff-hello is distinguished by the
// LLS MDR Hello TLV's DiffHello bit, not by packet shape.
type Packet struct {
	InterfaceID   uint32
	RtrPriority   uint8
	Options       uint32 // 24-bit option field
	HelloInterval uint16
	RouterDead    uint16
	DR            router6.ID
	BDR           router6.ID

	Lost           []router6.ID
	Init           []router6.ID
	Dependent      []router6.ID
	SelAdv         []router6.ID
	OtherBidir     []router6.ID
}

func (p Packet) allNeighbors() []router6.ID {
	var out []router6.ID
	out = append(out, p.Lost...)
	out = append(out, p.Init...)
	out = append(out, p.Dependent...)
	out = append(out, p.SelAdv...)
	out = append(out, p.OtherBidir...)
	return out
}

// encodeBody serializes the fixed Hello header followed by the flattened
// neighbor-id list; the MDR per-category counts (n1..n4) needed to
// split that flat list back apart on decode travel in the paired
// MDRHelloTLV, so callers must encode both together (see EncodePacket).
func (p Packet) encodeBody() []byte {
	out := make([]byte, 20)
	putU32(out[0:4], p.InterfaceID)
	out[4] = p.RtrPriority
	out[5] = byte(p.Options >> 16)
	out[6] = byte(p.Options >> 8)
	out[7] = byte(p.Options)
	out[8] = byte(p.HelloInterval >> 8)
	out[9] = byte(p.HelloInterval)
	out[10] = byte(p.RouterDead >> 8)
	out[11] = byte(p.RouterDead)
	putU32(out[12:16], uint32(p.DR))
	putU32(out[16:20], uint32(p.BDR))

	for _, id := range p.allNeighbors() {
		var idBuf [4]byte
		putU32(idBuf[:], uint32(id))
		out = append(out, idBuf[:]...)
	}
	return out
}

// EncodePacket builds the Hello body plus its LLS block (carrying the
// MDR Hello TLV) as a pair, since the neighbor counts in the TLV must
// match how the flat neighbor-id list in the body is segmented.
func EncodePacket(p Packet, hsn uint16, diffHello, noAdjReduce bool, mode TLVMode) (body []byte, lls Block) {
	tlv := EncodeMDRHelloTLV(MDRHelloTLV{
		HSN:         hsn,
		DiffHello:   diffHello,
		NoAdjReduce: noAdjReduce,
		N1:          uint8(len(p.Lost)),
		N2:          uint8(len(p.Init)),
		N3:          uint8(len(p.Dependent)),
		N4:          uint8(len(p.SelAdv)),
	})
	tlv.Type = mode.helloType()
	return p.encodeBody(), Block{TLVs: []TLV{tlv}}
}

// DecodePacket parses a Hello body given the MDR Hello TLV already
// extracted from its paired LLS block (the counts there are required to
// split the flat neighbor-id list back into its five categories).
func DecodePacket(body []byte, tlv MDRHelloTLV) (Packet, error) {
	if len(body) < 20 {
		return Packet{}, fmt.Errorf("hello: packet body too short (%d bytes)", len(body))
	}
	p := Packet{
		InterfaceID:   getU32(body[0:4]),
		RtrPriority:   body[4],
		Options:       uint32(body[5])<<16 | uint32(body[6])<<8 | uint32(body[7]),
		HelloInterval: uint16(body[8])<<8 | uint16(body[9]),
		RouterDead:    uint16(body[10])<<8 | uint16(body[11]),
		DR:            router6.ID(getU32(body[12:16])),
		BDR:           router6.ID(getU32(body[16:20])),
	}

	rest := body[20:]
	total := int(tlv.N1) + int(tlv.N2) + int(tlv.N3) + int(tlv.N4)
	if len(rest) < total*4 {
		return Packet{}, fmt.Errorf("hello: neighbor list truncated: need %d ids, have %d bytes", total, len(rest))
	}
	readIDs := func(n uint8) []router6.ID {
		ids := make([]router6.ID, n)
		for i := range ids {
			ids[i] = router6.ID(getU32(rest[:4]))
			rest = rest[4:]
		}
		return ids
	}
	p.Lost = readIDs(tlv.N1)
	p.Init = readIDs(tlv.N2)
	p.Dependent = readIDs(tlv.N3)
	p.SelAdv = readIDs(tlv.N4)
	// Other-bidirectional neighbors (list 5) carry no count of their own:
	// they are every router-id left in the body after the four counted lists.
	for len(rest) >= 4 {
		p.OtherBidir = append(p.OtherBidir, router6.ID(getU32(rest[:4])))
		rest = rest[4:]
	}
	return p, nil
}
