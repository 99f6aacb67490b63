package hello

import (
	"fmt"

	"github.com/ospf6mdr/ospf6d/internal/router6"
)

// TLVMode selects RFC-registered TLV type codes versus the pre-RFC draft
// codes, resolving spec.md §4.C Open Question (a): whether the MDR TLV
// type defaults to the RFC-5614-assigned values or the NRL
// implementation's draft values for interop with deployed routers. See
// DESIGN.md for the decision (defaults to RFC mode; config
// MDRTLVInterop: legacy switches it, matching
// ospf6_mdr_tlv_set_interoperability's boolean toggle).
type TLVMode int

const (
	TLVModeRFC TLVMode = iota
	TLVModeLegacy
)

func (m TLVMode) helloType() uint16 {
	if m == TLVModeLegacy {
		return mdrTLVTypeHelloDraft
	}
	return mdrTLVTypeHelloRFC
}

func (m TLVMode) ddType() uint16 {
	if m == TLVModeLegacy {
		return mdrTLVTypeDDDraft
	}
	return mdrTLVTypeDDRFC
}

// MDRHelloTLV is the fixed-size body of the MDR Hello TLV
// (ospf6_mdr_message.h struct ospf6_mdr_hello_tlv): a Hello sequence
// number, the diff-Hello/no-adjacency-reduction option bits, and four
// neighbor-list counts (n1..n4) whose corresponding router-id lists
// follow elsewhere in the Hello packet body (spec.md §4.C "send": the
// lost/init/dependent/sel-adv neighbor lists; the other-bidirectional
// list is whatever follows them).
type MDRHelloTLV struct {
	HSN          uint16
	DiffHello    bool
	NoAdjReduce  bool
	N1, N2, N3, N4 uint8
}

// EncodeMDRHelloTLV serializes the fixed 8-byte MDR Hello TLV body.
func EncodeMDRHelloTLV(t MDRHelloTLV) TLV {
	var bits uint8
	if t.DiffHello {
		bits |= optBitDiffHello
	}
	if t.NoAdjReduce {
		bits |= optBitNoAdjReduce
	}
	val := []byte{
		byte(t.HSN >> 8), byte(t.HSN),
		bits, 0, // bits[2] in the C struct; only the low byte is used
		t.N1, t.N2, t.N3, t.N4,
	}
	return TLV{Value: val}
}

// DecodeMDRHelloTLV parses the fixed MDR Hello TLV body.
func DecodeMDRHelloTLV(value []byte) (MDRHelloTLV, error) {
	if len(value) < 8 {
		return MDRHelloTLV{}, fmt.Errorf("hello: MDR hello TLV too short (%d bytes)", len(value))
	}
	hsn := uint16(value[0])<<8 | uint16(value[1])
	bits := value[2]
	return MDRHelloTLV{
		HSN:         hsn,
		DiffHello:   bits&optBitDiffHello != 0,
		NoAdjReduce: bits&optBitNoAdjReduce != 0,
		N1:          value[4],
		N2:          value[5],
		N3:          value[6],
		N4:          value[7],
	}, nil
}

// MDRDDTLV carries the DR/BDR router-ids in a Database Description
// packet's LLS block (ospf6_mdr_message.h struct ospf6_mdr_dd_tlv).
type MDRDDTLV struct {
	DRouter  router6.ID
	BDRouter router6.ID
}

// EncodeMDRDDTLV serializes the fixed 8-byte MDR DD TLV body.
func EncodeMDRDDTLV(t MDRDDTLV) TLV {
	val := make([]byte, 8)
	putU32(val[0:4], uint32(t.DRouter))
	putU32(val[4:8], uint32(t.BDRouter))
	return TLV{Value: val}
}

// DecodeMDRDDTLV parses the fixed MDR DD TLV body.
func DecodeMDRDDTLV(value []byte) (MDRDDTLV, error) {
	if len(value) < 8 {
		return MDRDDTLV{}, fmt.Errorf("hello: MDR DD TLV too short (%d bytes)", len(value))
	}
	return MDRDDTLV{
		DRouter:  router6.ID(getU32(value[0:4])),
		BDRouter: router6.ID(getU32(value[4:8])),
	}, nil
}

func putU32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}

func getU32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// FindMDRHelloTLV locates and decodes the MDR Hello TLV within an LLS
// block's TLV set. mode selects which type code EncodeMDRHelloTLV's
// caller should emit, but ingress accepts either codepoint
// unconditionally (spec.md §9 Open Question (a): "both codepoints
// [must be] accepted on ingress, but the egress mode is
// operator-selected"), since a neighbor running the other interop mode
// must still be decodable.
func FindMDRHelloTLV(block Block, mode TLVMode) (MDRHelloTLV, bool, error) {
	for _, t := range block.TLVs {
		if t.Type == mdrTLVTypeHelloRFC || t.Type == mdrTLVTypeHelloDraft {
			parsed, err := DecodeMDRHelloTLV(t.Value)
			return parsed, true, err
		}
	}
	return MDRHelloTLV{}, false, nil
}

// FindMDRDDTLV locates and decodes the MDR DD TLV within an LLS block.
// As with FindMDRHelloTLV, both the RFC and legacy/draft type codes are
// accepted on ingress regardless of the locally configured mode.
func FindMDRDDTLV(block Block, mode TLVMode) (MDRDDTLV, bool, error) {
	for _, t := range block.TLVs {
		if t.Type == mdrTLVTypeDDRFC || t.Type == mdrTLVTypeDDDraft {
			parsed, err := DecodeMDRDDTLV(t.Value)
			return parsed, true, err
		}
	}
	return MDRDDTLV{}, false, nil
}
