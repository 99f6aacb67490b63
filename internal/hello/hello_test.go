package hello

import (
	"reflect"
	"testing"

	"github.com/ospf6mdr/ospf6d/internal/router6"
)

func TestTLVRoundTrip(t *testing.T) {
	tlv := TLV{Type: 7, Value: []byte{1, 2, 3}}
	encoded := EncodeTLV(tlv)
	if len(encoded)%4 != 0 {
		t.Fatalf("expected TLV to be padded to a 4-byte boundary, got %d bytes", len(encoded))
	}
	decoded, err := DecodeTLVs(encoded)
	if err != nil {
		t.Fatalf("DecodeTLVs: %v", err)
	}
	if len(decoded) != 1 || decoded[0].Type != 7 || !reflect.DeepEqual(decoded[0].Value, tlv.Value) {
		t.Fatalf("round trip mismatch: %+v", decoded)
	}
}

func TestBlockRoundTrip(t *testing.T) {
	b := Block{
		Checksum: 0xABCD,
		TLVs: []TLV{
			{Type: TLVTypeOptions, Value: []byte{0, 0, 0, 1}},
			EncodeMDRHelloTLV(MDRHelloTLV{HSN: 42, DiffHello: true, N1: 1, N2: 2}),
		},
	}
	b.TLVs[1].Type = mdrTLVTypeHelloRFC

	encoded := b.Encode()
	decoded, err := DecodeBlock(encoded)
	if err != nil {
		t.Fatalf("DecodeBlock: %v", err)
	}
	if decoded.Checksum != b.Checksum {
		t.Fatalf("checksum mismatch: got %x want %x", decoded.Checksum, b.Checksum)
	}
	if len(decoded.TLVs) != 2 {
		t.Fatalf("expected 2 TLVs, got %d", len(decoded.TLVs))
	}

	hello, found, err := FindMDRHelloTLV(decoded, TLVModeRFC)
	if err != nil || !found {
		t.Fatalf("expected to find MDR hello TLV, found=%v err=%v", found, err)
	}
	if hello.HSN != 42 || !hello.DiffHello || hello.N1 != 1 || hello.N2 != 2 {
		t.Fatalf("decoded MDR hello TLV mismatch: %+v", hello)
	}
}

func TestMDRDDTLVRoundTrip(t *testing.T) {
	tlv := EncodeMDRDDTLV(MDRDDTLV{DRouter: 10, BDRouter: 20})
	decoded, err := DecodeMDRDDTLV(tlv.Value)
	if err != nil {
		t.Fatalf("DecodeMDRDDTLV: %v", err)
	}
	if decoded.DRouter != 10 || decoded.BDRouter != 20 {
		t.Fatalf("mismatch: %+v", decoded)
	}
}

func TestPacketRoundTrip(t *testing.T) {
	p := Packet{
		InterfaceID:   5,
		RtrPriority:   1,
		HelloInterval: 2,
		RouterDead:    6,
		DR:            router6.ID(100),
		BDR:           router6.ID(200),
		Lost:          []router6.ID{1},
		Init:          []router6.ID{2, 3},
		Dependent:     []router6.ID{4},
		SelAdv:        []router6.ID{5},
		OtherBidir:    []router6.ID{6, 7},
	}
	body, lls := EncodePacket(p, 99, true, false, TLVModeRFC)
	helloTLV, found, err := FindMDRHelloTLV(lls, TLVModeRFC)
	if err != nil || !found {
		t.Fatalf("expected MDR hello TLV, found=%v err=%v", found, err)
	}
	decoded, err := DecodePacket(body, helloTLV)
	if err != nil {
		t.Fatalf("DecodePacket: %v", err)
	}
	if decoded.InterfaceID != p.InterfaceID || decoded.DR != p.DR || decoded.BDR != p.BDR {
		t.Fatalf("header mismatch: %+v", decoded)
	}
	if !reflect.DeepEqual(decoded.Lost, p.Lost) || !reflect.DeepEqual(decoded.Init, p.Init) {
		t.Fatalf("neighbor list mismatch: got lost=%v init=%v", decoded.Lost, decoded.Init)
	}
	if !reflect.DeepEqual(decoded.SelAdv, p.SelAdv) || !reflect.DeepEqual(decoded.OtherBidir, p.OtherBidir) {
		t.Fatalf("neighbor list mismatch: got sel-adv=%v other-bidir=%v", decoded.SelAdv, decoded.OtherBidir)
	}
}

func TestDDBodyRoundTrip(t *testing.T) {
	p := DDPacket{
		IfMTU:   1500,
		Options: 0x000013,
		Bits:    ddBitMS | ddBitI,
		SeqNum:  0x1234,
		Headers: []DDHeaderRef{
			{LSType: 1, LinkState: 0, AdvRouter: router6.ID(9), SeqNum: 1},
		},
	}
	encoded := EncodeDDBody(p)
	decoded, err := DecodeDDBody(encoded)
	if err != nil {
		t.Fatalf("DecodeDDBody: %v", err)
	}
	if !decoded.MasterSlave() || !decoded.Init() || decoded.More() {
		t.Fatalf("bit flags mismatch: %+v", decoded)
	}
	if decoded.SeqNum != p.SeqNum || len(decoded.Headers) != 1 {
		t.Fatalf("mismatch: %+v", decoded)
	}
	if decoded.Headers[0].AdvRouter != router6.ID(9) {
		t.Fatalf("header ref mismatch: %+v", decoded.Headers[0])
	}
}

func TestDecodeTLVsRejectsTruncated(t *testing.T) {
	if _, err := DecodeTLVs([]byte{0, 1, 0}); err == nil {
		t.Fatal("expected error for truncated TLV header")
	}
}

func TestTLVModeSelectsLegacyTypes(t *testing.T) {
	if TLVModeLegacy.helloType() != mdrTLVTypeHelloDraft {
		t.Fatal("expected legacy mode to use the draft hello TLV type")
	}
	if TLVModeRFC.ddType() != mdrTLVTypeDDRFC {
		t.Fatal("expected RFC mode to use the RFC-assigned DD TLV type")
	}
}
