package kif

import (
	"net"
	"testing"
)

func TestDiscoverFromListsInterfaces(t *testing.T) {
	listFn := func() ([]net.Interface, error) {
		return []net.Interface{
			{Index: 2, Name: "eth0", MTU: 1500, Flags: net.FlagUp},
		}, nil
	}
	// net.Interface.Addrs() is backed by the OS and cannot be stubbed here,
	// so this test checks only the interface fields discoverFrom copies
	// from listFn.
	records, err := discoverFrom(listFn)
	if err != nil {
		t.Fatalf("discoverFrom: %v", err)
	}
	if len(records) != 1 || records[0].Name != "eth0" {
		t.Fatalf("got %+v", records)
	}
}

func TestHasLinkLocal(t *testing.T) {
	withLL := Record{LinkLocalIPv6: net.ParseIP("fe80::1")}
	withoutLL := Record{}
	if !withLL.HasLinkLocal() {
		t.Error("expected HasLinkLocal true")
	}
	if withoutLL.HasLinkLocal() {
		t.Error("expected HasLinkLocal false")
	}
}

func TestDiscoverErrorPropagation(t *testing.T) {
	listFn := func() ([]net.Interface, error) {
		return nil, net.UnknownNetworkError("boom")
	}
	if _, err := discoverFrom(listFn); err == nil {
		t.Fatal("expected error")
	}
}
