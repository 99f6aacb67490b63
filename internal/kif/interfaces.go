// Package kif discovers the kernel interface records referenced by
// spec.md §3 ("Interface... owns: an intrusive reference to the kernel
// interface record (index, MTU, flags, connected addresses)"). Kernel
// interface discovery itself is an external collaborator per spec.md §1;
// this package is the narrow read-only boundary ospf6d uses to reach it,
// the way pkg/p2pnet/interfaces.go's DiscoverInterfaces is peerup's
// boundary onto net.Interfaces. Unlike the teacher (which discards
// link-local addresses as not globally routable), OSPFv3 runs entirely
// over link-local addresses, so Record keeps them front and center.
package kif

import (
	"fmt"
	"net"
	"sort"
)

// Record describes one kernel network interface: its stable index, MTU,
// up/loopback flags, and every address configured on it. Spec.md §3
// requires a link-local IPv6 address before an interface may rise above
// Waiting (unless Loopback or passive); LinkLocalIPv6 surfaces that
// directly instead of making every caller re-scan Addrs.
type Record struct {
	Name          string
	Index         int
	MTU           int
	Up            bool
	Loopback      bool
	Addrs         []net.IP
	LinkLocalIPv6 net.IP // nil if none configured
	ConnectedIPv6 []net.IP
}

// Discover enumerates all kernel interfaces via net.Interfaces, the
// platform-portable path. Callers that need authoritative ifindex/address
// data beyond what net.Interfaces offers (e.g. distinguishing a deleted
// and recreated interface with a reused name) should prefer DiscoverNetlink
// on Linux.
func Discover() ([]Record, error) {
	return discoverFrom(net.Interfaces)
}

func discoverFrom(listFn func() ([]net.Interface, error)) ([]Record, error) {
	ifaces, err := listFn()
	if err != nil {
		return nil, fmt.Errorf("kif: enumerate interfaces: %w", err)
	}

	var records []Record
	for _, iface := range ifaces {
		rec := Record{
			Name:     iface.Name,
			Index:    iface.Index,
			MTU:      iface.MTU,
			Up:       iface.Flags&net.FlagUp != 0,
			Loopback: iface.Flags&net.FlagLoopback != 0,
		}

		addrs, err := iface.Addrs()
		if err != nil {
			records = append(records, rec)
			continue
		}
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			ip := ipNet.IP
			rec.Addrs = append(rec.Addrs, ip)
			if ip.To4() == nil && ip.IsLinkLocalUnicast() {
				if rec.LinkLocalIPv6 == nil {
					rec.LinkLocalIPv6 = ip
				}
			}
			if ip.To4() == nil && !ip.IsLinkLocalUnicast() && !ip.IsLoopback() {
				rec.ConnectedIPv6 = append(rec.ConnectedIPv6, ip)
			}
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Index < records[j].Index })
	return records, nil
}

// HasLinkLocal reports whether r carries a usable link-local IPv6 address,
// the gate spec.md §3 requires before an interface may rise above Waiting.
func (r Record) HasLinkLocal() bool {
	return r.LinkLocalIPv6 != nil
}
