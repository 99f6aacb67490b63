//go:build linux

package kif

import (
	"fmt"
	"net"

	"github.com/vishvananda/netlink"
)

// DiscoverNetlink enumerates interfaces via a Linux RTNETLINK (AF_NETLINK)
// socket instead of net.Interfaces, giving ospf6d the authoritative kernel
// view of ifindex stability and address scope that spec.md §3's "intrusive
// reference to the kernel interface record" describes. vishvananda/netlink
// is the library the retrieval pack's gvisor tree also depends on (there,
// for sandboxed network-namespace setup); here it is used read-only.
func DiscoverNetlink() ([]Record, error) {
	links, err := netlink.LinkList()
	if err != nil {
		return nil, fmt.Errorf("kif: netlink link list: %w", err)
	}

	var records []Record
	for _, link := range links {
		attrs := link.Attrs()
		rec := Record{
			Name:     attrs.Name,
			Index:    attrs.Index,
			MTU:      attrs.MTU,
			Up:       attrs.Flags&net.FlagUp != 0,
			Loopback: attrs.Flags&net.FlagLoopback != 0,
		}

		addrs, err := netlink.AddrList(link, netlink.FAMILY_V6)
		if err != nil {
			records = append(records, rec)
			continue
		}
		for _, a := range addrs {
			ip := a.IP
			rec.Addrs = append(rec.Addrs, ip)
			if ip.IsLinkLocalUnicast() && rec.LinkLocalIPv6 == nil {
				rec.LinkLocalIPv6 = ip
			} else if !ip.IsLinkLocalUnicast() && !ip.IsLoopback() {
				rec.ConnectedIPv6 = append(rec.ConnectedIPv6, ip)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
