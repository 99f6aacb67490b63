//go:build !linux

package kif

import (
	"fmt"
	"net"

	"github.com/vishvananda/netlink"
)

// DiscoverNetlink enumerates kernel interfaces the way Discover does, but
// through a single RTM_GETLINK/RTM_GETADDR netlink dump instead of the
// net package's per-interface Addrs() round trips -- the richer view
// needed to tell a deleted-and-recreated interface with a reused name
// apart from the one ospf6d already knows, since net.Interfaces only
// exposes the name/index pair current at call time.
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
		for _, addr := range addrs {
			ip := addr.IP
			rec.Addrs = append(rec.Addrs, ip)
			switch {
			case ip.IsLinkLocalUnicast():
				if rec.LinkLocalIPv6 == nil {
					rec.LinkLocalIPv6 = ip
				}
			case !ip.IsLoopback():
				rec.ConnectedIPv6 = append(rec.ConnectedIPv6, ip)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
