package zebra

import (
	"fmt"
	"net"
)

// LinkStatus is the LM_STATUS_* value carried in a LinkStatus message.
type LinkStatus uint32

const (
	LinkStatusDown LinkStatus = iota
	LinkStatusUp
)

func (s LinkStatus) String() string {
	if s == LinkStatusUp {
		return "UP"
	}
	return "DOWN"
}

// RFC4938Metrics mirrors original_source/lib/zebra_linkmetrics.h's
// struct zebra_rfc4938_linkmetrics.
type RFC4938Metrics struct {
	RLQ             uint8
	Resource        uint8
	Latency         uint16
	CurrentDatarate uint16
	MaxDatarate     uint16
}

// LinkMetrics mirrors zebra_linkmetrics_t: one interface/peer's sampled
// link-quality tuple, as zebra forwards it on to ospf6d.
type LinkMetrics struct {
	IfIndex       uint32
	LinkLocalAddr net.IP // 16-byte IPv6 link-local
	Metrics       RFC4938Metrics
}

// LinkStatusMsg mirrors zebra_linkstatus_t.
type LinkStatusMsg struct {
	IfIndex       uint32
	LinkLocalAddr net.IP
	Status        LinkStatus
}

// LinkMetricsRequest mirrors zebra_linkmetrics_rqst_t: a poll for one
// peer's current metrics, used when a neighbor first reaches ExStart and
// no sample has arrived yet.
type LinkMetricsRequest struct {
	IfIndex       uint32
	LinkLocalAddr net.IP
}

const linkLocalAddrLen = 16

// encodeLinkMetrics ports zapi_write_linkmetrics's field order: ifindex,
// 16-byte link-local address, rlq, resource, latency, current_datarate,
// max_datarate.
func encodeLinkMetrics(m LinkMetrics) []byte {
	body := make([]byte, 4+linkLocalAddrLen+1+1+2+2+2)
	putU32(body[0:4], m.IfIndex)
	copy(body[4:4+linkLocalAddrLen], to16(m.LinkLocalAddr))
	off := 4 + linkLocalAddrLen
	body[off] = m.Metrics.RLQ
	body[off+1] = m.Metrics.Resource
	putU16(body[off+2:off+4], m.Metrics.Latency)
	putU16(body[off+4:off+6], m.Metrics.CurrentDatarate)
	putU16(body[off+6:off+8], m.Metrics.MaxDatarate)
	return body
}

func decodeLinkMetrics(body []byte) (LinkMetrics, error) {
	const want = 4 + linkLocalAddrLen + 1 + 1 + 2 + 2 + 2
	if len(body) != want {
		return LinkMetrics{}, fmt.Errorf("zebra: linkmetrics body length %d, want %d", len(body), want)
	}
	off := 4 + linkLocalAddrLen
	return LinkMetrics{
		IfIndex:       getU32(body[0:4]),
		LinkLocalAddr: append(net.IP(nil), body[4:off]...),
		Metrics: RFC4938Metrics{
			RLQ:             body[off],
			Resource:        body[off+1],
			Latency:         getU16(body[off+2 : off+4]),
			CurrentDatarate: getU16(body[off+4 : off+6]),
			MaxDatarate:     getU16(body[off+6 : off+8]),
		},
	}, nil
}

// encodeLinkStatus ports zapi_write_linkstatus's field order: ifindex,
// 16-byte link-local address, status.
func encodeLinkStatus(m LinkStatusMsg) []byte {
	body := make([]byte, 4+linkLocalAddrLen+4)
	putU32(body[0:4], m.IfIndex)
	copy(body[4:4+linkLocalAddrLen], to16(m.LinkLocalAddr))
	putU32(body[4+linkLocalAddrLen:], uint32(m.Status))
	return body
}

func decodeLinkStatus(body []byte) (LinkStatusMsg, error) {
	const want = 4 + linkLocalAddrLen + 4
	if len(body) != want {
		return LinkStatusMsg{}, fmt.Errorf("zebra: linkstatus body length %d, want %d", len(body), want)
	}
	return LinkStatusMsg{
		IfIndex:       getU32(body[0:4]),
		LinkLocalAddr: append(net.IP(nil), body[4:4+linkLocalAddrLen]...),
		Status:        LinkStatus(getU32(body[4+linkLocalAddrLen:])),
	}, nil
}

func encodeLinkMetricsRequest(m LinkMetricsRequest) []byte {
	body := make([]byte, 4+linkLocalAddrLen)
	putU32(body[0:4], m.IfIndex)
	copy(body[4:], to16(m.LinkLocalAddr))
	return body
}

func decodeLinkMetricsRequest(body []byte) (LinkMetricsRequest, error) {
	const want = 4 + linkLocalAddrLen
	if len(body) != want {
		return LinkMetricsRequest{}, fmt.Errorf("zebra: linkmetrics request body length %d, want %d", len(body), want)
	}
	return LinkMetricsRequest{
		IfIndex:       getU32(body[0:4]),
		LinkLocalAddr: append(net.IP(nil), body[4:]...),
	}, nil
}

func to16(ip net.IP) net.IP {
	if v6 := ip.To16(); v6 != nil {
		return v6
	}
	return make(net.IP, linkLocalAddrLen)
}

func putU16(b []byte, v uint16) { b[0] = byte(v >> 8); b[1] = byte(v) }
func getU16(b []byte) uint16    { return uint16(b[0])<<8 | uint16(b[1]) }
