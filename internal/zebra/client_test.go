package zebra

import (
	"io"
	"log/slog"
	"net"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLinkMetricsRoundTrip(t *testing.T) {
	orig := LinkMetrics{
		IfIndex:       3,
		LinkLocalAddr: net.ParseIP("fe80::1"),
		Metrics: RFC4938Metrics{
			RLQ: 90, Resource: 80, Latency: 20, CurrentDatarate: 1000, MaxDatarate: 2000,
		},
	}
	body := encodeLinkMetrics(orig)
	got, err := decodeLinkMetrics(body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.IfIndex != orig.IfIndex || !got.LinkLocalAddr.Equal(orig.LinkLocalAddr) || got.Metrics != orig.Metrics {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, orig)
	}
}

func TestLinkStatusRoundTrip(t *testing.T) {
	orig := LinkStatusMsg{IfIndex: 4, LinkLocalAddr: net.ParseIP("fe80::2"), Status: LinkStatusUp}
	body := encodeLinkStatus(orig)
	got, err := decodeLinkStatus(body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.IfIndex != orig.IfIndex || !got.LinkLocalAddr.Equal(orig.LinkLocalAddr) || got.Status != orig.Status {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, orig)
	}
}

func TestDecodeLinkMetricsRejectsBadLength(t *testing.T) {
	if _, err := decodeLinkMetrics([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for truncated body")
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	buf := make([]byte, headerSize+5)
	putHeader(buf, CommandLinkMetrics, 5)
	cmd, bodyLen, ok := parseHeader(buf)
	if !ok || cmd != CommandLinkMetrics || bodyLen != 5 {
		t.Fatalf("header round trip failed: cmd=%v bodyLen=%d ok=%v", cmd, bodyLen, ok)
	}
}

func TestClientDispatchesLinkMetrics(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()

	c := &Client{conn: client, dead: make(chan struct{}), logger: discardLogger()}
	received := make(chan LinkMetrics, 1)
	c.OnLinkMetrics(func(m LinkMetrics) { received <- m })

	go c.readLoop()

	m := LinkMetrics{IfIndex: 1, LinkLocalAddr: net.ParseIP("fe80::9"), Metrics: RFC4938Metrics{RLQ: 50}}
	body := encodeLinkMetrics(m)
	frame := make([]byte, headerSize+len(body))
	putHeader(frame, CommandLinkMetrics, len(body))
	copy(frame[headerSize:], body)
	go server.Write(frame)

	select {
	case got := <-received:
		if got.IfIndex != m.IfIndex {
			t.Fatalf("expected ifindex %d, got %d", m.IfIndex, got.IfIndex)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for dispatched linkmetrics")
	}
	close(c.dead)
}
