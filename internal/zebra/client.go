package zebra

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"
)

// maxReconnectBackoff caps the truncated binary backoff spec.md §4.G
// requires ("schedules a retry with truncated binary backoff"), the same
// doubling-with-ceiling shape jkmar-gobgp.1.27/server/zclient.go's
// reconnect() uses, generalized from its fixed interval to an actual
// binary-exponential sequence.
const (
	reconnectBaseDelay  = 250 * time.Millisecond
	maxReconnectBackoff = 30 * time.Second
)

// sockBufBytes sizes the kernel receive buffer on the zebra socket,
// grounded on pkg/p2pnet/proxy.go's use of golang.org/x/sys/unix socket
// options on a raw connection: link-metrics and route-update frames arrive
// in bursts during initial sync, and the default buffer is sized for
// interactive traffic, not a batch of LSA-triggered route installs.
const sockBufBytes = 1 << 20

// setSockBuf applies sockBufBytes to conn's underlying fd when conn
// exposes a syscall.Conn (true for *net.UnixConn and *net.TCPConn, the
// two network kinds Dial is used with in practice). Failure is logged and
// otherwise ignored -- the socket still works with the OS default buffer.
func setSockBuf(conn net.Conn, logger *slog.Logger) {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return
	}
	var sockErr error
	err = raw.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF, sockBufBytes)
	})
	if err != nil || sockErr != nil {
		logger.Debug("zebra: set SO_RCVBUF failed", "error", errOrErr(err, sockErr))
	}
}

func errOrErr(a, b error) error {
	if a != nil {
		return a
	}
	return b
}

// routeTypeOSPF6 tags the IPv6 unicast routes this client adds and
// withdraws, the non-link-metrics half of what a routing daemon's zebra
// client needs (spec.md §4.G).
const (
	routeTypeOSPF6 = 0xa // matches zebra's conventional ZEBRA_ROUTE_OSPF6 slot
)

// Route is one IPv6 route to push into, or withdraw from, the kernel FIB.
type Route struct {
	Prefix   net.IPNet
	Nexthops []net.IP
	IfIndex  uint32
	Metric   uint32
}

func encodeRoute(r Route, withdraw bool) []byte {
	ones, _ := r.Prefix.Mask.Size()
	body := make([]byte, 0, 32+len(r.Nexthops)*16)
	body = append(body, routeTypeOSPF6)
	if withdraw {
		body = append(body, 1)
	} else {
		body = append(body, 0)
	}
	body = append(body, byte(ones))
	body = append(body, to16(r.Prefix.IP)...)
	var nhCount [4]byte
	binary.BigEndian.PutUint32(nhCount[:], uint32(len(r.Nexthops)))
	body = append(body, nhCount[:]...)
	for _, nh := range r.Nexthops {
		body = append(body, to16(nh)...)
	}
	var ifi [4]byte
	binary.BigEndian.PutUint32(ifi[:], r.IfIndex)
	body = append(body, ifi[:]...)
	var metric [4]byte
	binary.BigEndian.PutUint32(metric[:], r.Metric)
	body = append(body, metric[:]...)
	return body
}

// LinkMetricsHandler receives decoded LinkMetrics samples read off the
// connection, dispatched onto internal/linkmetrics.UpdateFromSample by the
// daemon wiring.
type LinkMetricsHandler func(LinkMetrics)

// LinkStatusHandler receives decoded LinkStatus events.
type LinkStatusHandler func(LinkStatusMsg)

// Client is a zebra ZAPI connection, grounded on
// jkmar-gobgp.1.27/server/zclient.go's zebraClient: a background
// goroutine owns the socket, frames are length-prefixed, and a dead
// channel drives clean shutdown with automatic reconnect on disconnect.
type Client struct {
	network string
	address string
	logger  *slog.Logger

	conn net.Conn
	dead chan struct{}

	reconnectMin time.Duration
	reconnectMax time.Duration

	onLinkMetrics LinkMetricsHandler
	onLinkStatus  LinkStatusHandler

	reqMu    sync.Mutex
	pending  map[string]uuid.UUID // "ifindex|link-local" -> correlation token, for logging only
}

// Option configures a Client at Dial time.
type Option func(*Client)

// WithReconnectBackoff overrides the truncated binary backoff bounds
// (spec.md §4.G), sourced from config.ZebraConfig's reconnect_min/
// reconnect_max fields; Dial falls back to reconnectBaseDelay/
// maxReconnectBackoff when not given.
func WithReconnectBackoff(min, max time.Duration) Option {
	return func(c *Client) {
		if min > 0 {
			c.reconnectMin = min
		}
		if max > 0 {
			c.reconnectMax = max
		}
	}
}

// Dial opens the zebra socket (conventionally a unix socket at
// /var/run/zserv.api, but any net.Dial network/address pair works for
// tests) and sends the subscribe handshake.
func Dial(network, address string, logger *slog.Logger, opts ...Option) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := net.Dial(network, address)
	if err != nil {
		return nil, fmt.Errorf("zebra: dial %s %s: %w", network, address, err)
	}
	setSockBuf(conn, logger)
	c := &Client{
		network:      network,
		address:      address,
		logger:       logger,
		conn:         conn,
		dead:         make(chan struct{}),
		pending:      make(map[string]uuid.UUID),
		reconnectMin: reconnectBaseDelay,
		reconnectMax: maxReconnectBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.send(CommandLinkMetricsSubscribe, nil); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

// OnLinkMetrics registers the callback invoked for each decoded
// LinkMetrics message.
func (c *Client) OnLinkMetrics(h LinkMetricsHandler) { c.onLinkMetrics = h }

// OnLinkStatus registers the callback invoked for each decoded
// LinkStatusMsg.
func (c *Client) OnLinkStatus(h LinkStatusHandler) { c.onLinkStatus = h }

// Close tears down the connection and stops the receive loop.
func (c *Client) Close() error {
	close(c.dead)
	return c.conn.Close()
}

func (c *Client) send(cmd Command, body []byte) error {
	frame := make([]byte, headerSize+len(body))
	putHeader(frame, cmd, len(body))
	copy(frame[headerSize:], body)
	_, err := c.conn.Write(frame)
	return err
}

// SendLinkMetricsRequest polls zebra for a peer's current metrics, used
// when a neighbor reaches ExStart with no sample seen yet (spec.md §4.F).
// The request carries no wire-level token -- zebra's ZAPI frame format is
// fixed -- but the client mints one locally to pair the request's log
// line with whichever future LinkMetrics frame answers it, since several
// requests for different peers can be in flight on the same socket at once.
func (c *Client) SendLinkMetricsRequest(req LinkMetricsRequest) error {
	token := uuid.New()
	key := pendingKey(req.IfIndex, req.LinkLocalAddr)
	c.reqMu.Lock()
	c.pending[key] = token
	c.reqMu.Unlock()

	c.logger.Debug("zebra: requesting link metrics", "ifindex", req.IfIndex,
		"peer", req.LinkLocalAddr.String(), "token", token.String())
	return c.send(CommandLinkMetricsRequest, encodeLinkMetricsRequest(req))
}

func pendingKey(ifIndex uint32, addr net.IP) string {
	return fmt.Sprintf("%d|%s", ifIndex, addr.String())
}

// SendRouteAdd pushes one SPF-computed route into the kernel FIB via
// zebra.
func (c *Client) SendRouteAdd(r Route) error {
	return c.send(CommandIPv6RouteAdd, encodeRoute(r, false))
}

// SendRouteDelete withdraws a previously installed route.
func (c *Client) SendRouteDelete(r Route) error {
	return c.send(CommandIPv6RouteDelete, encodeRoute(r, true))
}

// Run drives the receive loop until Close is called, reconnecting after a
// failure -- the same pattern jkmar-gobgp.1.27/server/zclient.go's
// reconnect() uses. The delay starts at reconnectMin, doubles after each
// failed dial up to reconnectMax, and resets once a dial succeeds; only
// the link-metrics subscription is replayed, since this daemon has no
// per-protocol redistribute list.
func (c *Client) Run() {
	backoff := c.reconnectMin
	for {
		err := c.readLoop()
		select {
		case <-c.dead:
			return
		default:
		}
		c.logger.Warn("zebra: connection lost, reconnecting", "error", err, "delay", backoff)
		time.Sleep(backoff)
		conn, dialErr := net.Dial(c.network, c.address)
		if dialErr != nil {
			c.logger.Error("zebra: reconnect failed", "error", dialErr)
			backoff *= 2
			if backoff > c.reconnectMax {
				backoff = c.reconnectMax
			}
			continue
		}
		setSockBuf(conn, c.logger)
		c.conn = conn
		// Reconnected: re-announce every currently-subscribed category
		// (spec.md §4.G), which today is just link metrics.
		if err := c.send(CommandLinkMetricsSubscribe, nil); err != nil {
			c.logger.Error("zebra: resubscribe failed", "error", err)
		}
		backoff = c.reconnectMin
	}
}

func (c *Client) readLoop() error {
	header := make([]byte, headerSize)
	for {
		if _, err := readFull(c.conn, header); err != nil {
			return err
		}
		cmd, bodyLen, ok := parseHeader(header)
		if !ok {
			return fmt.Errorf("zebra: malformed frame header")
		}
		body := make([]byte, bodyLen)
		if bodyLen > 0 {
			if _, err := readFull(c.conn, body); err != nil {
				return err
			}
		}
		c.dispatch(cmd, body)
	}
}

func (c *Client) dispatch(cmd Command, body []byte) {
	switch cmd {
	case CommandLinkMetrics:
		m, err := decodeLinkMetrics(body)
		if err != nil {
			c.logger.Error("zebra: decode linkmetrics", "error", err)
			return
		}
		key := pendingKey(m.IfIndex, m.LinkLocalAddr)
		c.reqMu.Lock()
		token, requested := c.pending[key]
		delete(c.pending, key)
		c.reqMu.Unlock()
		if requested {
			c.logger.Debug("zebra: link metrics answers pending request",
				"ifindex", m.IfIndex, "peer", m.LinkLocalAddr.String(), "token", token.String())
		}
		if c.onLinkMetrics != nil {
			c.onLinkMetrics(m)
		}
	case CommandLinkStatus:
		m, err := decodeLinkStatus(body)
		if err != nil {
			c.logger.Error("zebra: decode linkstatus", "error", err)
			return
		}
		if c.onLinkStatus != nil {
			c.onLinkStatus(m)
		}
	default:
		c.logger.Debug("zebra: ignoring unhandled command", "command", cmd)
	}
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := conn.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
