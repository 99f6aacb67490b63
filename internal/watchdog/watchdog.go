// Package watchdog provides process supervision for ospf6d: systemd
// sd_notify readiness/heartbeat/stopping notifications plus a periodic
// health-check runner. This is the "systemd-equivalent will restart it"
// fatal-path collaborator named in spec.md §7 -- the daemon proves
// liveness here, and an init system outside this repo decides what to do
// when the heartbeat stops.
package watchdog

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"
)

// Config holds watchdog configuration.
type Config struct {
	Interval time.Duration // health check interval (default: 30s)
}

// HealthCheck is a named function that returns nil if healthy. Typical
// checks for ospf6d: "zebra connected", "scheduler not stalled", "at least
// one area has a current SPF tree".
type HealthCheck struct {
	Name  string
	Check func() error
}

// ZebraConn reports whether the daemon's Zebra route-installation
// client is currently connected, the "zebra connected" check spec.md §7
// names.
type ZebraConn interface {
	ZebraConnected() bool
}

// AreaSPFStatus reports the first configured area, if any, that has not
// yet completed an SPF run -- the "area has spf tree" check spec.md §7
// names.
type AreaSPFStatus interface {
	AreaMissingSPFTree() (areaID string, missing bool)
}

// OSPF6Checks builds ospf6d's standard health-check list from its two
// liveness collaborators: Zebra connectivity and per-area SPF tree
// freshness.
func OSPF6Checks(zebra ZebraConn, areas AreaSPFStatus) []HealthCheck {
	return []HealthCheck{
		{
			Name: "zebra connected",
			Check: func() error {
				if !zebra.ZebraConnected() {
					return fmt.Errorf("zebra client not connected")
				}
				return nil
			},
		},
		{
			Name: "area has spf tree",
			Check: func() error {
				if areaID, missing := areas.AreaMissingSPFTree(); missing {
					return fmt.Errorf("area %s has no computed SPF tree yet", areaID)
				}
				return nil
			},
		},
	}
}

// Run starts the watchdog loop. It runs health checks at the configured
// interval, logs failures via slog, and sends WATCHDOG=1 to systemd on
// every tick. Blocks until ctx is cancelled.
func Run(ctx context.Context, cfg Config, checks []HealthCheck) {
	interval := cfg.Interval
	if interval == 0 {
		interval = 30 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, hc := range checks {
				if err := hc.Check(); err != nil {
					slog.Warn("health check failed", "check", hc.Name, "error", err)
				}
			}
			// Always heartbeat. The watchdog proves "I'm alive",
			// not "all checks pass". Health issues are logged above.
			Watchdog()
		}
	}
}

// --- systemd sd_notify (pure Go, no CGo) ---

// Ready sends READY=1 to systemd, indicating the service is started.
// No-op if NOTIFY_SOCKET is not set (non-systemd environments).
func Ready() error {
	return sdNotify("READY=1")
}

// Watchdog sends WATCHDOG=1 to systemd, resetting the watchdog timer.
// No-op if NOTIFY_SOCKET is not set.
func Watchdog() error {
	return sdNotify("WATCHDOG=1")
}

// Stopping sends STOPPING=1 to systemd, indicating graceful shutdown.
// No-op if NOTIFY_SOCKET is not set.
func Stopping() error {
	return sdNotify("STOPPING=1")
}

// sdNotify sends a message to the systemd notify socket.
// Returns nil if NOTIFY_SOCKET is not set (non-systemd environment).
func sdNotify(state string) error {
	socketPath := os.Getenv("NOTIFY_SOCKET")
	if socketPath == "" {
		return nil
	}

	// systemd supports abstract sockets (prefixed with @) and filesystem sockets
	socketAddr := &net.UnixAddr{
		Name: socketPath,
		Net:  "unixgram",
	}

	conn, err := net.DialUnix("unixgram", nil, socketAddr)
	if err != nil {
		return fmt.Errorf("sd_notify: dial: %w", err)
	}
	defer conn.Close()

	_, err = conn.Write([]byte(state))
	if err != nil {
		return fmt.Errorf("sd_notify: write: %w", err)
	}
	return nil
}
