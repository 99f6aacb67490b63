// Command ospf6d runs the OSPFv3 MDR routing daemon: it loads the YAML
// configuration named on the command line, wires every configured area
// and interface together (internal/area.NewDaemon), and runs until
// signalled to stop. Subcommands follow the teacher's flat os.Args
// dispatch (cmd/peerup/main.go) rather than a third-party CLI framework.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/ospf6mdr/ospf6d/internal/area"
	"github.com/ospf6mdr/ospf6d/internal/config"
)

// Set via -ldflags at build time:
//
//	go build -ldflags "-X main.version=0.1.0 -X main.commit=$(git rev-parse --short HEAD)" -o ospf6d ./cmd/ospf6d
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "daemon":
		runDaemon(os.Args[2:])
	case "config":
		runConfig(os.Args[2:])
	case "version", "--version":
		printVersion()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runDaemon(args []string) {
	fs := flag.NewFlagSet("daemon", flag.ExitOnError)
	configPath := fs.String("config", "/etc/ospf6d/ospf6d.yaml", "path to the daemon configuration file")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal("load config: %v", err)
	}

	d, err := area.NewDaemon(cfg, version, slog.Default())
	if err != nil {
		fatal("initialize daemon: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	slog.Info("ospf6d starting", "router_id", d.RouterID().String(), "areas", len(d.Areas))
	if err := d.Run(ctx); err != nil {
		fatal("daemon exited: %v", err)
	}
}

func runConfig(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: ospf6d config validate <file>")
		os.Exit(1)
	}
	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("config validate", flag.ExitOnError)
		fs.Parse(args[1:])
		if fs.NArg() < 1 {
			fatal("config validate: missing config file path")
		}
		if _, err := config.Load(fs.Arg(0)); err != nil {
			fatal("invalid configuration: %v", err)
		}
		fmt.Println("configuration OK")
	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("ospf6d %s (%s)\n", version, commit)
	fmt.Printf("Go %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

func printUsage() {
	fmt.Println("Usage: ospf6d <command> [options]")
	fmt.Println()
	fmt.Println("  daemon --config FILE      Run the routing daemon")
	fmt.Println("  config validate FILE      Validate a configuration file")
	fmt.Println("  version                   Show version information")
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "ospf6d: "+format+"\n", args...)
	os.Exit(1)
}
