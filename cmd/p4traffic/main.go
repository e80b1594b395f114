// P4Traffic CLI entry point.
//
// This tool simulates the cars queuing at a four-way junction whose traffic
// lights are decided by a P4 dataplane. Every iteration the junction state is
// sent to the dataplane in a raw Ethernet frame (EtherType 0x1234), and the
// returned decision is applied locally before random arrivals are added.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/tebeka/atexit"

	"github.com/1ureka/p4traffic/internal/arrival"
	"github.com/1ureka/p4traffic/internal/config"
	"github.com/1ureka/p4traffic/internal/junction"
	"github.com/1ureka/p4traffic/internal/sim"
	"github.com/1ureka/p4traffic/internal/transport"
	"github.com/1ureka/p4traffic/internal/util"
)

var version = "dev"

func main() {
	// CLI flags.
	configPath := flag.String("config", "", "Path to a YAML config file")
	linkKind := flag.String("link", "", "Link backend: ether or ws")
	iface := flag.String("iface", "", "Network interface for the ether link")
	dst := flag.String("dst", "", "Dataplane MAC address for the ether link")
	wsURL := flag.String("wsUrl", "", "Bridge URL for the ws link")
	variant := flag.String("variant", "", "Frame layout: timed or legacy")
	timeout := flag.Duration("timeout", 0, "Per-exchange reply timeout (e.g. 5s)")
	noResponse := flag.String("noResponse", "", "On a silent dataplane: exit or skip")
	debugMode := flag.Bool("debug", false, "Enable debug logging")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *debugMode {
		util.EnableDebug()
	}

	cmd, err := parseCommand(flag.Args())
	if err != nil {
		util.LogError("%v", err)
		flag.Usage()
		atexit.Exit(exitCode(err))
	}
	if cmd.quit {
		atexit.Exit(exitQuit)
	}

	cfg, err := buildConfig(*configPath, overrides{
		link:       *linkKind,
		iface:      *iface,
		dst:        *dst,
		wsURL:      *wsURL,
		variant:    *variant,
		timeout:    *timeout,
		noResponse: *noResponse,
	})
	if err != nil {
		util.LogError("%v", err)
		atexit.Exit(exitCode(err))
	}

	pterm.Info.Println(fmt.Sprintf("P4Traffic v%s", version))
	pterm.Println()

	util.LogSuccess("Added successfully: %d cars to Entrance 1, %d to Entrance 2, %d to Entrance 3, %d to Entrance 4",
		cmd.cars[0], cmd.cars[1], cmd.cars[2], cmd.cars[3])

	// Root context, cancelled on Ctrl+C or SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	atexit.Register(stop)

	tr, err := openTransport(ctx, cfg)
	if err != nil {
		util.LogError("failed to open link: %v", err)
		atexit.Exit(exitCode(err))
	}
	atexit.Register(func() {
		if err := tr.Close(); err != nil {
			util.LogWarning("failed to release link: %v", err)
		}
	})

	util.StartStatsReporter(ctx, 10*time.Second)

	loop := sim.New(junction.New(cmd.cars), tr, arrival.NewModel(nil), cfg.LoopOptions(), sim.LogReporter{})
	util.LogInfo("run %s: exchanging %s frames over %s link", loop.RunID(), cfg.Protocol.Variant, cfg.Link.Kind)

	if err := loop.Run(ctx); err != nil {
		util.LogError("simulation stopped: %v", err)
		atexit.Exit(exitCode(err))
	}

	util.LogInfo("simulation interrupted")
	atexit.Exit(0)
}

// openTransport acquires the configured link. The returned Transport owns it.
func openTransport(ctx context.Context, cfg *config.Config) (*transport.Transport, error) {
	variant, err := cfg.Variant()
	if err != nil {
		return nil, err
	}

	var link transport.Link

	switch cfg.Link.Kind {
	case config.LinkWS:
		dialCtx, cancel := context.WithTimeout(ctx, cfg.Simulation.Timeout)
		defer cancel()

		ws, err := transport.DialWS(dialCtx, cfg.Link.URL)
		if err != nil {
			return nil, err
		}
		link = ws

	default:
		mac, err := cfg.DestinationMAC()
		if err != nil {
			return nil, err
		}

		ether, err := transport.OpenEther(cfg.Link.Interface, mac)
		if err != nil {
			return nil, err
		}
		link = ether
	}

	return transport.New(link, variant, cfg.Simulation.Timeout), nil
}
