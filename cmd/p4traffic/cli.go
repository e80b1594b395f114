package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/1ureka/p4traffic/internal/config"
	"github.com/1ureka/p4traffic/internal/protocol"
	"github.com/1ureka/p4traffic/internal/sim"
	"github.com/1ureka/p4traffic/internal/transport"
)

// Process exit codes. Each failure cause gets its own code so orchestration
// scripts can tell them apart.
const (
	exitQuit       = 1
	exitUsage      = 2
	exitNoResponse = 3
	exitFailure    = 4
	exitTransport  = 5
)

const usage = `Usage: p4traffic [flags] add <junction1_car> <junction2_car> <junction3_car> <junction4_car>
       p4traffic quit`

var errUsage = errors.New("bad usage")

// command is the parsed positional part of the command line.
type command struct {
	quit bool
	cars [protocol.NumEntrances]uint8
}

// parseCommand validates the positional arguments.
func parseCommand(args []string) (command, error) {
	if len(args) == 0 {
		return command{}, fmt.Errorf("%w: missing command", errUsage)
	}

	switch args[0] {
	case "quit":
		return command{quit: true}, nil
	case "add":
	default:
		return command{}, fmt.Errorf("%w: first argument must be 'add' or 'quit', got %q", errUsage, args[0])
	}

	if len(args) != 1+protocol.NumEntrances {
		return command{}, fmt.Errorf("%w: 'add' takes %d car counts, got %d", errUsage, protocol.NumEntrances, len(args)-1)
	}

	var cmd command
	for i, raw := range args[1:] {
		n, err := strconv.ParseUint(raw, 10, 8)
		if err != nil {
			return command{}, fmt.Errorf("%w: car count for entrance %d must be 0~255, got %q",
				config.ErrInvalidArgument, i+1, raw)
		}
		cmd.cars[i] = uint8(n)
	}

	return cmd, nil
}

// overrides carries the CLI flags that take precedence over the config file.
// Zero values mean "not set".
type overrides struct {
	link       string
	iface      string
	dst        string
	wsURL      string
	variant    string
	timeout    time.Duration
	noResponse string
}

// buildConfig layers defaults, the optional file and the flag overrides,
// then validates the result.
func buildConfig(path string, o overrides) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}

	if o.link != "" {
		cfg.Link.Kind = config.LinkKind(o.link)
	}
	if o.iface != "" {
		cfg.Link.Interface = o.iface
	}
	if o.dst != "" {
		cfg.Link.Destination = o.dst
	}
	if o.wsURL != "" {
		cfg.Link.URL = o.wsURL
	}
	if o.variant != "" {
		cfg.Protocol.Variant = o.variant
	}
	if o.timeout > 0 {
		cfg.Simulation.Timeout = o.timeout
	}
	if o.noResponse != "" {
		cfg.Simulation.NoResponse = sim.NoResponsePolicy(o.noResponse)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// exitCode maps a terminal error onto the process exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage), errors.Is(err, config.ErrInvalidArgument):
		return exitUsage
	case errors.Is(err, sim.ErrNoResponse):
		return exitNoResponse
	case errors.Is(err, transport.ErrLink):
		return exitTransport
	default:
		return exitFailure
	}
}
