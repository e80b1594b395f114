// Package config holds the client configuration: built-in defaults, an
// optional YAML file and CLI overrides, validated once at startup.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1ureka/p4traffic/internal/arrival"
	"github.com/1ureka/p4traffic/internal/protocol"
	"github.com/1ureka/p4traffic/internal/sim"
)

// ErrInvalidArgument marks bad startup input: config values or car counts.
var ErrInvalidArgument = errors.New("invalid argument")

// LinkKind selects the Link backend.
type LinkKind string

const (
	LinkEther LinkKind = "ether"
	LinkWS    LinkKind = "ws"
)

// Link configures how frames reach the dataplane.
type Link struct {
	Kind        LinkKind `yaml:"kind"`
	Interface   string   `yaml:"interface"`   // ether: local interface name
	Destination string   `yaml:"destination"` // ether: dataplane MAC address
	URL         string   `yaml:"url"`         // ws: bridge URL
}

// Protocol selects the frame layout.
type Protocol struct {
	Variant string `yaml:"variant"`
}

// Simulation tunes the control loop.
type Simulation struct {
	CarsPerIteration    uint8                `yaml:"cars_per_iteration"`
	SecondsPerIteration uint8                `yaml:"seconds_per_iteration"`
	Timeout             time.Duration        `yaml:"timeout"`
	Interval            time.Duration        `yaml:"interval"`
	NoResponse          sim.NoResponsePolicy `yaml:"no_response"`
	Weights             arrival.Weights      `yaml:"weights"`
}

// Config stores every parameter of a run.
type Config struct {
	Link       Link       `yaml:"link"`
	Protocol   Protocol   `yaml:"protocol"`
	Simulation Simulation `yaml:"simulation"`
}

// Default returns the calibrated configuration.
func Default() *Config {
	return &Config{
		Link: Link{
			Kind:        LinkEther,
			Interface:   "enx0c37965f8a0f",
			Destination: "e4:5f:01:84:8c:5e",
		},
		Protocol: Protocol{Variant: protocol.VariantTimed.String()},
		Simulation: Simulation{
			CarsPerIteration:    2,
			SecondsPerIteration: 2,
			Timeout:             5 * time.Second,
			Interval:            time.Second,
			NoResponse:          sim.NoResponseExit,
			Weights:             arrival.Calibrated,
		},
	}
}

// Load reads a YAML file over the defaults. Keys absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read config: %w", ErrInvalidArgument, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrInvalidArgument, path, err)
	}

	return cfg, nil
}

// Validate checks every field. Errors wrap ErrInvalidArgument.
func (c *Config) Validate() error {
	switch c.Link.Kind {
	case LinkEther:
		if c.Link.Interface == "" {
			return fmt.Errorf("%w: missing link interface", ErrInvalidArgument)
		}
		if _, err := c.DestinationMAC(); err != nil {
			return err
		}
	case LinkWS:
		if c.Link.URL == "" {
			return fmt.Errorf("%w: missing link url for ws link", ErrInvalidArgument)
		}
	default:
		return fmt.Errorf("%w: link kind must be 'ether' or 'ws', got %q", ErrInvalidArgument, c.Link.Kind)
	}

	if _, err := c.Variant(); err != nil {
		return err
	}

	s := c.Simulation
	if s.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidArgument)
	}
	if s.Interval < 0 {
		return fmt.Errorf("%w: interval must not be negative", ErrInvalidArgument)
	}
	if s.NoResponse != sim.NoResponseExit && s.NoResponse != sim.NoResponseSkip {
		return fmt.Errorf("%w: no_response must be 'exit' or 'skip', got %q", ErrInvalidArgument, s.NoResponse)
	}
	if err := s.Weights.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	return nil
}

// Variant returns the parsed frame layout.
func (c *Config) Variant() (protocol.Variant, error) {
	v, err := protocol.ParseVariant(c.Protocol.Variant)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return v, nil
}

// DestinationMAC returns the parsed dataplane address.
func (c *Config) DestinationMAC() (net.HardwareAddr, error) {
	mac, err := net.ParseMAC(c.Link.Destination)
	if err != nil || len(mac) != 6 {
		return nil, fmt.Errorf("%w: bad destination address %q", ErrInvalidArgument, c.Link.Destination)
	}
	return mac, nil
}

// LoopOptions maps the simulation section onto sim.Options.
func (c *Config) LoopOptions() sim.Options {
	return sim.Options{
		CarsPerIteration:    c.Simulation.CarsPerIteration,
		SecondsPerIteration: c.Simulation.SecondsPerIteration,
		Interval:            c.Simulation.Interval,
		Weights:             c.Simulation.Weights,
		NoResponse:          c.Simulation.NoResponse,
	}
}
