package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/1ureka/p4traffic/internal/config"
	"github.com/1ureka/p4traffic/internal/protocol"
	"github.com/1ureka/p4traffic/internal/sim"
	"github.com/1ureka/p4traffic/internal/transport"
)

func TestParseCommand(t *testing.T) {
	testCases := []struct {
		name     string
		args     []string
		wantCars [4]uint8
		wantQuit bool
		wantCode int // exit code of the error, 0 when parsing succeeds
	}{
		{name: "add", args: []string{"add", "5", "3", "0", "2"}, wantCars: [4]uint8{5, 3, 0, 2}},
		{name: "add upper bound", args: []string{"add", "255", "0", "0", "255"}, wantCars: [4]uint8{255, 0, 0, 255}},
		{name: "quit", args: []string{"quit"}, wantQuit: true},
		{name: "quit ignores the rest", args: []string{"quit", "1", "2"}, wantQuit: true},
		{name: "no arguments", args: nil, wantCode: exitUsage},
		{name: "unknown command", args: []string{"remove", "1", "2", "3", "4"}, wantCode: exitUsage},
		{name: "three counts", args: []string{"add", "1", "2", "3"}, wantCode: exitUsage},
		{name: "five counts", args: []string{"add", "1", "2", "3", "4", "5"}, wantCode: exitUsage},
		{name: "negative count", args: []string{"add", "1", "-2", "3", "4"}, wantCode: exitUsage},
		{name: "count above 255", args: []string{"add", "1", "2", "256", "4"}, wantCode: exitUsage},
		{name: "not a number", args: []string{"add", "1", "2", "3", "four"}, wantCode: exitUsage},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cmd, err := parseCommand(tc.args)

			if tc.wantCode != 0 {
				if err == nil {
					t.Fatalf("expected an error, got %+v", cmd)
				}
				if code := exitCode(err); code != tc.wantCode {
					t.Errorf("exit code: got %d, want %d (err: %v)", code, tc.wantCode, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cmd.quit != tc.wantQuit || cmd.cars != tc.wantCars {
				t.Errorf("got %+v, want quit=%v cars=%v", cmd, tc.wantQuit, tc.wantCars)
			}
		})
	}
}

func TestExitCodesDistinct(t *testing.T) {
	testCases := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{fmt.Errorf("%w: x", errUsage), exitUsage},
		{fmt.Errorf("%w: x", config.ErrInvalidArgument), exitUsage},
		{sim.ErrNoResponse, exitNoResponse},
		{fmt.Errorf("%w: send: boom", transport.ErrLink), exitTransport},
		{fmt.Errorf("%w: boom", sim.ErrInternal), exitFailure},
		{errors.New("anything else"), exitFailure},
	}

	for _, tc := range testCases {
		if got := exitCode(tc.err); got != tc.want {
			t.Errorf("exitCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}

	seen := map[int]bool{}
	for _, code := range []int{exitQuit, exitUsage, exitNoResponse, exitFailure, exitTransport} {
		if code == 0 || seen[code] {
			t.Errorf("exit code %d is zero or reused", code)
		}
		seen[code] = true
	}
}

func TestBuildConfig(t *testing.T) {
	cfg, err := buildConfig("", overrides{})
	if err != nil {
		t.Fatalf("defaults rejected: %v", err)
	}
	if cfg.Link.Kind != config.LinkEther || cfg.Simulation.Timeout != 5*time.Second {
		t.Errorf("unexpected defaults %+v", cfg)
	}

	path := filepath.Join(t.TempDir(), "cfg.yaml")
	body := "link:\n  kind: ws\n  url: ws://bridge/ws\nsimulation:\n  timeout: 2s\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err = buildConfig(path, overrides{
		variant:    "legacy",
		timeout:    3 * time.Second,
		noResponse: "skip",
	})
	if err != nil {
		t.Fatalf("buildConfig failed: %v", err)
	}
	if cfg.Link.Kind != config.LinkWS || cfg.Link.URL != "ws://bridge/ws" {
		t.Errorf("file values lost: %+v", cfg.Link)
	}
	if v, _ := cfg.Variant(); v != protocol.VariantLegacy {
		t.Errorf("variant override ignored: %v", v)
	}
	if cfg.Simulation.Timeout != 3*time.Second || cfg.Simulation.NoResponse != sim.NoResponseSkip {
		t.Errorf("flag overrides ignored: %+v", cfg.Simulation)
	}

	if _, err := buildConfig("", overrides{dst: "zz"}); exitCode(err) != exitUsage {
		t.Errorf("bad destination: expected usage exit code, got %v", err)
	}
}
