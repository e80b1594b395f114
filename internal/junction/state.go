// Package junction holds the client-side view of the four-way junction.
package junction

import (
	"fmt"

	"github.com/1ureka/p4traffic/internal/protocol"
)

// State is the authoritative simulation state. It is a plain value: copying
// it yields an independent snapshot, which the simulation loop relies on to
// commit an iteration all at once.
type State struct {
	cars             [protocol.NumEntrances]uint8
	green            uint8
	junctionTimer    uint8
	consecutiveTimer uint8

	// Arrival outcome of the previous iteration, reported to the dataplane
	// in the next request.
	newGreenCar uint8
	arrivals    [protocol.NumEntrances]uint8
}

// New returns the initial state with entrance 1 green and both timers at zero.
func New(cars [protocol.NumEntrances]uint8) *State {
	return &State{cars: cars, green: 1}
}

// Cars returns the car count at each entrance, J1..J4.
func (s *State) Cars() [protocol.NumEntrances]uint8 { return s.cars }

// Green returns the currently green entrance (1..4).
func (s *State) Green() uint8 { return s.green }

// Timers returns the junction and consecutive timers.
func (s *State) Timers() (junction, consecutive uint8) {
	return s.junctionTimer, s.consecutiveTimer
}

// Snapshot builds the request frame for the next exchange.
func (s *State) Snapshot() protocol.Frame {
	return protocol.Frame{
		GreenLight:       s.green,
		GreenCar:         s.cars[s.green-1],
		JunctionTimer:    s.junctionTimer,
		ConsecutiveTimer: s.consecutiveTimer,
		Cars:             s.cars,
		NewGreenCar:      s.newGreenCar,
		Arrivals:         s.arrivals,
	}
}

// ApplyDecision consumes the dataplane's decision. capacity cars leave the
// green entrance, clamped at zero. If the green entrance changed, both timers
// restart at zero; otherwise they continue from the reported values advanced
// by tick seconds. It returns the green entrance and its remaining queue.
func (s *State) ApplyDecision(d *protocol.Frame, capacity, tick uint8) (green, remaining uint8, err error) {
	if !protocol.ValidEntrance(d.GreenLight) {
		return 0, 0, fmt.Errorf("%w: green light %d out of range", protocol.ErrMalformedFrame, d.GreenLight)
	}

	if d.GreenLight != s.green {
		s.green = d.GreenLight
		s.junctionTimer = 0
		s.consecutiveTimer = 0
	} else {
		s.junctionTimer = addSat(d.JunctionTimer, tick)
		s.consecutiveTimer = addSat(d.ConsecutiveTimer, tick)
	}

	remaining = subClamp(d.GreenCar, capacity)
	s.cars[s.green-1] = remaining

	return s.green, remaining, nil
}

// AddArrivals adds one car to every entrance that rolled an arrival and
// records the outcome for the next request. Counts saturate at 255.
func (s *State) AddArrivals(arrived [protocol.NumEntrances]bool) {
	for i, ok := range arrived {
		s.arrivals[i] = 0
		if ok {
			s.cars[i] = addSat(s.cars[i], 1)
			s.arrivals[i] = 1
		}
	}
	s.newGreenCar = s.arrivals[s.green-1]
}

func addSat(a, b uint8) uint8 {
	if sum := uint16(a) + uint16(b); sum <= 0xff {
		return uint8(sum)
	}
	return 0xff
}

func subClamp(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return 0
}
