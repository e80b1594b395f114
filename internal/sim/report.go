package sim

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/1ureka/p4traffic/internal/arrival"
	"github.com/1ureka/p4traffic/internal/protocol"
	"github.com/1ureka/p4traffic/internal/util"
)

// Report is the post-iteration view handed to the operator.
type Report struct {
	RunID            uuid.UUID
	Iteration        uint64
	Green            uint8
	Remaining        uint8 // queue left at the green entrance after departures
	AfterDepartures  [protocol.NumEntrances]uint8
	Cars             [protocol.NumEntrances]uint8 // after arrivals
	Arrivals         arrival.Outcome
	JunctionTimer    uint8
	ConsecutiveTimer uint8
}

// Reporter receives one Report per committed iteration.
type Reporter interface {
	Report(r Report)
}

// LogReporter writes reports through the structured logger.
type LogReporter struct{}

func (LogReporter) Report(r Report) {
	util.LogFields("iteration",
		"run", r.RunID.String()[:8],
		"n", r.Iteration,
		"green", r.Green,
		"departed", formatCars(r.AfterDepartures),
		"arrived", formatArrivals(r.Arrivals),
		"cars", formatCars(r.Cars),
		"junction_timer", r.JunctionTimer,
		"consecutive_timer", r.ConsecutiveTimer,
	)
}

// formatCars renders counts as "5 3 0 2".
func formatCars(c [protocol.NumEntrances]uint8) string {
	return fmt.Sprintf("%d %d %d %d", c[0], c[1], c[2], c[3])
}

// formatArrivals renders an outcome as "0 1 0 0".
func formatArrivals(o arrival.Outcome) string {
	b := func(v bool) int {
		if v {
			return 1
		}
		return 0
	}
	return fmt.Sprintf("%d %d %d %d", b(o[0]), b(o[1]), b(o[2]), b(o[3]))
}
