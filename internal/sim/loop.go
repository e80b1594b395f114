// Package sim drives the request/response cycle between the junction state
// and the dataplane.
//
// Each iteration runs BUILD_REQUEST, SEND_RECEIVE, APPLY (or NO_RESPONSE),
// INJECT_ARRIVALS and REPORT in order. The next state is built on a copy and
// only committed once every phase has succeeded.
package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/1ureka/p4traffic/internal/arrival"
	"github.com/1ureka/p4traffic/internal/junction"
	"github.com/1ureka/p4traffic/internal/protocol"
	"github.com/1ureka/p4traffic/internal/transport"
	"github.com/1ureka/p4traffic/internal/util"
)

var (
	// ErrNoResponse is returned when the dataplane stays silent and the
	// policy is NoResponseExit.
	ErrNoResponse = errors.New("no response from dataplane")
	// ErrInternal wraps a panic recovered at the loop boundary.
	ErrInternal = errors.New("internal failure")
)

// NoResponsePolicy decides what a silent dataplane does to the run.
type NoResponsePolicy string

const (
	NoResponseExit NoResponsePolicy = "exit"
	NoResponseSkip NoResponsePolicy = "skip"
)

// Exchanger performs one request/response round trip with the dataplane.
type Exchanger interface {
	Exchange(ctx context.Context, req *protocol.Frame) (transport.Reply, error)
}

// Options tunes the simulation.
type Options struct {
	CarsPerIteration    uint8 // cars cleared from the green entrance per iteration
	SecondsPerIteration uint8 // timer advance while the same entrance stays green
	Interval            time.Duration
	Weights             arrival.Weights
	NoResponse          NoResponsePolicy
}

// Loop owns the junction state for the lifetime of the run.
type Loop struct {
	state    *junction.State
	ex       Exchanger
	model    *arrival.Model
	opts     Options
	reporter Reporter

	runID     uuid.UUID
	iteration uint64
}

// New creates a Loop. The caller must not touch state afterwards.
func New(state *junction.State, ex Exchanger, model *arrival.Model, opts Options, reporter Reporter) *Loop {
	return &Loop{
		state:    state,
		ex:       ex,
		model:    model,
		opts:     opts,
		reporter: reporter,
		runID:    uuid.New(),
	}
}

// RunID identifies this run in reports.
func (l *Loop) RunID() uuid.UUID { return l.runID }

// Step runs a single iteration. A nil error means the iteration either
// committed or was skipped with the previous state preserved.
func (l *Loop) Step(ctx context.Context) error {
	req := l.state.Snapshot()

	reply, err := l.ex.Exchange(ctx, &req)
	if err != nil {
		return err
	}

	if !reply.OK {
		if reply.Rejected > 0 {
			util.LogWarning("cannot find a P4Traffic frame in %d reply(s), skipping iteration", reply.Rejected)
			return nil
		}
		if l.opts.NoResponse == NoResponseSkip {
			util.LogWarning("didn't receive response, skipping iteration")
			return nil
		}
		return ErrNoResponse
	}

	next := *l.state

	green, remaining, err := next.ApplyDecision(reply.Frame, l.opts.CarsPerIteration, l.opts.SecondsPerIteration)
	if err != nil {
		util.LogWarning("ignoring decision: %v", err)
		return nil
	}
	afterDepartures := next.Cars()

	outcome := l.model.Roll(l.opts.Weights)
	next.AddArrivals(outcome)

	*l.state = next
	l.iteration++

	jt, ct := next.Timers()
	l.reporter.Report(Report{
		RunID:            l.runID,
		Iteration:        l.iteration,
		Green:            green,
		Remaining:        remaining,
		AfterDepartures:  afterDepartures,
		Cars:             next.Cars(),
		Arrivals:         outcome,
		JunctionTimer:    jt,
		ConsecutiveTimer: ct,
	})

	return nil
}

// Run iterates until ctx is cancelled or an iteration fails. Cancellation is
// a clean stop and returns nil.
func (l *Loop) Run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()

	for {
		if err := l.Step(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(l.opts.Interval):
		}
	}
}
