// Package arrival draws the stochastic car arrivals for each entrance.
package arrival

import (
	"fmt"
	"math/rand/v2"

	"github.com/1ureka/p4traffic/internal/protocol"
)

// Weights holds the per-iteration arrival probability of each entrance, in
// percent.
type Weights [protocol.NumEntrances]uint8

// Calibrated is the weight table of the four-entrance traffic model.
var Calibrated = Weights{30, 70, 60, 50}

// Validate rejects percentages above 100.
func (w Weights) Validate() error {
	for i, p := range w {
		if p > 100 {
			return fmt.Errorf("weight for entrance %d is %d%% (must be 0~100)", i+1, p)
		}
	}
	return nil
}

// Outcome reports, per entrance, whether a car arrived this iteration.
type Outcome [protocol.NumEntrances]bool

// Model is a source of independent weighted coin flips. It keeps no state
// between rolls other than its random source.
type Model struct {
	rng *rand.Rand
}

// NewModel returns a Model drawing from src. A nil src uses a randomly
// seeded PCG.
func NewModel(src rand.Source) *Model {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Model{rng: rand.New(src)}
}

// Roll flips one coin per entrance.
func (m *Model) Roll(w Weights) Outcome {
	var out Outcome
	for i, p := range w {
		out[i] = m.rng.IntN(100) < int(p)
	}
	return out
}
