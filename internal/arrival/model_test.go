package arrival

import (
	"math/rand/v2"
	"testing"
)

// TestRollFrequency checks each entrance against its weight over many trials.
func TestRollFrequency(t *testing.T) {
	const trials = 10000
	m := NewModel(rand.NewPCG(42, 1337))

	var hits [4]int
	for i := 0; i < trials; i++ {
		out := m.Roll(Calibrated)
		for j, ok := range out {
			if ok {
				hits[j]++
			}
		}
	}

	for j, w := range Calibrated {
		freq := float64(hits[j]) / trials * 100
		if freq < float64(w)-3 || freq > float64(w)+3 {
			t.Errorf("entrance %d: observed %.1f%%, want %d%% ± 3", j+1, freq, w)
		}
	}
}

func TestRollExtremes(t *testing.T) {
	m := NewModel(rand.NewPCG(1, 1))
	w := Weights{0, 100, 0, 100}

	for i := 0; i < 1000; i++ {
		if out := m.Roll(w); out != (Outcome{false, true, false, true}) {
			t.Fatalf("roll %d: got %v", i, out)
		}
	}
}

// TestRollIndependence verifies that entrances are not correlated: with two
// 50% entrances all four combinations should appear about equally often.
func TestRollIndependence(t *testing.T) {
	const trials = 20000
	m := NewModel(rand.NewPCG(9, 9))

	var combos [4]int
	for i := 0; i < trials; i++ {
		out := m.Roll(Weights{50, 50, 0, 0})
		idx := 0
		if out[0] {
			idx |= 1
		}
		if out[1] {
			idx |= 2
		}
		combos[idx]++
	}

	for c, n := range combos {
		share := float64(n) / trials
		if share < 0.22 || share > 0.28 {
			t.Errorf("combination %02b: share %.3f, want 0.25 ± 0.03", c, share)
		}
	}
}

func TestNewModelNilSource(t *testing.T) {
	m := NewModel(nil)
	if out := m.Roll(Weights{100, 100, 100, 100}); out != (Outcome{true, true, true, true}) {
		t.Errorf("got %v", out)
	}
}

func TestWeightsValidate(t *testing.T) {
	if err := Calibrated.Validate(); err != nil {
		t.Errorf("calibrated weights rejected: %v", err)
	}
	if err := (Weights{0, 101, 0, 0}).Validate(); err == nil {
		t.Error("expected 101% to be rejected")
	}
}
