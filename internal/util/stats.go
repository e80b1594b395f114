package util

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pterm/pterm"
)

// ──────────────────────────────────────────────────────────────────────────────
// Global stats singleton
// ──────────────────────────────────────────────────────────────────────────────

// Stats is the process-wide exchange counter.
var Stats = &stats{}

type stats struct {
	FramesSent atomic.Int64 // request frames written to the link
	Replies    atomic.Int64 // exchanges that returned a valid decision
	Timeouts   atomic.Int64 // exchanges that ended without a valid decision
	Rejected   atomic.Int64 // tagged frames dropped because they failed decoding
	BytesSent  atomic.Int64
	BytesRecv  atomic.Int64
}

func (s *stats) AddSent(n int) {
	s.FramesSent.Add(1)
	s.BytesSent.Add(int64(n))
}

func (s *stats) AddRecv(n int) { s.BytesRecv.Add(int64(n)) }
func (s *stats) AddReply()     { s.Replies.Add(1) }
func (s *stats) AddTimeout()   { s.Timeouts.Add(1) }
func (s *stats) AddRejected()  { s.Rejected.Add(1) }

// snapshot is a point-in-time copy of the counters.
type snapshot struct {
	sent, replies, timeouts, rejected int64
}

func (s *stats) snapshot() snapshot {
	return snapshot{
		sent:     s.FramesSent.Load(),
		replies:  s.Replies.Load(),
		timeouts: s.Timeouts.Load(),
		rejected: s.Rejected.Load(),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Periodic reporter
// ──────────────────────────────────────────────────────────────────────────────

// StartStatsReporter launches a goroutine that logs exchange statistics
// every interval. It stops when ctx is cancelled.
func StartStatsReporter(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var prev snapshot
		for {
			select {
			case <-ticker.C:
				cur := Stats.snapshot()
				if cur != prev {
					pterm.DefaultLogger.Info(formatStats(cur, prev))
				}
				prev = cur

			case <-ctx.Done():
				return
			}
		}
	}()
}

// formatStats returns the per-window deltas followed by the cumulative reply
// ratio, e.g. "Sent:  5 | Replies:  4 | Timeouts:  1 | Rejected:  0 | OK 80.0%".
func formatStats(cur, prev snapshot) string {
	ratio := 0.0
	if cur.sent > 0 {
		ratio = float64(cur.replies) / float64(cur.sent) * 100
	}

	return fmt.Sprintf("Sent: %2d | Replies: %2d | Timeouts: %2d | Rejected: %2d | OK %5.1f%%",
		cur.sent-prev.sent,
		cur.replies-prev.replies,
		cur.timeouts-prev.timeouts,
		cur.rejected-prev.rejected,
		ratio,
	)
}
