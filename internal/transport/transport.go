// Package transport performs the request/response exchange with the
// dataplane over a point-to-point link.
package transport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/1ureka/p4traffic/internal/protocol"
	"github.com/1ureka/p4traffic/internal/util"
)

// ErrLink marks failures of the underlying link (unavailable interface,
// socket errors, closed bridge). They are not recoverable by retrying.
var ErrLink = errors.New("link failure")

// Link moves EtherType-tagged payloads to and from the dataplane. Frames
// carrying any other tag never reach the caller.
type Link interface {
	// WriteFrame sends one payload to the configured peer.
	WriteFrame(payload []byte) error
	// ReadFrame blocks until a tagged payload arrives or the deadline
	// passes, in which case it returns os.ErrDeadlineExceeded.
	ReadFrame(deadline time.Time) ([]byte, error)
	Close() error
}

// Reply is the outcome of one exchange.
type Reply struct {
	Frame    *protocol.Frame // set only when OK
	OK       bool
	Rejected int // tagged frames dropped because they failed decoding
}

// Transport binds a Link to a frame variant and a per-exchange timeout.
type Transport struct {
	link    Link
	variant protocol.Variant
	timeout time.Duration
}

// New creates a Transport. It takes ownership of link.
func New(link Link, variant protocol.Variant, timeout time.Duration) *Transport {
	return &Transport{
		link:    link,
		variant: variant,
		timeout: timeout,
	}
}

// Close releases the underlying link.
func (t *Transport) Close() error {
	return t.link.Close()
}

// Exchange sends req once and waits up to the configured timeout for the
// first reply that decodes cleanly. A timeout is not an error: the Reply
// simply has OK == false. Errors wrap ErrLink, or are ctx.Err().
func (t *Transport) Exchange(ctx context.Context, req *protocol.Frame) (Reply, error) {
	data := protocol.Encode(req, t.variant)
	if err := t.link.WriteFrame(data); err != nil {
		return Reply{}, fmt.Errorf("%w: send: %w", ErrLink, err)
	}
	util.Stats.AddSent(len(data))

	deadline := time.Now().Add(t.timeout)
	var reply Reply

	for {
		if err := ctx.Err(); err != nil {
			return reply, err
		}

		buf, err := t.link.ReadFrame(deadline)
		if errors.Is(err, os.ErrDeadlineExceeded) {
			util.Stats.AddTimeout()
			return reply, nil
		}
		if err != nil {
			return reply, fmt.Errorf("%w: receive: %w", ErrLink, err)
		}
		util.Stats.AddRecv(len(buf))

		frame, err := protocol.Decode(buf, t.variant)
		if err != nil {
			reply.Rejected++
			util.Stats.AddRejected()
			util.LogDebug("dropping reply: %v", err)
			continue
		}

		util.Stats.AddReply()
		reply.Frame = frame
		reply.OK = true
		return reply, nil
	}
}
