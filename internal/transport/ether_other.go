//go:build !linux

package transport

import (
	"errors"
	"fmt"
	"net"
	"time"
)

var errNoRawLink = errors.New("raw Ethernet links require linux")

// EtherLink is unavailable on this platform.
type EtherLink struct{}

// OpenEther always fails outside linux.
func OpenEther(iface string, dst net.HardwareAddr) (*EtherLink, error) {
	return nil, fmt.Errorf("%w: %s: %w", ErrLink, iface, errNoRawLink)
}

func (l *EtherLink) WriteFrame(payload []byte) error               { return errNoRawLink }
func (l *EtherLink) ReadFrame(deadline time.Time) ([]byte, error) { return nil, errNoRawLink }
func (l *EtherLink) Close() error                                  { return nil }
