//go:build linux

package transport

import (
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/1ureka/p4traffic/internal/protocol"
)

// EtherLink is a raw AF_PACKET socket bound to one interface and to the
// P4Traffic EtherType. It requires CAP_NET_RAW.
type EtherLink struct {
	fd      int
	ifindex int
	src     net.HardwareAddr
	dst     net.HardwareAddr
	buf     []byte

	closeOnce sync.Once
	closeErr  error
}

// OpenEther opens a raw link on iface that addresses every frame to dst.
func OpenEther(iface string, dst net.HardwareAddr) (*EtherLink, error) {
	ifi, err := net.InterfaceByName(iface)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLink, err)
	}
	if len(dst) != 6 {
		return nil, fmt.Errorf("%w: destination %q is not an Ethernet address", ErrLink, dst)
	}

	proto := htons(protocol.EtherType)
	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW|unix.SOCK_CLOEXEC, int(proto))
	if err != nil {
		return nil, fmt.Errorf("%w: open raw socket on %s: %w", ErrLink, iface, err)
	}

	if err := unix.Bind(fd, &unix.SockaddrLinklayer{Protocol: proto, Ifindex: ifi.Index}); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("%w: bind %s: %w", ErrLink, iface, err)
	}

	mtu := ifi.MTU
	if mtu <= 0 {
		mtu = 1500
	}

	return &EtherLink{
		fd:      fd,
		ifindex: ifi.Index,
		src:     ifi.HardwareAddr,
		dst:     dst,
		buf:     make([]byte, mtu+ethHeaderLen),
	}, nil
}

// WriteFrame sends payload to the destination address.
func (l *EtherLink) WriteFrame(payload []byte) error {
	frame := marshalEthernet(l.dst, l.src, protocol.EtherType, payload)

	addr := &unix.SockaddrLinklayer{
		Protocol: htons(protocol.EtherType),
		Ifindex:  l.ifindex,
		Halen:    6,
	}
	copy(addr.Addr[:], l.dst)

	return unix.Sendto(l.fd, frame, 0, addr)
}

// ReadFrame waits for the next inbound tagged frame. Frames this host sent
// are looped back by the kernel and skipped here.
func (l *EtherLink) ReadFrame(deadline time.Time) ([]byte, error) {
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, os.ErrDeadlineExceeded
		}
		// A zero timeval means "block forever".
		if remaining < time.Millisecond {
			remaining = time.Millisecond
		}

		tv := unix.NsecToTimeval(remaining.Nanoseconds())
		if err := unix.SetsockoptTimeval(l.fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
			return nil, err
		}

		n, from, err := unix.Recvfrom(l.fd, l.buf, 0)
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return nil, err
		}

		if ll, ok := from.(*unix.SockaddrLinklayer); ok && ll.Pkttype == unix.PACKET_OUTGOING {
			continue
		}

		etherType, payload, err := unmarshalEthernet(l.buf[:n])
		if err != nil || etherType != protocol.EtherType {
			continue
		}

		out := make([]byte, len(payload))
		copy(out, payload)
		return out, nil
	}
}

// Close releases the socket. Safe to call multiple times.
func (l *EtherLink) Close() error {
	l.closeOnce.Do(func() {
		l.closeErr = unix.Close(l.fd)
	})
	return l.closeErr
}
