package transport

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/1ureka/p4traffic/internal/protocol"
	"github.com/1ureka/p4traffic/internal/util"
)

const wsInboxSize = 16

// WSLink carries frames as binary WebSocket messages to a bridge in front of
// a software dataplane. Each message is the 2-byte EtherType followed by the
// payload, mirroring what the raw link puts after the MAC addresses.
type WSLink struct {
	conn  *websocket.Conn
	inbox chan []byte
	done  chan struct{}

	mu      sync.Mutex
	readErr error

	closeOnce sync.Once
}

// DialWS connects to the bridge at url.
func DialWS(ctx context.Context, url string) (*WSLink, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %w", ErrLink, url, err)
	}

	l := &WSLink{
		conn:  conn,
		inbox: make(chan []byte, wsInboxSize),
		done:  make(chan struct{}),
	}
	go l.readLoop()

	return l, nil
}

// readLoop is the single reader goroutine. A gorilla connection cannot be
// read again after a deadline error, so deadlines are applied to the inbox
// rather than to the socket.
func (l *WSLink) readLoop() {
	defer close(l.done)

	for {
		typ, data, err := l.conn.ReadMessage()
		if err != nil {
			l.mu.Lock()
			l.readErr = err
			l.mu.Unlock()
			return
		}
		if typ != websocket.BinaryMessage {
			continue
		}

		select {
		case l.inbox <- data:
		default:
			util.LogDebug("bridge inbox full, dropping frame")
		}
	}
}

// WriteFrame sends payload to the bridge.
func (l *WSLink) WriteFrame(payload []byte) error {
	msg := make([]byte, 2+len(payload))
	binary.BigEndian.PutUint16(msg[0:2], protocol.EtherType)
	copy(msg[2:], payload)
	return l.conn.WriteMessage(websocket.BinaryMessage, msg)
}

// ReadFrame returns the next message tagged with the P4Traffic EtherType.
func (l *WSLink) ReadFrame(deadline time.Time) ([]byte, error) {
	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()

	for {
		select {
		case msg := <-l.inbox:
			if len(msg) < 2 || binary.BigEndian.Uint16(msg[0:2]) != protocol.EtherType {
				continue
			}
			return msg[2:], nil

		case <-l.done:
			l.mu.Lock()
			err := l.readErr
			l.mu.Unlock()
			if err == nil {
				err = errors.New("bridge connection closed")
			}
			return nil, err

		case <-timer.C:
			return nil, os.ErrDeadlineExceeded
		}
	}
}

// Close sends a close frame and tears down the connection.
func (l *WSLink) Close() error {
	var err error
	l.closeOnce.Do(func() {
		_ = l.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		err = l.conn.Close()
	})
	return err
}
