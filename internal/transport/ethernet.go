package transport

import (
	"encoding/binary"
	"fmt"
	"net"
)

// ethHeaderLen is dst(6) + src(6) + type(2).
const ethHeaderLen = 14

// marshalEthernet prepends an Ethernet II header to payload.
func marshalEthernet(dst, src net.HardwareAddr, etherType uint16, payload []byte) []byte {
	frame := make([]byte, ethHeaderLen+len(payload))
	copy(frame[0:6], dst)
	copy(frame[6:12], src)
	binary.BigEndian.PutUint16(frame[12:14], etherType)
	copy(frame[ethHeaderLen:], payload)
	return frame
}

// unmarshalEthernet splits an Ethernet II frame. The returned payload
// aliases frame.
func unmarshalEthernet(frame []byte) (etherType uint16, payload []byte, err error) {
	if len(frame) < ethHeaderLen {
		return 0, nil, fmt.Errorf("ethernet frame too short: %d bytes", len(frame))
	}
	return binary.BigEndian.Uint16(frame[12:14]), frame[ethHeaderLen:], nil
}

// htons converts a uint16 from host to network byte order.
func htons(v uint16) uint16 {
	return v<<8 | v>>8
}
