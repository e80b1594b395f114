package transport

import (
	"bytes"
	"net"
	"testing"

	"github.com/1ureka/p4traffic/internal/protocol"
)

func TestEthernetRoundTrip(t *testing.T) {
	dst, _ := net.ParseMAC("e4:5f:01:84:8c:5e")
	src, _ := net.ParseMAC("0c:37:96:5f:8a:0f")
	payload := []byte("P4\x01\x01\x00")

	frame := marshalEthernet(dst, src, protocol.EtherType, payload)
	if len(frame) != ethHeaderLen+len(payload) {
		t.Fatalf("frame length: got %d, want %d", len(frame), ethHeaderLen+len(payload))
	}
	if !bytes.Equal(frame[0:6], dst) || !bytes.Equal(frame[6:12], src) {
		t.Errorf("addresses not in place: % x", frame[:12])
	}
	if frame[12] != 0x12 || frame[13] != 0x34 {
		t.Errorf("EtherType bytes: got % x, want 12 34", frame[12:14])
	}

	etherType, got, err := unmarshalEthernet(frame)
	if err != nil {
		t.Fatalf("unmarshalEthernet failed: %v", err)
	}
	if etherType != protocol.EtherType {
		t.Errorf("EtherType: got 0x%04x, want 0x%04x", etherType, protocol.EtherType)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("payload: got %q, want %q", got, payload)
	}
}

func TestUnmarshalEthernetShort(t *testing.T) {
	if _, _, err := unmarshalEthernet(make([]byte, ethHeaderLen-1)); err == nil {
		t.Fatal("expected an error for a truncated header")
	}
}

func TestHtons(t *testing.T) {
	if got := htons(0x1234); got != 0x3412 {
		t.Errorf("htons(0x1234) = 0x%04x, want 0x3412", got)
	}
}
