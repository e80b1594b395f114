// Package protocol defines the P4Traffic frame exchanged with the dataplane.
package protocol

import "fmt"

// EtherType is the link-layer protocol tag that carries P4Traffic frames.
const EtherType uint16 = 0x1234

// Version is the only protocol version this client speaks.
const Version uint8 = 0x01

// NumEntrances is the number of approaches to the junction.
const NumEntrances = 4

// Padding is appended after the structured fields of every outgoing frame.
const Padding byte = ' '

// Variant selects one of the two fixed frame layouts.
type Variant uint8

const (
	// VariantTimed: magic(2) version greenLight greenCar junctionTimer
	// consecutiveTimer J1..J4 newGreenCar = 12 bytes.
	VariantTimed Variant = iota
	// VariantLegacy: magic(2) version greenLight greenCar J1..J4
	// result[4] newCar[4] = 17 bytes.
	VariantLegacy
)

// Size returns the length of the structured payload, excluding padding.
func (v Variant) Size() int {
	if v == VariantLegacy {
		return 17
	}
	return 12
}

func (v Variant) String() string {
	switch v {
	case VariantTimed:
		return "timed"
	case VariantLegacy:
		return "legacy"
	default:
		return fmt.Sprintf("variant(%d)", uint8(v))
	}
}

// ParseVariant maps a config name onto a Variant.
func ParseVariant(s string) (Variant, error) {
	switch s {
	case "", "timed":
		return VariantTimed, nil
	case "legacy":
		return VariantLegacy, nil
	default:
		return 0, fmt.Errorf("unknown protocol variant %q", s)
	}
}

// Frame is one decoded P4Traffic record. Fields a variant does not carry are
// left zero by Decode and ignored by Encode.
type Frame struct {
	GreenLight       uint8 // 1..4
	GreenCar         uint8
	JunctionTimer    uint8 // timed only
	ConsecutiveTimer uint8 // timed only
	Cars             [NumEntrances]uint8
	NewGreenCar      uint8 // timed only

	Results  [NumEntrances]uint8 // legacy only
	Arrivals [NumEntrances]uint8 // legacy only
}

// ValidEntrance reports whether id names one of the four entrances.
func ValidEntrance(id uint8) bool {
	return id >= 1 && id <= NumEntrances
}
