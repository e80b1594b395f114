package protocol

import (
	"errors"
	"fmt"
)

// ErrMalformedFrame is returned by Decode for any structural failure.
var ErrMalformedFrame = errors.New("malformed frame")

var magic = [2]byte{'P', '4'}

// Encode serializes f in the given variant's layout, followed by one padding
// byte.
func Encode(f *Frame, v Variant) []byte {
	buf := make([]byte, v.Size()+1)
	buf[0], buf[1] = magic[0], magic[1]
	buf[2] = Version
	buf[3] = f.GreenLight
	buf[4] = f.GreenCar

	switch v {
	case VariantLegacy:
		copy(buf[5:9], f.Cars[:])
		copy(buf[9:13], f.Results[:])
		copy(buf[13:17], f.Arrivals[:])
	default:
		buf[5] = f.JunctionTimer
		buf[6] = f.ConsecutiveTimer
		copy(buf[7:11], f.Cars[:])
		buf[11] = f.NewGreenCar
	}

	buf[len(buf)-1] = Padding
	return buf
}

// Decode parses the fixed prefix of data. Anything past the structured
// fields is ignored. Either every field is decoded or an error wrapping
// ErrMalformedFrame is returned.
func Decode(data []byte, v Variant) (*Frame, error) {
	size := v.Size()
	if len(data) < size {
		return nil, fmt.Errorf("%w: %d bytes (need at least %d)", ErrMalformedFrame, len(data), size)
	}
	if data[0] != magic[0] || data[1] != magic[1] {
		return nil, fmt.Errorf("%w: bad magic %q", ErrMalformedFrame, data[0:2])
	}
	if data[2] != Version {
		return nil, fmt.Errorf("%w: unsupported version 0x%02x", ErrMalformedFrame, data[2])
	}
	if !ValidEntrance(data[3]) {
		return nil, fmt.Errorf("%w: green light %d out of range", ErrMalformedFrame, data[3])
	}

	f := &Frame{
		GreenLight: data[3],
		GreenCar:   data[4],
	}

	switch v {
	case VariantLegacy:
		copy(f.Cars[:], data[5:9])
		copy(f.Results[:], data[9:13])
		copy(f.Arrivals[:], data[13:17])
	default:
		f.JunctionTimer = data[5]
		f.ConsecutiveTimer = data[6]
		copy(f.Cars[:], data[7:11])
		f.NewGreenCar = data[11]
	}

	return f, nil
}
