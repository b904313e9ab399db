package utils

import (
	"encoding/binary"

	"golang.org/x/exp/constraints"
)

const (
	PaddingLeft  = "left"
	PaddingRight = "right"
)

// ResizeBytes pads or truncates data to exactly size bytes. Padding goes on
// the side named by position (right when empty).
func ResizeBytes(data []byte, size int, pad byte, position string) []byte {
	if len(data) == size {
		return data
	}
	out := make([]byte, size)
	if pad != 0 {
		for i := range out {
			out[i] = pad
		}
	}
	if len(data) > size {
		copy(out, data[:size])
		return out
	}
	if position == PaddingLeft {
		copy(out[size-len(data):], data)
	} else {
		copy(out, data)
	}
	return out
}

// IntToBytes renders the low size bytes of u in the given byte order.
func IntToBytes[T constraints.Integer](u T, size int, order binary.ByteOrder) []byte {
	data := make([]byte, 8)
	order.PutUint64(data, uint64(u))

	switch order {
	case binary.LittleEndian:
		return data[:size]
	default:
		return data[8-size:]
	}
}
