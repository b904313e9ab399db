package core

import (
	"fmt"
)

// OutOfRangeError reports a cursor read or write past the end of its buffer.
// It always indicates a framing bug in the sender or a corrupted stream; the
// packet carrying it is discarded, never retried.
type OutOfRangeError struct {
	Op   string
	Need int
	Have int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s: out of range, need %d bytes, have %d", e.Op, e.Need, e.Have)
}

// UnrecognizedPacketError reports a wire discriminant with no decoder in the
// catalog. Not fatal: the catalog surfaces the packet as an Unrecognized
// variant carrying the raw bytes, this error exists for callers that want to
// log it.
type UnrecognizedPacketError struct {
	ID uint32
}

func (e *UnrecognizedPacketError) Error() string {
	return fmt.Sprintf("unrecognized packet id 0x%08X", e.ID)
}

// IllegalDataDefinitionError reports record metadata that cannot be turned
// into a valid data definition, or a field access failing during encode or
// decode. Fatal to the single registration or marshal call, never to the
// registry's other entries.
type IllegalDataDefinitionError struct {
	Field  string
	Reason string
}

func (e *IllegalDataDefinitionError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("illegal data definition: %s", e.Reason)
	}
	return fmt.Sprintf("illegal data definition, field '%s': %s", e.Field, e.Reason)
}
