package core

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/vuuvv/errors"
	"github.com/vuuvv/simlink/utils"
)

// Struct is implemented by fixed-layout values that know how to read and
// write themselves through a Cursor. Used for nested sub-structures inside
// packets and data definitions.
type Struct interface {
	Decode(c *Cursor) error
	Encode(c *Cursor) error
}

// Cursor is a position-tracked view over a byte buffer. All numeric access
// is little-endian with no alignment padding between fields. Every read or
// write advances the position by exactly the number of bytes consumed or
// produced; a failed read leaves the position where it was.
//
// A Cursor is never shared across goroutines, each decode or encode call
// owns a private one over its own buffer.
type Cursor struct {
	data []byte
	pos  int
	wbuf *bytes.Buffer // write mode only
}

// NewCursor returns a read cursor over data.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// NewWriteCursor returns a cursor that appends to an internal buffer.
func NewWriteCursor() *Cursor {
	return &Cursor{wbuf: &bytes.Buffer{}}
}

// Pos reports the current position: bytes consumed in read mode, bytes
// produced in write mode.
func (c *Cursor) Pos() int {
	if c.wbuf != nil {
		return c.wbuf.Len()
	}
	return c.pos
}

// Remaining reports how many unread bytes are left. Zero in write mode.
func (c *Cursor) Remaining() int {
	if c.wbuf != nil {
		return 0
	}
	return len(c.data) - c.pos
}

// Bytes returns the written buffer.
func (c *Cursor) Bytes() []byte {
	if c.wbuf == nil {
		return c.data
	}
	return c.wbuf.Bytes()
}

func (c *Cursor) require(op string, n int) error {
	if have := len(c.data) - c.pos; have < n {
		return errors.WithStack(&OutOfRangeError{Op: op, Need: n, Have: have})
	}
	return nil
}

// ReadBytes consumes exactly n bytes and returns a copy, so decoded values
// never alias the transport's buffer.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, errors.Errorf("ReadBytes: negative size %d", n)
	}
	if err := c.require("ReadBytes", n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, c.data[c.pos:c.pos+n])
	c.pos += n
	return out, nil
}

func (c *Cursor) ReadU32() (uint32, error) {
	if err := c.require("ReadU32", 4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(c.data[c.pos:])
	c.pos += 4
	return v, nil
}

func (c *Cursor) ReadI32() (int32, error) {
	v, err := c.ReadU32()
	return int32(v), err
}

func (c *Cursor) ReadI64() (int64, error) {
	if err := c.require("ReadI64", 8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(c.data[c.pos:])
	c.pos += 8
	return int64(v), nil
}

func (c *Cursor) ReadF32() (float32, error) {
	if err := c.require("ReadF32", 4); err != nil {
		return 0, err
	}
	v := math.Float32frombits(binary.LittleEndian.Uint32(c.data[c.pos:]))
	c.pos += 4
	return v, nil
}

func (c *Cursor) ReadF64() (float64, error) {
	if err := c.require("ReadF64", 8); err != nil {
		return 0, err
	}
	v := math.Float64frombits(binary.LittleEndian.Uint64(c.data[c.pos:]))
	c.pos += 8
	return v, nil
}

// ReadFixedString consumes exactly n bytes and returns the text up to the
// first NUL. Bytes after the NUL are padding and are discarded.
func (c *Cursor) ReadFixedString(n int) (string, error) {
	if err := c.require("ReadFixedString", n); err != nil {
		return "", err
	}
	raw := c.data[c.pos : c.pos+n]
	c.pos += n
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	return string(raw), nil
}

// ReadStruct delegates to the value's own field-by-field decoder.
func (c *Cursor) ReadStruct(s Struct) error {
	return s.Decode(c)
}

func (c *Cursor) WriteBytes(data []byte) error {
	if c.wbuf == nil {
		return errors.New("WriteBytes: cursor is read-only")
	}
	_, err := c.wbuf.Write(data)
	return errors.WithStack(err)
}

func (c *Cursor) WriteU32(v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return c.WriteBytes(buf[:])
}

func (c *Cursor) WriteI32(v int32) error {
	return c.WriteU32(uint32(v))
}

func (c *Cursor) WriteI64(v int64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	return c.WriteBytes(buf[:])
}

func (c *Cursor) WriteF32(v float32) error {
	return c.WriteU32(math.Float32bits(v))
}

func (c *Cursor) WriteF64(v float64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
	return c.WriteBytes(buf[:])
}

// WriteFixedString writes at most n bytes of s and zero-pads the remainder.
// A longer s is truncated, never allowed to overflow the fixed field.
func (c *Cursor) WriteFixedString(s string, n int) error {
	return c.WriteBytes(utils.ResizeBytes([]byte(s), n, 0, utils.PaddingRight))
}

func (c *Cursor) WriteStruct(s Struct) error {
	return s.Encode(c)
}
