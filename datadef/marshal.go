package datadef

import (
	"reflect"

	"github.com/vuuvv/errors"
	"github.com/vuuvv/simlink/core"
	"github.com/vuuvv/simlink/packet"
)

// Marshal encodes a record instance into a data definition buffer: fields
// walked in definition order, each written per its wire type, zero padding
// where an explicit offset left a gap. The result carries no envelope, it
// is the payload of an outbound set-object-data request keyed by the
// definition's id. Pure transformation, no host I/O.
func Marshal(rec any, def *Definition) ([]byte, error) {
	v := reflect.ValueOf(rec)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if !v.IsValid() || v.Type() != def.Type {
		return nil, illegal("", "record is %T, definition %d wants %s", rec, def.ID, def.Type)
	}

	c := core.NewWriteCursor()
	for i := range def.Fields {
		f := &def.Fields[i]
		if pad := f.Offset - c.Pos(); pad > 0 {
			if err := c.WriteBytes(make([]byte, pad)); err != nil {
				return nil, errors.WithStack(err)
			}
		}
		fv := v.FieldByIndex(f.Index)
		var err error
		switch f.Wire {
		case WireFloat64:
			err = c.WriteF64(fv.Float())
		case WireInt32:
			err = c.WriteI32(int32(fv.Int()))
		case WireString:
			err = c.WriteFixedString(fv.String(), f.Size)
		default:
			err = illegal(f.Name, "unsupported wire type %d", f.Wire)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "marshal field '%s'", f.Name)
		}
	}
	return c.Bytes(), nil
}

// Unmarshal decodes a data definition buffer into a freshly allocated
// record of the definition's type, returned as a pointer. It consumes
// exactly def.Size bytes; trailing bytes in data stay untouched for the
// caller. Pure transformation, no host I/O.
func Unmarshal(data []byte, def *Definition) (any, error) {
	c := core.NewCursor(data)
	out := reflect.New(def.Type)
	v := out.Elem()

	for i := range def.Fields {
		f := &def.Fields[i]
		if skip := f.Offset - c.Pos(); skip > 0 {
			if _, err := c.ReadBytes(skip); err != nil {
				return nil, errors.Wrapf(err, "unmarshal padding before '%s'", f.Name)
			}
		}
		fv := v.FieldByIndex(f.Index)
		if !fv.CanSet() {
			return nil, illegal(f.Name, "field is not settable")
		}
		var err error
		switch f.Wire {
		case WireFloat64:
			var x float64
			if x, err = c.ReadF64(); err == nil {
				fv.SetFloat(x)
			}
		case WireInt32:
			var x int32
			if x, err = c.ReadI32(); err == nil {
				fv.SetInt(int64(x))
			}
		case WireString:
			var s string
			if s, err = c.ReadFixedString(f.Size); err == nil {
				fv.SetString(s)
			}
		default:
			err = illegal(f.Name, "unsupported wire type %d", f.Wire)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "unmarshal field '%s'", f.Name)
		}
	}
	return out.Interface(), nil
}

// UnmarshalPacket decodes an inbound object data packet's payload. The
// caller pairs the packet with the definition through the packet's request
// id; that pairing is trusted here, not re-validated.
func UnmarshalPacket(p *packet.RecvSimObjectData, def *Definition) (any, error) {
	return Unmarshal(p.Data, def)
}
