// Package datadef maps application record types to and from the host's
// fixed-layout data definitions.
//
// A record type declares per-field metadata with struct tags:
//
//	type PlaneState struct {
//		Altitude float64 `sim:"PLANE ALTITUDE" unit:"feet"`
//		OnGround int32   `sim:"SIM ON GROUND" unit:"bool"`
//		Flight   string  `sim:"ATC FLIGHT NUMBER,len=6"`
//	}
//
// The wire type derives from the Go field type: float64, int32, or a
// fixed-length string whose byte length comes from the len option (256 when
// absent). A nested struct flattens into its own tagged fields in place.
// Untagged fields and fields tagged sim:"-" are not part of the definition.
//
// The descriptor table is built once per type and cached by type identity;
// nothing here reflects per marshal call.
package datadef

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/vuuvv/errors"
	"github.com/vuuvv/simlink/core"
)

// WireType is the on-wire representation of one definition field.
type WireType uint32

const (
	WireFloat64 WireType = iota
	WireInt32
	WireString
)

func (w WireType) String() string {
	switch w {
	case WireFloat64:
		return "float64"
	case WireInt32:
		return "int32"
	case WireString:
		return "string"
	}
	return "invalid"
}

// DefaultStringLen is the fixed byte length of a string field that carries
// no len option.
const DefaultStringLen = 256

// FieldSpec is one (offset, wire type, variable, unit) entry of a data
// definition, bound to a field of the owning record type. The list order
// matches the order the variables were registered with the host; encode and
// decode walk both in lock-step.
type FieldSpec struct {
	Offset int
	Size   int
	Wire   WireType
	Name   string // simulation variable name
	Unit   string
	Index  []int // reflect field index path into the record type
}

// Definition is the cached descriptor table of one record type plus its
// session-stable definition id.
type Definition struct {
	ID     uint32
	Type   reflect.Type
	Fields []FieldSpec
	Size   int // total payload bytes, including any inter-field padding
}

func illegal(field, format string, args ...any) error {
	return errors.WithStack(&core.IllegalDataDefinitionError{
		Field:  field,
		Reason: errors.Errorf(format, args...).Error(),
	})
}

type tagOptions struct {
	name   string
	length int
	offset int // -1 when derived from the preceding fields
}

func parseTag(tag string) (tagOptions, error) {
	opts := tagOptions{length: DefaultStringLen, offset: -1}
	parts := strings.Split(tag, ",")
	opts.name = parts[0]
	for _, part := range parts[1:] {
		key, value, found := strings.Cut(part, "=")
		if !found {
			return opts, errors.Errorf("malformed tag option '%s'", part)
		}
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return opts, errors.Errorf("tag option '%s' is not a non-negative integer", part)
		}
		switch key {
		case "len":
			opts.length = n
		case "offset":
			opts.offset = n
		default:
			return opts, errors.Errorf("unknown tag option '%s'", key)
		}
	}
	return opts, nil
}

// scanType builds the FieldSpec list for a record struct type. Offsets are
// the sum of preceding wire sizes in declaration order; an explicit offset
// option may only move a field forward (padding), never onto bytes already
// owned by an earlier field. Duplicate or overlapping offsets are rejected
// rather than silently keeping the last field.
func scanType(t reflect.Type) ([]FieldSpec, int, error) {
	var fields []FieldSpec
	offset := 0
	if err := scanStruct(t, nil, &fields, &offset); err != nil {
		return nil, 0, err
	}
	if len(fields) == 0 {
		return nil, 0, illegal("", "type %s declares no sim-tagged fields", t)
	}
	return fields, offset, nil
}

func scanStruct(t reflect.Type, index []int, fields *[]FieldSpec, offset *int) error {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" { // unexported
			continue
		}
		path := append(append([]int(nil), index...), i)

		tag, tagged := sf.Tag.Lookup("sim")
		if tag == "-" {
			continue
		}
		if !tagged {
			if sf.Type.Kind() == reflect.Struct {
				if err := scanStruct(sf.Type, path, fields, offset); err != nil {
					return err
				}
			}
			continue
		}

		opts, err := parseTag(tag)
		if err != nil {
			return illegal(sf.Name, "%s", err.Error())
		}
		if opts.name == "" {
			return illegal(sf.Name, "empty simulation variable name")
		}

		spec := FieldSpec{
			Name:  opts.name,
			Unit:  sf.Tag.Get("unit"),
			Index: path,
		}
		switch sf.Type.Kind() {
		case reflect.Float64:
			spec.Wire, spec.Size = WireFloat64, 8
		case reflect.Int32:
			spec.Wire, spec.Size = WireInt32, 4
		case reflect.String:
			if opts.length == 0 {
				return illegal(sf.Name, "string field needs a non-zero len option")
			}
			spec.Wire, spec.Size = WireString, opts.length
		default:
			return illegal(sf.Name, "unsupported field type %s", sf.Type)
		}

		spec.Offset = *offset
		if opts.offset >= 0 {
			if opts.offset < *offset {
				return illegal(sf.Name, "offset %d overlaps bytes already assigned (next free is %d)", opts.offset, *offset)
			}
			spec.Offset = opts.offset
		}
		*offset = spec.Offset + spec.Size
		*fields = append(*fields, spec)
	}
	return nil
}
