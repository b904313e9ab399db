package datadef

import (
	"reflect"
	"sync"

	"github.com/vuuvv/errors"
	"github.com/vuuvv/simlink/log"
	"go.uber.org/zap"
)

// Period says how often the host should deliver data for a request.
type Period uint32

const (
	PeriodNever Period = iota
	PeriodOnce
	PeriodVisualFrame
	PeriodSimFrame
	PeriodSecond
)

// HostCalls is the narrow surface the registry needs from the transport:
// the three outbound definition calls, fulfilled by the host.
type HostCalls interface {
	AddToDataDefinition(defineID uint32, name, unit string, wire WireType, size int) error
	RequestDataOnSimObject(defineID, requestID, objectID uint32, period Period, onlyOnChange bool) error
	SetDataOnSimObject(defineID, objectID uint32, data []byte) error
}

// baseDefineID is where definition ids start; they grow by one per
// registered record type and stay stable for the session's lifetime.
const baseDefineID uint32 = 1

// Registry owns the FieldSpec metadata derived from record types and the
// definition ids assigned to them. Marshalling borrows that metadata per
// call and never mutates it.
type Registry struct {
	mu    sync.Mutex
	host  HostCalls
	types map[reflect.Type]*Definition
	ids   map[uint32]*Definition
	next  uint32
}

func NewRegistry(host HostCalls) *Registry {
	return &Registry{
		host:  host,
		types: make(map[reflect.Type]*Definition),
		ids:   make(map[uint32]*Definition),
		next:  baseDefineID,
	}
}

func recordType(prototype any) (reflect.Type, error) {
	t := reflect.TypeOf(prototype)
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, illegal("", "record prototype must be a struct, got %T", prototype)
	}
	return t, nil
}

// Register derives the definition of the prototype's type, assigns the next
// definition id and issues one AddToDataDefinition call per field, in
// declaration order. Re-registering an already registered type is
// idempotent: the existing definition comes back and no host calls go out.
//
// Registration is all-or-nothing. A field that cannot be mapped fails before
// any host call goes out and the reserved id stays free for the next type. A
// host call the host rejects also fails the whole registration, but once
// earlier adds went out under the id, the host holds a partial definition
// there; the id is burned rather than handed to the next type, which would
// otherwise inherit the rejected type's fields. Entries for other record
// types are untouched either way.
func (r *Registry) Register(prototype any) (*Definition, error) {
	t, err := recordType(prototype)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if def, ok := r.types[t]; ok {
		return def, nil
	}

	fields, size, err := scanType(t)
	if err != nil {
		return nil, errors.Wrapf(err, "register %s", t)
	}

	def := &Definition{ID: r.next, Type: t, Fields: fields, Size: size}
	for i, f := range def.Fields {
		if err := r.host.AddToDataDefinition(def.ID, f.Name, f.Unit, f.Wire, f.Size); err != nil {
			if i > 0 {
				// the host already holds adds under this id
				r.next++
			}
			return nil, errors.Wrapf(err, "register %s: add '%s' to definition %d", t, f.Name, def.ID)
		}
	}

	r.types[t] = def
	r.ids[def.ID] = def
	r.next++
	log.Debug("data definition registered",
		zap.String("type", t.String()),
		zap.Uint32("defineId", def.ID),
		zap.Int("fields", len(def.Fields)),
		zap.Int("size", def.Size))
	return def, nil
}

// Lookup returns the definition registered under id, or nil.
func (r *Registry) Lookup(id uint32) *Definition {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ids[id]
}

// Definition returns the cached definition of the prototype's type, or nil
// when it was never registered.
func (r *Registry) Definition(prototype any) *Definition {
	t, err := recordType(prototype)
	if err != nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.types[t]
}

// RequestData asks the host to deliver object data on the definition, at
// the given period, for the given object.
func (r *Registry) RequestData(def *Definition, requestID, objectID uint32, period Period, onlyOnChange bool) error {
	return errors.WithStack(r.host.RequestDataOnSimObject(def.ID, requestID, objectID, period, onlyOnChange))
}

// SetData encodes the record against the definition and sends it to the
// host as a set-object-data request.
func (r *Registry) SetData(def *Definition, objectID uint32, rec any) error {
	buf, err := Marshal(rec, def)
	if err != nil {
		return err
	}
	return errors.WithStack(r.host.SetDataOnSimObject(def.ID, objectID, buf))
}
