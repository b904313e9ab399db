package dispatch

import (
	"github.com/vuuvv/errors"
	"github.com/vuuvv/simlink/core"
	"github.com/vuuvv/simlink/log"
	"github.com/vuuvv/simlink/packet"
)

// TapFunc observes a packet matched by a tap. Taps run before normal
// dispatch and cannot reject or mutate the packet.
type TapFunc func(p packet.Packet)

type tap struct {
	expr   string
	filter *core.Filter
	fn     TapFunc
}

// AddTap installs a diagnostic tap: a CEL predicate over the packet's
// envelope and a few variant fields. Matching packets are handed to fn
// before the dispatch round. Predicate evaluation errors are logged, never
// propagated into dispatch.
//
// Example expressions:
//
//	kind == "Exception"
//	kind == "Event" && fields.event == 42u
//	size > 1024u
func (d *Dispatcher) AddTap(expr string, fn TapFunc) error {
	filter, err := core.CompileFilter(expr)
	if err != nil {
		return errors.Wrapf(err, "compile tap expression '%s'", expr)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.taps = append(d.taps, &tap{expr: expr, filter: filter, fn: fn})
	return nil
}

func (t *tap) offer(p packet.Packet) {
	ok, err := t.filter.Match(tapInput(p))
	if err != nil {
		log.Warn(errors.Wrapf(err, "tap '%s' evaluation failed", t.expr))
		return
	}
	if ok {
		t.fn(p)
	}
}

func tapInput(p packet.Packet) map[string]any {
	env := p.Envelope()
	fields := map[string]any{}
	switch v := p.(type) {
	case *packet.RecvOpen:
		fields["application"] = v.ApplicationName
	case *packet.RecvException:
		fields["exception"] = uint64(v.ExceptionID)
		fields["sendId"] = uint64(v.SendID)
		fields["index"] = uint64(v.Index)
	default:
		if od, ok := p.(interface {
			ObjectData() *packet.RecvSimObjectData
		}); ok {
			o := od.ObjectData()
			fields["request"] = uint64(o.RequestID)
			fields["object"] = uint64(o.ObjectID)
			fields["define"] = uint64(o.DefineID)
		}
		if ev, ok := p.(interface{ Event() *packet.RecvEvent }); ok {
			e := ev.Event()
			fields["group"] = uint64(e.GroupID)
			fields["event"] = uint64(e.EventID)
			fields["data"] = uint64(e.Data)
		}
	}
	return map[string]any{
		"kind":    p.RecvID().String(),
		"id":      uint64(env.ID),
		"size":    uint64(env.Size),
		"version": uint64(env.Version),
		"fields":  fields,
	}
}
