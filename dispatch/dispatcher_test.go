package dispatch

import (
	"encoding/binary"
	"io"
	"testing"

	"github.com/vuuvv/errors"
	"github.com/vuuvv/simlink/core"
	"github.com/vuuvv/simlink/packet"
)

func buildPacket(t *testing.T, id uint32, body func(c *core.Cursor)) []byte {
	t.Helper()
	c := core.NewWriteCursor()
	for _, v := range []uint32{0, 0x4, id} {
		if err := c.WriteU32(v); err != nil {
			t.Fatal(err)
		}
	}
	if body != nil {
		body(c)
	}
	buf := c.Bytes()
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(buf)))
	return buf
}

func eventPacket(t *testing.T, eventID uint32) packet.Packet {
	t.Helper()
	p, err := packet.Decode(buildPacket(t, uint32(packet.RecvIDEvent), func(c *core.Cursor) {
		for _, v := range []uint32{packet.UnknownGroup, eventID, 0} {
			if err := c.WriteU32(v); err != nil {
				t.Fatal(err)
			}
		}
	}))
	if err != nil {
		t.Fatal(err)
	}
	return p
}

// orderedHandler records the order its callbacks ran in, shared across
// handlers through the trace pointer.
type orderedHandler struct {
	name  string
	trace *[]string
	fail  bool
	panic bool
}

func (h *orderedHandler) HandleEvent(source Source, p *packet.RecvEvent) error {
	*h.trace = append(*h.trace, h.name)
	if h.panic {
		panic("handler exploded")
	}
	if h.fail {
		return errors.Errorf("%s failed", h.name)
	}
	return nil
}

func (h *orderedHandler) HandleQuit(source Source, p *packet.RecvQuit) error {
	*h.trace = append(*h.trace, h.name+":quit")
	return nil
}

func TestDispatchInvokesInRegistrationOrder(t *testing.T) {
	var trace []string
	d := NewDispatcher(nil)
	if err := d.Register(&orderedHandler{name: "H1", trace: &trace}); err != nil {
		t.Fatal(err)
	}
	if err := d.Register(&orderedHandler{name: "H2", trace: &trace}); err != nil {
		t.Fatal(err)
	}

	for round := 0; round < 3; round++ {
		trace = trace[:0]
		if err := d.Dispatch(eventPacket(t, 7)); err != nil {
			t.Fatal(err)
		}
		if len(trace) != 2 || trace[0] != "H1" || trace[1] != "H2" {
			t.Fatalf("round %d order %v", round, trace)
		}
	}
}

func TestDispatchContinuesPastFailingHandler(t *testing.T) {
	var trace []string
	d := NewDispatcher(nil)
	_ = d.Register(&orderedHandler{name: "H1", trace: &trace, fail: true})
	_ = d.Register(&orderedHandler{name: "H2", trace: &trace, panic: true})
	_ = d.Register(&orderedHandler{name: "H3", trace: &trace})

	err := d.Dispatch(eventPacket(t, 7))
	if err == nil {
		t.Fatal("round errors must be reported once afterwards")
	}
	if len(trace) != 3 {
		t.Fatalf("trace %v: failing handlers must not stop the round", trace)
	}
}

func TestDispatchUnregisteredKindIsQuiet(t *testing.T) {
	d := NewDispatcher(nil)
	raw := buildPacket(t, 0xFFFFFFFF, func(c *core.Cursor) {
		_ = c.WriteBytes([]byte{1, 2, 3})
	})
	p, err := packet.Decode(raw)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Dispatch(p); err != nil {
		t.Fatalf("dispatching an unrecognized packet must not error: %v", err)
	}
}

func TestRegisterRejectsCapabilityFreeTarget(t *testing.T) {
	d := NewDispatcher(nil)
	if err := d.Register(struct{}{}); err == nil {
		t.Fatal("a target with no handler capability is a registration bug")
	}
}

// facilityRecorder records which of the four list methods ran.
type facilityRecorder struct {
	called []string
}

func (f *facilityRecorder) HandleAirportList(Source, *packet.RecvAirportList) error {
	f.called = append(f.called, "airport")
	return nil
}
func (f *facilityRecorder) HandleWaypointList(Source, *packet.RecvWaypointList) error {
	f.called = append(f.called, "waypoint")
	return nil
}
func (f *facilityRecorder) HandleVORList(Source, *packet.RecvVORList) error {
	f.called = append(f.called, "vor")
	return nil
}
func (f *facilityRecorder) HandleNDBList(Source, *packet.RecvNDBList) error {
	f.called = append(f.called, "ndb")
	return nil
}

func TestFacilitiesFanOutPicksTheMatchingMethod(t *testing.T) {
	rec := &facilityRecorder{}
	d := NewDispatcher(nil)
	if err := d.Register(rec); err != nil {
		t.Fatal(err)
	}

	raw := buildPacket(t, uint32(packet.RecvIDVORList), func(c *core.Cursor) {
		for _, v := range []uint32{1, 0, 0, 1} {
			_ = c.WriteU32(v)
		}
	})
	p, err := packet.Decode(raw)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Dispatch(p); err != nil {
		t.Fatal(err)
	}
	if len(rec.called) != 1 || rec.called[0] != "vor" {
		t.Fatalf("called %v, want exactly the vor method", rec.called)
	}
}

// scriptedSource replays a fixed sequence of raw packets.
type scriptedSource struct {
	packets [][]byte
}

func (s *scriptedSource) Recv() ([]byte, error) {
	if len(s.packets) == 0 {
		return nil, io.EOF
	}
	p := s.packets[0]
	s.packets = s.packets[1:]
	return p, nil
}

func TestRunStopsAfterQuit(t *testing.T) {
	var trace []string
	d := NewDispatcher(nil)
	_ = d.Register(&orderedHandler{name: "H", trace: &trace})

	src := &scriptedSource{packets: [][]byte{
		buildPacket(t, uint32(packet.RecvIDEvent), func(c *core.Cursor) {
			for _, v := range []uint32{0, 1, 0} {
				_ = c.WriteU32(v)
			}
		}),
		buildPacket(t, uint32(packet.RecvIDQuit), nil),
		buildPacket(t, uint32(packet.RecvIDEvent), func(c *core.Cursor) {
			for _, v := range []uint32{0, 2, 0} {
				_ = c.WriteU32(v)
			}
		}),
	}}

	if err := d.Run(src); err != nil {
		t.Fatal(err)
	}
	want := []string{"H", "H:quit"}
	if len(trace) != 2 || trace[0] != want[0] || trace[1] != want[1] {
		t.Fatalf("trace %v: run must stop at quit, before the third packet", trace)
	}
	if len(src.packets) != 1 {
		t.Fatal("the packet after quit must stay unread")
	}
}

func TestRunSurvivesUndecodablePacket(t *testing.T) {
	var trace []string
	d := NewDispatcher(nil)
	_ = d.Register(&orderedHandler{name: "H", trace: &trace})

	bad := buildPacket(t, uint32(packet.RecvIDException), func(c *core.Cursor) {
		_ = c.WriteU32(1) // exception body is 12 bytes, give 4
	})
	src := &scriptedSource{packets: [][]byte{
		bad,
		buildPacket(t, uint32(packet.RecvIDQuit), nil),
	}}

	if err := d.Run(src); err != nil {
		t.Fatal(err)
	}
	if len(trace) != 1 || trace[0] != "H:quit" {
		t.Fatalf("trace %v", trace)
	}
}

func TestRunEndsOnTransportClosure(t *testing.T) {
	d := NewDispatcher(nil)
	if err := d.Run(&scriptedSource{}); err != nil {
		t.Fatalf("EOF is a clean stop: %v", err)
	}
}

func TestDispatchOne(t *testing.T) {
	var trace []string
	d := NewDispatcher(nil)
	_ = d.Register(&orderedHandler{name: "H", trace: &trace})

	src := &scriptedSource{packets: [][]byte{
		buildPacket(t, uint32(packet.RecvIDEvent), func(c *core.Cursor) {
			for _, v := range []uint32{0, 5, 0} {
				_ = c.WriteU32(v)
			}
		}),
	}}
	p, err := d.DispatchOne(src)
	if err != nil {
		t.Fatal(err)
	}
	if p.RecvID() != packet.RecvIDEvent || len(trace) != 1 {
		t.Fatalf("packet %v, trace %v", p.RecvID(), trace)
	}
}

func TestTapMatchesByExpression(t *testing.T) {
	d := NewDispatcher(nil)
	var tapped []packet.Packet
	err := d.AddTap(`kind == "Event" && fields.event == 7u`, func(p packet.Packet) {
		tapped = append(tapped, p)
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := d.Dispatch(eventPacket(t, 7)); err != nil {
		t.Fatal(err)
	}
	if err := d.Dispatch(eventPacket(t, 8)); err != nil {
		t.Fatal(err)
	}
	if len(tapped) != 1 {
		t.Fatalf("tapped %d packets, want 1", len(tapped))
	}
	if tapped[0].(*packet.RecvEvent).EventID != 7 {
		t.Fatalf("tapped the wrong packet: %+v", tapped[0])
	}
}

func TestHistoriesKeepRecentDispatches(t *testing.T) {
	var trace []string
	d := NewDispatcher(nil)
	_ = d.Register(&orderedHandler{name: "H", trace: &trace})

	for i := 0; i < 5; i++ {
		if err := d.Dispatch(eventPacket(t, uint32(i))); err != nil {
			t.Fatal(err)
		}
	}
	hist := d.Histories()
	if len(hist) != 5 {
		t.Fatalf("history holds %d records", len(hist))
	}
	if hist[0].Packet.RecvID() != packet.RecvIDEvent {
		t.Fatalf("record %+v", hist[0])
	}
}
