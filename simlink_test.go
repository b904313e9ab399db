package simlink

import (
	"encoding/binary"
	"io"
	"testing"

	"github.com/vuuvv/simlink/core"
	"github.com/vuuvv/simlink/datadef"
	"github.com/vuuvv/simlink/dispatch"
	"github.com/vuuvv/simlink/packet"
)

// scriptTransport replays a fixed inbound packet sequence and captures
// everything sent.
type scriptTransport struct {
	inbound [][]byte
	sent    [][]byte
}

func (s *scriptTransport) Recv() ([]byte, error) {
	if len(s.inbound) == 0 {
		return nil, io.EOF
	}
	p := s.inbound[0]
	s.inbound = s.inbound[1:]
	return p, nil
}

func (s *scriptTransport) Send(data []byte) error {
	s.sent = append(s.sent, data)
	return nil
}

func hostPacket(t *testing.T, id packet.RecvID, body func(c *core.Cursor)) []byte {
	t.Helper()
	c := NewWriteCursor()
	for _, v := range []uint32{0, 0x4, uint32(id)} {
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

type flightIdent struct {
	FlightNumber string  `sim:"ATC FLIGHT NUMBER,len=6"`
	Altitude     float64 `sim:"PLANE ALTITUDE" unit:"feet"`
}

// sessionHandler drives a whole scripted session from inside its
// callbacks.
type sessionHandler struct {
	t       *testing.T
	def     *datadef.Definition
	opened  string
	records []*flightIdent
	quits   int
}

func (h *sessionHandler) HandleOpen(source dispatch.Source, p *packet.RecvOpen) error {
	h.opened = p.String()
	client := source.(*Client)
	return client.RequestDataOnSimObject(h.def, 1, 0, datadef.PeriodSecond, false)
}

func (h *sessionHandler) HandleSimObjectData(source dispatch.Source, p *packet.RecvSimObjectData) error {
	rec, err := datadef.UnmarshalPacket(p, h.def)
	if err != nil {
		return err
	}
	h.records = append(h.records, rec.(*flightIdent))
	return nil
}

func (h *sessionHandler) HandleQuit(dispatch.Source, *packet.RecvQuit) error {
	h.quits++
	return nil
}

func TestClientSession(t *testing.T) {
	st := &scriptTransport{}
	client := NewClient(st)

	def, err := client.RegisterDataDefinition(&flightIdent{})
	if err != nil {
		t.Fatal(err)
	}
	// two AddToDataDefinition calls went out, one per field
	if len(st.sent) != 2 {
		t.Fatalf("registration sent %d packets", len(st.sent))
	}

	payload, err := Marshal(&flightIdent{FlightNumber: "AF117", Altitude: 12000}, def)
	if err != nil {
		t.Fatal(err)
	}

	st.inbound = [][]byte{
		hostPacket(t, packet.RecvIDOpen, func(c *core.Cursor) {
			_ = c.WriteFixedString("Flight Simulator", 256)
			for _, v := range []uint32{1, 0, 0, 0, 0, 0, 0, 0, 0, 0} {
				_ = c.WriteU32(v)
			}
		}),
		hostPacket(t, packet.RecvIDSimObjectData, func(c *core.Cursor) {
			for _, v := range []uint32{1, 0, def.ID, 0, 0, 0, uint32(len(def.Fields))} {
				_ = c.WriteU32(v)
			}
			_ = c.WriteBytes(payload)
		}),
		hostPacket(t, packet.RecvIDQuit, nil),
	}

	h := &sessionHandler{t: t, def: def}
	if err = client.RegisterHandlers(h); err != nil {
		t.Fatal(err)
	}
	if err = client.Run(); err != nil {
		t.Fatal(err)
	}

	want := "Flight Simulator ( ver 1.0 build 0.0 ) simconnect 0.0 build 0.0"
	if h.opened != want {
		t.Fatalf("open banner %q, want %q", h.opened, want)
	}
	if h.quits != 1 {
		t.Fatalf("quit dispatched %d times", h.quits)
	}
	if len(h.records) != 1 {
		t.Fatalf("decoded %d records", len(h.records))
	}
	rec := h.records[0]
	if rec.FlightNumber != "AF117" || rec.Altitude != 12000 {
		t.Fatalf("record %+v", rec)
	}

	// the open handler issued a data request from inside its callback
	if len(st.sent) != 3 {
		t.Fatalf("session sent %d packets in total", len(st.sent))
	}
}

func TestDispatchOneStopsAtOnePacket(t *testing.T) {
	st := &scriptTransport{inbound: [][]byte{
		hostPacket(t, packet.RecvIDQuit, nil),
		hostPacket(t, packet.RecvIDQuit, nil),
	}}
	client := NewClient(st)

	h := &sessionHandler{t: t}
	if err := client.RegisterHandlers(h); err != nil {
		t.Fatal(err)
	}
	p, err := client.DispatchOne()
	if err != nil {
		t.Fatal(err)
	}
	if p.RecvID() != packet.RecvIDQuit || h.quits != 1 {
		t.Fatalf("packet %v, quits %d", p.RecvID(), h.quits)
	}
	if len(st.inbound) != 1 {
		t.Fatal("only one packet may be consumed")
	}
}
