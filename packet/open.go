package packet

import (
	"fmt"

	"github.com/vuuvv/simlink/core"
)

// RecvNull is the empty keep-alive variant.
type RecvNull struct {
	Recv
}

func decodeNull(env Envelope, c *core.Cursor) (Packet, error) {
	return &RecvNull{Recv{env}}, nil
}

// RecvQuit signals that the host is shutting the session down. Dispatching
// it terminates the run loop.
type RecvQuit struct {
	Recv
}

func decodeQuit(env Envelope, c *core.Cursor) (Packet, error) {
	return &RecvQuit{Recv{env}}, nil
}

// RecvException reports a request the host rejected. SendID identifies the
// offending outbound packet, Index the offending parameter within it.
type RecvException struct {
	Recv
	ExceptionID uint32
	SendID      uint32
	Index       uint32
}

func decodeException(env Envelope, c *core.Cursor) (Packet, error) {
	p := &RecvException{Recv: Recv{env}}
	var err error
	if p.ExceptionID, err = c.ReadU32(); err != nil {
		return nil, err
	}
	if p.SendID, err = c.ReadU32(); err != nil {
		return nil, err
	}
	if p.Index, err = c.ReadU32(); err != nil {
		return nil, err
	}
	return p, nil
}

// RecvOpen is the host's answer to a connection open: the simulator's name
// plus application and protocol version/build numbers.
type RecvOpen struct {
	Recv
	ApplicationName      string
	AppVerMajor          uint32
	AppVerMinor          uint32
	AppBuildMajor        uint32
	AppBuildMinor        uint32
	SimConnectVerMajor   uint32
	SimConnectVerMinor   uint32
	SimConnectBuildMajor uint32
	SimConnectBuildMinor uint32
	Reserved1            uint32
	Reserved2            uint32
}

func decodeOpen(env Envelope, c *core.Cursor) (Packet, error) {
	p := &RecvOpen{Recv: Recv{env}}
	var err error
	if p.ApplicationName, err = c.ReadFixedString(256); err != nil {
		return nil, err
	}
	for _, dst := range []*uint32{
		&p.AppVerMajor, &p.AppVerMinor, &p.AppBuildMajor, &p.AppBuildMinor,
		&p.SimConnectVerMajor, &p.SimConnectVerMinor,
		&p.SimConnectBuildMajor, &p.SimConnectBuildMinor,
		&p.Reserved1, &p.Reserved2,
	} {
		if *dst, err = c.ReadU32(); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *RecvOpen) String() string {
	return fmt.Sprintf("%s ( ver %d.%d build %d.%d ) simconnect %d.%d build %d.%d",
		p.ApplicationName,
		p.AppVerMajor, p.AppVerMinor, p.AppBuildMajor, p.AppBuildMinor,
		p.SimConnectVerMajor, p.SimConnectVerMinor,
		p.SimConnectBuildMajor, p.SimConnectBuildMinor)
}

// RecvAssignedObjectID reports the object id the host assigned to an AI
// creation request.
type RecvAssignedObjectID struct {
	Recv
	RequestID uint32
	ObjectID  uint32
}

func decodeAssignedObjectID(env Envelope, c *core.Cursor) (Packet, error) {
	p := &RecvAssignedObjectID{Recv: Recv{env}}
	var err error
	if p.RequestID, err = c.ReadU32(); err != nil {
		return nil, err
	}
	if p.ObjectID, err = c.ReadU32(); err != nil {
		return nil, err
	}
	return p, nil
}

// RecvReservedKey is the host's answer to a reserved key request.
type RecvReservedKey struct {
	Recv
	ChoiceReserved string // 30-byte fixed field on the wire
	ReservedKey    string // 50-byte fixed field on the wire
}

func decodeReservedKey(env Envelope, c *core.Cursor) (Packet, error) {
	p := &RecvReservedKey{Recv: Recv{env}}
	var err error
	if p.ChoiceReserved, err = c.ReadFixedString(30); err != nil {
		return nil, err
	}
	if p.ReservedKey, err = c.ReadFixedString(50); err != nil {
		return nil, err
	}
	return p, nil
}

// RecvSystemState is the host's answer to a system state request. Which of
// the three value slots is meaningful depends on the requested state name.
type RecvSystemState struct {
	Recv
	RequestID uint32
	Integer   uint32
	Float     float32
	String    string // 260-byte fixed field on the wire
}

func decodeSystemState(env Envelope, c *core.Cursor) (Packet, error) {
	p := &RecvSystemState{Recv: Recv{env}}
	var err error
	if p.RequestID, err = c.ReadU32(); err != nil {
		return nil, err
	}
	if p.Integer, err = c.ReadU32(); err != nil {
		return nil, err
	}
	if p.Float, err = c.ReadF32(); err != nil {
		return nil, err
	}
	if p.String, err = c.ReadFixedString(260); err != nil {
		return nil, err
	}
	return p, nil
}

// RecvCustomAction notifies a custom mission action firing. The payload is
// free-form text owned by the action's author.
type RecvCustomAction struct {
	RecvEvent
	InstanceID    [16]byte
	WaypointCount uint32
	Payload       string
}

func decodeCustomAction(env Envelope, c *core.Cursor) (Packet, error) {
	ev, err := readEvent(env, c)
	if err != nil {
		return nil, err
	}
	p := &RecvCustomAction{RecvEvent: *ev}
	guid, err := c.ReadBytes(16)
	if err != nil {
		return nil, err
	}
	copy(p.InstanceID[:], guid)
	if p.WaypointCount, err = c.ReadU32(); err != nil {
		return nil, err
	}
	payload, err := c.ReadBytes(c.Remaining())
	if err != nil {
		return nil, err
	}
	p.Payload = trimNul(payload)
	return p, nil
}
