package packet

import (
	"bytes"

	"github.com/vuuvv/simlink/core"
)

func trimNul(raw []byte) string {
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	return string(raw)
}

// RecvSimObjectData delivers one data-definition payload for a simulated
// object. Data holds the raw definition buffer; the request id tells the
// caller which registered definition decodes it.
type RecvSimObjectData struct {
	Recv
	RequestID   uint32
	ObjectID    uint32
	DefineID    uint32
	Flags       uint32
	EntryNumber uint32
	OutOf       uint32
	DefineCount uint32
	Data        []byte
}

// ObjectData returns the shared object-data layout; embedders inherit it.
func (p *RecvSimObjectData) ObjectData() *RecvSimObjectData { return p }

func readSimObjectData(env Envelope, c *core.Cursor) (*RecvSimObjectData, error) {
	p := &RecvSimObjectData{Recv: Recv{env}}
	var err error
	for _, dst := range []*uint32{
		&p.RequestID, &p.ObjectID, &p.DefineID, &p.Flags,
		&p.EntryNumber, &p.OutOf, &p.DefineCount,
	} {
		if *dst, err = c.ReadU32(); err != nil {
			return nil, err
		}
	}
	if p.Data, err = c.ReadBytes(c.Remaining()); err != nil {
		return nil, err
	}
	return p, nil
}

func decodeSimObjectData(env Envelope, c *core.Cursor) (Packet, error) {
	return readSimObjectData(env, c)
}

// RecvSimObjectDataByType is object data delivered for a request keyed by
// object type rather than a specific object id. Same wire layout.
type RecvSimObjectDataByType struct {
	RecvSimObjectData
}

func decodeSimObjectDataByType(env Envelope, c *core.Cursor) (Packet, error) {
	p, err := readSimObjectData(env, c)
	if err != nil {
		return nil, err
	}
	return &RecvSimObjectDataByType{RecvSimObjectData: *p}, nil
}

// RecvClientData delivers a client-data area payload. Same wire layout as
// object data.
type RecvClientData struct {
	RecvSimObjectData
}

func decodeClientData(env Envelope, c *core.Cursor) (Packet, error) {
	p, err := readSimObjectData(env, c)
	if err != nil {
		return nil, err
	}
	return &RecvClientData{RecvSimObjectData: *p}, nil
}

// RecvWeatherObservation carries a METAR string for a requested station.
type RecvWeatherObservation struct {
	Recv
	RequestID uint32
	Metar     string
}

func decodeWeatherObservation(env Envelope, c *core.Cursor) (Packet, error) {
	p := &RecvWeatherObservation{Recv: Recv{env}}
	var err error
	if p.RequestID, err = c.ReadU32(); err != nil {
		return nil, err
	}
	raw, err := c.ReadBytes(c.Remaining())
	if err != nil {
		return nil, err
	}
	p.Metar = trimNul(raw)
	return p, nil
}

// RecvCloudState carries a cloud density grid for a requested area.
type RecvCloudState struct {
	Recv
	RequestID uint32
	Data      []byte
}

func decodeCloudState(env Envelope, c *core.Cursor) (Packet, error) {
	p := &RecvCloudState{Recv: Recv{env}}
	var err error
	if p.RequestID, err = c.ReadU32(); err != nil {
		return nil, err
	}
	arraySize, err := c.ReadU32()
	if err != nil {
		return nil, err
	}
	if p.Data, err = c.ReadBytes(int(arraySize)); err != nil {
		return nil, err
	}
	return p, nil
}
