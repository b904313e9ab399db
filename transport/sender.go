package transport

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/vuuvv/errors"
	"github.com/vuuvv/simlink/core"
	"github.com/vuuvv/simlink/datadef"
	"github.com/vuuvv/simlink/utils"
)

// ProtocolVersion is the client protocol version stamped on every outbound
// envelope.
const ProtocolVersion uint32 = 0x4

// Outbound discriminants carry a high marker bit so the host never
// confuses them with inbound ids.
const sendMarker uint32 = 0xF0000000

const (
	sendIDAddToDataDefinition    uint32 = 0x0C
	sendIDRequestDataOnSimObject uint32 = 0x0E
	sendIDSetDataOnSimObject     uint32 = 0x10
	sendIDRequestFacilitiesList  uint32 = 0x43
)

// FacilityListType selects which facility catalog a list request walks.
type FacilityListType uint32

const (
	FacilityTypeAirport FacilityListType = iota
	FacilityTypeWaypoint
	FacilityTypeNDB
	FacilityTypeVOR
)

// Sender encodes outbound host calls onto a Transport. Each call gets a
// fresh send id, the counter the host echoes back in exception packets.
type Sender struct {
	transport Transport
	sendID    uint32
}

func NewSender(t Transport) *Sender {
	return &Sender{transport: t}
}

// LastSendID reports the id of the most recent outbound packet, for
// correlating host exceptions.
func (s *Sender) LastSendID() uint32 {
	return atomic.LoadUint32(&s.sendID)
}

func (s *Sender) send(op uint32, body func(c *core.Cursor) error) error {
	c := core.NewWriteCursor()
	// size is backfilled below, once the body length is known
	if err := c.WriteU32(0); err != nil {
		return err
	}
	if err := c.WriteU32(ProtocolVersion); err != nil {
		return err
	}
	if err := c.WriteU32(sendMarker | op); err != nil {
		return err
	}
	if err := c.WriteU32(atomic.AddUint32(&s.sendID, 1)); err != nil {
		return err
	}
	if err := body(c); err != nil {
		return err
	}

	buf := c.Bytes()
	copy(buf[0:4], utils.IntToBytes(len(buf), 4, binary.LittleEndian))
	return errors.Wrapf(s.transport.Send(buf), "send packet 0x%02X", op)
}

// AddToDataDefinition registers one (variable, unit, wire type) binding
// under the definition id, in the order the registry walks record fields.
func (s *Sender) AddToDataDefinition(defineID uint32, name, unit string, wire datadef.WireType, size int) error {
	return s.send(sendIDAddToDataDefinition, func(c *core.Cursor) error {
		if err := c.WriteU32(defineID); err != nil {
			return err
		}
		if err := c.WriteFixedString(name, 256); err != nil {
			return err
		}
		if err := c.WriteFixedString(unit, 256); err != nil {
			return err
		}
		if err := c.WriteU32(uint32(wire)); err != nil {
			return err
		}
		return c.WriteU32(uint32(size))
	})
}

// RequestDataOnSimObject asks the host to deliver object data packets for
// the definition at the given period.
func (s *Sender) RequestDataOnSimObject(defineID, requestID, objectID uint32, period datadef.Period, onlyOnChange bool) error {
	return s.send(sendIDRequestDataOnSimObject, func(c *core.Cursor) error {
		for _, v := range []uint32{requestID, defineID, objectID, uint32(period)} {
			if err := c.WriteU32(v); err != nil {
				return err
			}
		}
		var flags uint32
		if onlyOnChange {
			flags = 1
		}
		if err := c.WriteU32(flags); err != nil {
			return err
		}
		// origin, interval, limit: deliver from now on, every period, forever
		for i := 0; i < 3; i++ {
			if err := c.WriteU32(0); err != nil {
				return err
			}
		}
		return nil
	})
}

// SetDataOnSimObject pushes an encoded definition buffer at the object.
func (s *Sender) SetDataOnSimObject(defineID, objectID uint32, data []byte) error {
	return s.send(sendIDSetDataOnSimObject, func(c *core.Cursor) error {
		for _, v := range []uint32{defineID, objectID, 0, 1, uint32(len(data))} {
			if err := c.WriteU32(v); err != nil {
				return err
			}
		}
		return c.WriteBytes(data)
	})
}

// RequestFacilitiesList asks for a one-shot dump of one facility catalog;
// the host answers with a sequence of the matching list packets.
func (s *Sender) RequestFacilitiesList(facility FacilityListType, requestID uint32) error {
	return s.send(sendIDRequestFacilitiesList, func(c *core.Cursor) error {
		if err := c.WriteU32(uint32(facility)); err != nil {
			return err
		}
		return c.WriteU32(requestID)
	})
}
