package packet

import (
	"github.com/vuuvv/errors"
	"github.com/vuuvv/simlink/core"
)

// Facility list packets share a 16-byte sub-header immediately after the
// envelope, then ArraySize fixed-layout entries in sequence. Large result
// sets arrive as several packets; EntryNumber/OutOf place one packet in the
// sequence.
type FacilityList struct {
	Recv
	RequestID   uint32
	ArraySize   uint32
	EntryNumber uint32
	OutOf       uint32
}

func (p *FacilityList) readHeader(c *core.Cursor) error {
	var err error
	for _, dst := range []*uint32{&p.RequestID, &p.ArraySize, &p.EntryNumber, &p.OutOf} {
		if *dst, err = c.ReadU32(); err != nil {
			return err
		}
	}
	return nil
}

// Fixed wire size of one facility entry, per kind.
const (
	airportEntryBytes  = 33
	waypointEntryBytes = 37
	ndbEntryBytes      = 41
	vorEntryBytes      = 77
)

// checkEntries rejects a claimed ArraySize the body cannot hold. ArraySize
// comes straight off the wire, so it must be bounded before anything
// allocates by it.
func (p *FacilityList) checkEntries(c *core.Cursor, entryBytes int) error {
	if need := int64(p.ArraySize) * int64(entryBytes); need > int64(c.Remaining()) {
		return errors.WithStack(&core.OutOfRangeError{Op: "FacilityList entries", Need: int(need), Have: c.Remaining()})
	}
	return nil
}

// FacilityAirport is one airport entry: ICAO ident plus position.
type FacilityAirport struct {
	ICAO      string // 9-byte fixed field on the wire
	Latitude  float64
	Longitude float64
	Altitude  float64
}

func (f *FacilityAirport) Decode(c *core.Cursor) error {
	var err error
	if f.ICAO, err = c.ReadFixedString(9); err != nil {
		return err
	}
	if f.Latitude, err = c.ReadF64(); err != nil {
		return err
	}
	if f.Longitude, err = c.ReadF64(); err != nil {
		return err
	}
	f.Altitude, err = c.ReadF64()
	return err
}

func (f *FacilityAirport) Encode(c *core.Cursor) error {
	if err := c.WriteFixedString(f.ICAO, 9); err != nil {
		return err
	}
	if err := c.WriteF64(f.Latitude); err != nil {
		return err
	}
	if err := c.WriteF64(f.Longitude); err != nil {
		return err
	}
	return c.WriteF64(f.Altitude)
}

// FacilityWaypoint is an airport entry plus magnetic variation.
type FacilityWaypoint struct {
	FacilityAirport
	MagVar float32
}

func (f *FacilityWaypoint) Decode(c *core.Cursor) error {
	if err := f.FacilityAirport.Decode(c); err != nil {
		return err
	}
	var err error
	f.MagVar, err = c.ReadF32()
	return err
}

func (f *FacilityWaypoint) Encode(c *core.Cursor) error {
	if err := f.FacilityAirport.Encode(c); err != nil {
		return err
	}
	return c.WriteF32(f.MagVar)
}

// FacilityNDB is a waypoint entry with one appended field, the station
// frequency in Hz.
type FacilityNDB struct {
	FacilityWaypoint
	Frequency uint32
}

func (f *FacilityNDB) Decode(c *core.Cursor) error {
	if err := f.FacilityWaypoint.Decode(c); err != nil {
		return err
	}
	var err error
	f.Frequency, err = c.ReadU32()
	return err
}

func (f *FacilityNDB) Encode(c *core.Cursor) error {
	if err := f.FacilityWaypoint.Encode(c); err != nil {
		return err
	}
	return c.WriteU32(f.Frequency)
}

// VOR flags reporting which optional sub-components the station carries.
const (
	VORHasNavSignal  uint32 = 1 << 0
	VORHasLocalizer  uint32 = 1 << 1
	VORHasGlideSlope uint32 = 1 << 2
	VORHasDME        uint32 = 1 << 3
)

// FacilityVOR is an NDB entry plus localizer and glide slope data. The
// flags word says which of those fields are meaningful.
type FacilityVOR struct {
	FacilityNDB
	Flags           uint32
	Localizer       float32
	GlideLatitude   float64
	GlideLongitude  float64
	GlideAltitude   float64
	GlideSlopeAngle float32
}

func (f *FacilityVOR) Decode(c *core.Cursor) error {
	if err := f.FacilityNDB.Decode(c); err != nil {
		return err
	}
	var err error
	if f.Flags, err = c.ReadU32(); err != nil {
		return err
	}
	if f.Localizer, err = c.ReadF32(); err != nil {
		return err
	}
	if f.GlideLatitude, err = c.ReadF64(); err != nil {
		return err
	}
	if f.GlideLongitude, err = c.ReadF64(); err != nil {
		return err
	}
	if f.GlideAltitude, err = c.ReadF64(); err != nil {
		return err
	}
	f.GlideSlopeAngle, err = c.ReadF32()
	return err
}

func (f *FacilityVOR) Encode(c *core.Cursor) error {
	if err := f.FacilityNDB.Encode(c); err != nil {
		return err
	}
	if err := c.WriteU32(f.Flags); err != nil {
		return err
	}
	if err := c.WriteF32(f.Localizer); err != nil {
		return err
	}
	if err := c.WriteF64(f.GlideLatitude); err != nil {
		return err
	}
	if err := c.WriteF64(f.GlideLongitude); err != nil {
		return err
	}
	if err := c.WriteF64(f.GlideAltitude); err != nil {
		return err
	}
	return c.WriteF32(f.GlideSlopeAngle)
}

// RecvAirportList is one chunk of an airport facilities request.
type RecvAirportList struct {
	FacilityList
	Airports []FacilityAirport
}

func decodeAirportList(env Envelope, c *core.Cursor) (Packet, error) {
	p := &RecvAirportList{FacilityList: FacilityList{Recv: Recv{env}}}
	if err := p.readHeader(c); err != nil {
		return nil, err
	}
	if err := p.checkEntries(c, airportEntryBytes); err != nil {
		return nil, err
	}
	p.Airports = make([]FacilityAirport, p.ArraySize)
	for i := range p.Airports {
		if err := c.ReadStruct(&p.Airports[i]); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// RecvWaypointList is one chunk of a waypoint facilities request.
type RecvWaypointList struct {
	FacilityList
	Waypoints []FacilityWaypoint
}

func decodeWaypointList(env Envelope, c *core.Cursor) (Packet, error) {
	p := &RecvWaypointList{FacilityList: FacilityList{Recv: Recv{env}}}
	if err := p.readHeader(c); err != nil {
		return nil, err
	}
	if err := p.checkEntries(c, waypointEntryBytes); err != nil {
		return nil, err
	}
	p.Waypoints = make([]FacilityWaypoint, p.ArraySize)
	for i := range p.Waypoints {
		if err := c.ReadStruct(&p.Waypoints[i]); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// RecvNDBList is one chunk of an NDB facilities request.
type RecvNDBList struct {
	FacilityList
	NDBs []FacilityNDB
}

func decodeNDBList(env Envelope, c *core.Cursor) (Packet, error) {
	p := &RecvNDBList{FacilityList: FacilityList{Recv: Recv{env}}}
	if err := p.readHeader(c); err != nil {
		return nil, err
	}
	if err := p.checkEntries(c, ndbEntryBytes); err != nil {
		return nil, err
	}
	p.NDBs = make([]FacilityNDB, p.ArraySize)
	for i := range p.NDBs {
		if err := c.ReadStruct(&p.NDBs[i]); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// RecvVORList is one chunk of a VOR facilities request.
type RecvVORList struct {
	FacilityList
	VORs []FacilityVOR
}

func decodeVORList(env Envelope, c *core.Cursor) (Packet, error) {
	p := &RecvVORList{FacilityList: FacilityList{Recv: Recv{env}}}
	if err := p.readHeader(c); err != nil {
		return nil, err
	}
	if err := p.checkEntries(c, vorEntryBytes); err != nil {
		return nil, err
	}
	p.VORs = make([]FacilityVOR, p.ArraySize)
	for i := range p.VORs {
		if err := c.ReadStruct(&p.VORs[i]); err != nil {
			return nil, err
		}
	}
	return p, nil
}
