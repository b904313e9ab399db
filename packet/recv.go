// Package packet decodes the inbound byte stream of a SimConnect-style
// simulation host into typed packet variants.
//
// Every inbound packet starts with the same 12-byte envelope:
//
//	┌────────────────────────────────────────────┐
//	│  Size (4 bytes) - total packet length      │
//	├────────────────────────────────────────────┤
//	│  Version (4 bytes) - protocol version      │
//	├────────────────────────────────────────────┤
//	│  ID (4 bytes) - variant discriminant       │
//	├────────────────────────────────────────────┤
//	│  Body (Size-12 bytes) - variant layout     │
//	└────────────────────────────────────────────┘
//
// All multi-byte fields are little-endian with no alignment padding. The
// variant set is closed and exhaustive by protocol version; an id outside
// the catalog decodes to Unrecognized with the raw body retained.
package packet

import (
	"fmt"

	"github.com/vuuvv/simlink/core"
)

// RecvID is the wire discriminant identifying a packet's concrete kind.
type RecvID uint32

const (
	RecvIDNull                     RecvID = 0
	RecvIDException                RecvID = 1
	RecvIDOpen                     RecvID = 2
	RecvIDQuit                     RecvID = 3
	RecvIDEvent                    RecvID = 4
	RecvIDEventObjectAddRemove     RecvID = 5
	RecvIDEventFilename            RecvID = 6
	RecvIDEventFrame               RecvID = 7
	RecvIDSimObjectData            RecvID = 8
	RecvIDSimObjectDataByType      RecvID = 9
	RecvIDWeatherObservation       RecvID = 10
	RecvIDCloudState               RecvID = 11
	RecvIDAssignedObjectID         RecvID = 12
	RecvIDReservedKey              RecvID = 13
	RecvIDCustomAction             RecvID = 14
	RecvIDSystemState              RecvID = 15
	RecvIDClientData               RecvID = 16
	RecvIDEventWeatherMode         RecvID = 17
	RecvIDAirportList              RecvID = 18
	RecvIDVORList                  RecvID = 19
	RecvIDNDBList                  RecvID = 20
	RecvIDWaypointList             RecvID = 21
	RecvIDMultiplayerServerStarted RecvID = 22
	RecvIDMultiplayerClientStarted RecvID = 23
	RecvIDMultiplayerSessionEnded  RecvID = 24
	RecvIDEventRaceEnd             RecvID = 25
	RecvIDEventRaceLap             RecvID = 26
)

func (id RecvID) String() string {
	if name, ok := recvNames[id]; ok {
		return name
	}
	return fmt.Sprintf("Unrecognized(0x%08X)", uint32(id))
}

var recvNames = map[RecvID]string{
	RecvIDNull:                     "Null",
	RecvIDException:                "Exception",
	RecvIDOpen:                     "Open",
	RecvIDQuit:                     "Quit",
	RecvIDEvent:                    "Event",
	RecvIDEventObjectAddRemove:     "EventObjectAddRemove",
	RecvIDEventFilename:            "EventFilename",
	RecvIDEventFrame:               "EventFrame",
	RecvIDSimObjectData:            "SimObjectData",
	RecvIDSimObjectDataByType:      "SimObjectDataByType",
	RecvIDWeatherObservation:       "WeatherObservation",
	RecvIDCloudState:               "CloudState",
	RecvIDAssignedObjectID:         "AssignedObjectID",
	RecvIDReservedKey:              "ReservedKey",
	RecvIDCustomAction:             "CustomAction",
	RecvIDSystemState:              "SystemState",
	RecvIDClientData:               "ClientData",
	RecvIDEventWeatherMode:         "EventWeatherMode",
	RecvIDAirportList:              "AirportList",
	RecvIDVORList:                  "VORList",
	RecvIDNDBList:                  "NDBList",
	RecvIDWaypointList:             "WaypointList",
	RecvIDMultiplayerServerStarted: "MultiplayerServerStarted",
	RecvIDMultiplayerClientStarted: "MultiplayerClientStarted",
	RecvIDMultiplayerSessionEnded:  "MultiplayerSessionEnded",
	RecvIDEventRaceEnd:             "EventRaceEnd",
	RecvIDEventRaceLap:             "EventRaceLap",
}

// EnvelopeSize is the fixed byte length of the packet envelope.
const EnvelopeSize = 12

// Envelope is the generic header shared by every inbound packet.
type Envelope struct {
	Size    uint32
	Version uint32
	ID      uint32
}

func (e *Envelope) Decode(c *core.Cursor) (err error) {
	if e.Size, err = c.ReadU32(); err != nil {
		return err
	}
	if e.Version, err = c.ReadU32(); err != nil {
		return err
	}
	e.ID, err = c.ReadU32()
	return err
}

// Packet is one decoded inbound packet. Concrete variants embed Recv and
// own exactly the fields their wire layout defines.
type Packet interface {
	Envelope() *Envelope
	RecvID() RecvID
}

// Recv carries the envelope for every concrete variant.
type Recv struct {
	Env Envelope
}

func (r *Recv) Envelope() *Envelope { return &r.Env }
func (r *Recv) RecvID() RecvID      { return RecvID(r.Env.ID) }

// Unrecognized retains the raw body of a packet whose discriminant is not
// in the catalog, so callers may log or ignore it.
type Unrecognized struct {
	Recv
	Raw []byte
}

// Err describes the unknown discriminant as a typed error, for callers that
// treat unknown ids as reportable.
func (p *Unrecognized) Err() error {
	return &core.UnrecognizedPacketError{ID: p.Env.ID}
}
