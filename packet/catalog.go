package packet

import (
	"github.com/vuuvv/errors"
	"github.com/vuuvv/simlink/core"
)

// decoder builds one concrete variant from a cursor positioned just past the
// envelope. Decoders are pure functions of the cursor state: no global state,
// no I/O, bounds checking left to the cursor.
type decoder func(env Envelope, c *core.Cursor) (Packet, error)

var catalog = map[RecvID]decoder{
	RecvIDNull:                     decodeNull,
	RecvIDException:                decodeException,
	RecvIDOpen:                     decodeOpen,
	RecvIDQuit:                     decodeQuit,
	RecvIDEvent:                    decodeEvent,
	RecvIDEventObjectAddRemove:     decodeEventObjectAddRemove,
	RecvIDEventFilename:            decodeEventFilename,
	RecvIDEventFrame:               decodeEventFrame,
	RecvIDSimObjectData:            decodeSimObjectData,
	RecvIDSimObjectDataByType:      decodeSimObjectDataByType,
	RecvIDWeatherObservation:       decodeWeatherObservation,
	RecvIDCloudState:               decodeCloudState,
	RecvIDAssignedObjectID:         decodeAssignedObjectID,
	RecvIDReservedKey:              decodeReservedKey,
	RecvIDCustomAction:             decodeCustomAction,
	RecvIDSystemState:              decodeSystemState,
	RecvIDClientData:               decodeClientData,
	RecvIDEventWeatherMode:         decodeEventWeatherMode,
	RecvIDAirportList:              decodeAirportList,
	RecvIDVORList:                  decodeVORList,
	RecvIDNDBList:                  decodeNDBList,
	RecvIDWaypointList:             decodeWaypointList,
	RecvIDMultiplayerServerStarted: decodeMultiplayerServerStarted,
	RecvIDMultiplayerClientStarted: decodeMultiplayerClientStarted,
	RecvIDMultiplayerSessionEnded:  decodeMultiplayerSessionEnded,
	RecvIDEventRaceEnd:             decodeEventRaceEnd,
	RecvIDEventRaceLap:             decodeEventRaceLap,
}

// Decode turns one envelope-framed raw packet into its typed variant.
//
// The envelope is read once; the discriminant selects a decoder from the
// static catalog. An unknown discriminant yields Unrecognized with the body
// bytes untouched and a nil error. A known variant whose decoder does not
// consume exactly Size-12 bytes is a decode error: the cursor position is
// shared state for any trailing data, so under- or over-consumption is never
// silent. A failure on one packet never affects the next, the transport
// frames at the envelope boundary.
func Decode(raw []byte) (Packet, error) {
	c := core.NewCursor(raw)
	var env Envelope
	if err := env.Decode(c); err != nil {
		return nil, errors.Wrapf(err, "decode envelope")
	}
	if int(env.Size) > len(raw) {
		return nil, errors.Errorf("decode: envelope size %d exceeds buffer %d", env.Size, len(raw))
	}
	if env.Size < EnvelopeSize {
		return nil, errors.Errorf("decode: envelope size %d below minimum %d", env.Size, EnvelopeSize)
	}

	body := core.NewCursor(raw[EnvelopeSize:env.Size])
	fn, ok := catalog[RecvID(env.ID)]
	if !ok {
		rest, err := body.ReadBytes(body.Remaining())
		if err != nil {
			return nil, err
		}
		return &Unrecognized{Recv: Recv{Env: env}, Raw: rest}, nil
	}

	p, err := fn(env, body)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s packet", RecvID(env.ID))
	}
	if body.Remaining() != 0 {
		return nil, errors.Errorf("decode %s packet: %d trailing bytes not consumed", RecvID(env.ID), body.Remaining())
	}
	return p, nil
}
