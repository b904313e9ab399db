package packet

import (
	"github.com/vuuvv/simlink/core"
)

// UnknownGroup is the group id the host reports for events that were not
// subscribed through a notification group.
const UnknownGroup uint32 = 0xFFFFFFFF

// RecvEvent is the base event notification: a subscribed event fired, with
// one event-defined data value.
type RecvEvent struct {
	Recv
	GroupID uint32
	EventID uint32
	Data    uint32
}

// Event returns the base event; embedders inherit it, so any event-family
// packet can be handled generically.
func (p *RecvEvent) Event() *RecvEvent { return p }

func readEvent(env Envelope, c *core.Cursor) (*RecvEvent, error) {
	p := &RecvEvent{Recv: Recv{env}}
	var err error
	if p.GroupID, err = c.ReadU32(); err != nil {
		return nil, err
	}
	if p.EventID, err = c.ReadU32(); err != nil {
		return nil, err
	}
	if p.Data, err = c.ReadU32(); err != nil {
		return nil, err
	}
	return p, nil
}

func decodeEvent(env Envelope, c *core.Cursor) (Packet, error) {
	return readEvent(env, c)
}

// RecvEventObjectAddRemove fires when a simulated object enters or leaves
// the world. ObjType is the simulation object class.
type RecvEventObjectAddRemove struct {
	RecvEvent
	ObjType uint32
}

func decodeEventObjectAddRemove(env Envelope, c *core.Cursor) (Packet, error) {
	ev, err := readEvent(env, c)
	if err != nil {
		return nil, err
	}
	p := &RecvEventObjectAddRemove{RecvEvent: *ev}
	if p.ObjType, err = c.ReadU32(); err != nil {
		return nil, err
	}
	return p, nil
}

// RecvEventFilename fires for flight load/save and similar file events.
type RecvEventFilename struct {
	RecvEvent
	FileName string // 260-byte fixed field on the wire
	Flags    uint32
}

func decodeEventFilename(env Envelope, c *core.Cursor) (Packet, error) {
	ev, err := readEvent(env, c)
	if err != nil {
		return nil, err
	}
	p := &RecvEventFilename{RecvEvent: *ev}
	if p.FileName, err = c.ReadFixedString(260); err != nil {
		return nil, err
	}
	if p.Flags, err = c.ReadU32(); err != nil {
		return nil, err
	}
	return p, nil
}

// RecvEventFrame fires once per rendered frame when subscribed.
type RecvEventFrame struct {
	RecvEvent
	FrameRate float32
	SimSpeed  float32
}

func decodeEventFrame(env Envelope, c *core.Cursor) (Packet, error) {
	ev, err := readEvent(env, c)
	if err != nil {
		return nil, err
	}
	p := &RecvEventFrame{RecvEvent: *ev}
	if p.FrameRate, err = c.ReadF32(); err != nil {
		return nil, err
	}
	if p.SimSpeed, err = c.ReadF32(); err != nil {
		return nil, err
	}
	return p, nil
}

// WeatherMode is the simulator weather mode reported by the host.
type WeatherMode uint32

const (
	WeatherModeTheme WeatherMode = iota
	WeatherModeRWW
	WeatherModeCustom
	WeatherModeGlobal
)

// RecvEventWeatherMode fires when the weather mode changes. The mode rides
// in the base event's data slot.
type RecvEventWeatherMode struct {
	RecvEvent
}

// Mode returns the data slot as a weather mode.
func (p *RecvEventWeatherMode) Mode() WeatherMode { return WeatherMode(p.Data) }

func decodeEventWeatherMode(env Envelope, c *core.Cursor) (Packet, error) {
	ev, err := readEvent(env, c)
	if err != nil {
		return nil, err
	}
	return &RecvEventWeatherMode{RecvEvent: *ev}, nil
}

// RecvEventMultiplayerServerStarted fires on the host of a multiplayer race
// when the session opens.
type RecvEventMultiplayerServerStarted struct {
	RecvEvent
}

func decodeMultiplayerServerStarted(env Envelope, c *core.Cursor) (Packet, error) {
	ev, err := readEvent(env, c)
	if err != nil {
		return nil, err
	}
	return &RecvEventMultiplayerServerStarted{RecvEvent: *ev}, nil
}

// RecvEventMultiplayerClientStarted fires on a client once it has joined a
// multiplayer race.
type RecvEventMultiplayerClientStarted struct {
	RecvEvent
}

func decodeMultiplayerClientStarted(env Envelope, c *core.Cursor) (Packet, error) {
	ev, err := readEvent(env, c)
	if err != nil {
		return nil, err
	}
	return &RecvEventMultiplayerClientStarted{RecvEvent: *ev}, nil
}

// RecvEventMultiplayerSessionEnded fires when the multiplayer session ends.
type RecvEventMultiplayerSessionEnded struct {
	RecvEvent
}

func decodeMultiplayerSessionEnded(env Envelope, c *core.Cursor) (Packet, error) {
	ev, err := readEvent(env, c)
	if err != nil {
		return nil, err
	}
	return &RecvEventMultiplayerSessionEnded{RecvEvent: *ev}, nil
}

// RaceResult is the fixed-layout result block shared by the race events.
type RaceResult struct {
	NumberOfRacers uint32
	MissionGUID    [16]byte
	PlayerName     string // 260-byte fixed field
	SessionType    string // 260-byte fixed field
	Aircraft       string // 260-byte fixed field
	PlayerRole     string // 260-byte fixed field
	TotalTime      float64
	PenaltyTime    float64
	Disqualified   uint32
}

func (r *RaceResult) Decode(c *core.Cursor) error {
	var err error
	if r.NumberOfRacers, err = c.ReadU32(); err != nil {
		return err
	}
	guid, err := c.ReadBytes(16)
	if err != nil {
		return err
	}
	copy(r.MissionGUID[:], guid)
	for _, dst := range []*string{&r.PlayerName, &r.SessionType, &r.Aircraft, &r.PlayerRole} {
		if *dst, err = c.ReadFixedString(260); err != nil {
			return err
		}
	}
	if r.TotalTime, err = c.ReadF64(); err != nil {
		return err
	}
	if r.PenaltyTime, err = c.ReadF64(); err != nil {
		return err
	}
	r.Disqualified, err = c.ReadU32()
	return err
}

func (r *RaceResult) Encode(c *core.Cursor) error {
	if err := c.WriteU32(r.NumberOfRacers); err != nil {
		return err
	}
	if err := c.WriteBytes(r.MissionGUID[:]); err != nil {
		return err
	}
	for _, s := range []string{r.PlayerName, r.SessionType, r.Aircraft, r.PlayerRole} {
		if err := c.WriteFixedString(s, 260); err != nil {
			return err
		}
	}
	if err := c.WriteF64(r.TotalTime); err != nil {
		return err
	}
	if err := c.WriteF64(r.PenaltyTime); err != nil {
		return err
	}
	return c.WriteU32(r.Disqualified)
}

// RecvEventRaceEnd reports one racer's final result.
type RecvEventRaceEnd struct {
	RecvEvent
	RacerNumber uint32
	Result      RaceResult
}

func decodeEventRaceEnd(env Envelope, c *core.Cursor) (Packet, error) {
	ev, err := readEvent(env, c)
	if err != nil {
		return nil, err
	}
	p := &RecvEventRaceEnd{RecvEvent: *ev}
	if p.RacerNumber, err = c.ReadU32(); err != nil {
		return nil, err
	}
	if err = c.ReadStruct(&p.Result); err != nil {
		return nil, err
	}
	return p, nil
}

// RecvEventRaceLap reports one racer's lap time.
type RecvEventRaceLap struct {
	RecvEvent
	LapIndex uint32
	Result   RaceResult
}

func decodeEventRaceLap(env Envelope, c *core.Cursor) (Packet, error) {
	ev, err := readEvent(env, c)
	if err != nil {
		return nil, err
	}
	p := &RecvEventRaceLap{RecvEvent: *ev}
	if p.LapIndex, err = c.ReadU32(); err != nil {
		return nil, err
	}
	if err = c.ReadStruct(&p.Result); err != nil {
		return nil, err
	}
	return p, nil
}
