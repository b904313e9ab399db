package dispatch

import (
	"io"
	"net"
	"sync"
	"time"

	"github.com/vuuvv/errors"
	"github.com/vuuvv/simlink/log"
	"github.com/vuuvv/simlink/packet"
	"github.com/vuuvv/simlink/utils"
	"go.uber.org/zap"
)

// Receiver is the blocking side of the transport collaborator: each call
// returns exactly one envelope-framed packet.
type Receiver interface {
	Recv() ([]byte, error)
}

type callback func(source Source, p packet.Packet) error

type entry struct {
	target any
	fn     callback
}

// DispatchRecord is one dispatched packet kept in the diagnostic history
// ring.
type DispatchRecord struct {
	Packet      packet.Packet
	HandleError error
	Start       time.Time
	End         time.Time
}

// Dispatcher fans decoded packets out to registered callback targets and
// runs the receive pump. Registration is normally finished before Run
// starts; it is guarded regardless, so a concurrent registration is never
// observed half-applied by a dispatch.
type Dispatcher struct {
	mu      sync.RWMutex
	source  Source
	lists   map[packet.RecvID][]entry
	taps    []*tap
	history *utils.CircularBuffer
}

func NewDispatcher(source Source) *Dispatcher {
	return &Dispatcher{
		source:  source,
		lists:   make(map[packet.RecvID][]entry),
		history: utils.NewCircularBuffer(32),
	}
}

func (d *Dispatcher) add(id packet.RecvID, target any, fn callback) {
	d.lists[id] = append(d.lists[id], entry{target: target, fn: fn})
}

// Register inspects the capability set of target, once, and adds it to the
// list of every packet kind it handles. Targets registered earlier for a
// kind are invoked earlier. A target implementing no handler interface is
// a registration bug and is rejected.
func (d *Dispatcher) Register(target any) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	matched := 0
	if h, ok := target.(OpenHandler); ok {
		d.add(packet.RecvIDOpen, target, func(s Source, p packet.Packet) error {
			return h.HandleOpen(s, p.(*packet.RecvOpen))
		})
		matched++
	}
	if h, ok := target.(ExceptionHandler); ok {
		d.add(packet.RecvIDException, target, func(s Source, p packet.Packet) error {
			return h.HandleException(s, p.(*packet.RecvException))
		})
		matched++
	}
	if h, ok := target.(QuitHandler); ok {
		d.add(packet.RecvIDQuit, target, func(s Source, p packet.Packet) error {
			return h.HandleQuit(s, p.(*packet.RecvQuit))
		})
		matched++
	}
	if h, ok := target.(EventHandler); ok {
		d.add(packet.RecvIDEvent, target, func(s Source, p packet.Packet) error {
			return h.HandleEvent(s, p.(*packet.RecvEvent))
		})
		matched++
	}
	if h, ok := target.(ObjectAddRemoveHandler); ok {
		d.add(packet.RecvIDEventObjectAddRemove, target, func(s Source, p packet.Packet) error {
			return h.HandleObjectAddRemove(s, p.(*packet.RecvEventObjectAddRemove))
		})
		matched++
	}
	if h, ok := target.(FilenameHandler); ok {
		d.add(packet.RecvIDEventFilename, target, func(s Source, p packet.Packet) error {
			return h.HandleFilename(s, p.(*packet.RecvEventFilename))
		})
		matched++
	}
	if h, ok := target.(FrameHandler); ok {
		d.add(packet.RecvIDEventFrame, target, func(s Source, p packet.Packet) error {
			return h.HandleFrame(s, p.(*packet.RecvEventFrame))
		})
		matched++
	}
	if h, ok := target.(WeatherModeHandler); ok {
		d.add(packet.RecvIDEventWeatherMode, target, func(s Source, p packet.Packet) error {
			return h.HandleWeatherMode(s, p.(*packet.RecvEventWeatherMode))
		})
		matched++
	}
	if h, ok := target.(SimObjectDataHandler); ok {
		d.add(packet.RecvIDSimObjectData, target, func(s Source, p packet.Packet) error {
			return h.HandleSimObjectData(s, p.(*packet.RecvSimObjectData))
		})
		matched++
	}
	if h, ok := target.(SimObjectDataByTypeHandler); ok {
		d.add(packet.RecvIDSimObjectDataByType, target, func(s Source, p packet.Packet) error {
			return h.HandleSimObjectDataByType(s, p.(*packet.RecvSimObjectDataByType))
		})
		matched++
	}
	if h, ok := target.(ClientDataHandler); ok {
		d.add(packet.RecvIDClientData, target, func(s Source, p packet.Packet) error {
			return h.HandleClientData(s, p.(*packet.RecvClientData))
		})
		matched++
	}
	if h, ok := target.(SystemStateHandler); ok {
		d.add(packet.RecvIDSystemState, target, func(s Source, p packet.Packet) error {
			return h.HandleSystemState(s, p.(*packet.RecvSystemState))
		})
		matched++
	}
	if h, ok := target.(WeatherObservationHandler); ok {
		d.add(packet.RecvIDWeatherObservation, target, func(s Source, p packet.Packet) error {
			return h.HandleWeatherObservation(s, p.(*packet.RecvWeatherObservation))
		})
		matched++
	}
	if h, ok := target.(CloudStateHandler); ok {
		d.add(packet.RecvIDCloudState, target, func(s Source, p packet.Packet) error {
			return h.HandleCloudState(s, p.(*packet.RecvCloudState))
		})
		matched++
	}
	if h, ok := target.(AssignedObjectHandler); ok {
		d.add(packet.RecvIDAssignedObjectID, target, func(s Source, p packet.Packet) error {
			return h.HandleAssignedObject(s, p.(*packet.RecvAssignedObjectID))
		})
		matched++
	}
	if h, ok := target.(ReservedKeyHandler); ok {
		d.add(packet.RecvIDReservedKey, target, func(s Source, p packet.Packet) error {
			return h.HandleReservedKey(s, p.(*packet.RecvReservedKey))
		})
		matched++
	}
	if h, ok := target.(CustomActionHandler); ok {
		d.add(packet.RecvIDCustomAction, target, func(s Source, p packet.Packet) error {
			return h.HandleCustomAction(s, p.(*packet.RecvCustomAction))
		})
		matched++
	}
	if h, ok := target.(FacilitiesHandler); ok {
		d.add(packet.RecvIDAirportList, target, func(s Source, p packet.Packet) error {
			return h.HandleAirportList(s, p.(*packet.RecvAirportList))
		})
		d.add(packet.RecvIDWaypointList, target, func(s Source, p packet.Packet) error {
			return h.HandleWaypointList(s, p.(*packet.RecvWaypointList))
		})
		d.add(packet.RecvIDVORList, target, func(s Source, p packet.Packet) error {
			return h.HandleVORList(s, p.(*packet.RecvVORList))
		})
		d.add(packet.RecvIDNDBList, target, func(s Source, p packet.Packet) error {
			return h.HandleNDBList(s, p.(*packet.RecvNDBList))
		})
		matched++
	}
	if h, ok := target.(MultiplayerHandler); ok {
		d.add(packet.RecvIDMultiplayerServerStarted, target, func(s Source, p packet.Packet) error {
			return h.HandleMultiplayerServerStarted(s, p.(*packet.RecvEventMultiplayerServerStarted))
		})
		d.add(packet.RecvIDMultiplayerClientStarted, target, func(s Source, p packet.Packet) error {
			return h.HandleMultiplayerClientStarted(s, p.(*packet.RecvEventMultiplayerClientStarted))
		})
		d.add(packet.RecvIDMultiplayerSessionEnded, target, func(s Source, p packet.Packet) error {
			return h.HandleMultiplayerSessionEnded(s, p.(*packet.RecvEventMultiplayerSessionEnded))
		})
		matched++
	}
	if h, ok := target.(RaceHandler); ok {
		d.add(packet.RecvIDEventRaceEnd, target, func(s Source, p packet.Packet) error {
			return h.HandleRaceEnd(s, p.(*packet.RecvEventRaceEnd))
		})
		d.add(packet.RecvIDEventRaceLap, target, func(s Source, p packet.Packet) error {
			return h.HandleRaceLap(s, p.(*packet.RecvEventRaceLap))
		})
		matched++
	}

	if matched == 0 {
		return errors.Errorf("register %T: no handler capability implemented", target)
	}
	return nil
}

func (d *Dispatcher) snapshot(id packet.RecvID) ([]entry, []*tap) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lists[id], d.taps
}

func invoke(e entry, source Source, p packet.Packet) (err error) {
	defer func() {
		if r := recover(); r != nil {
			_, err = log.CastToError(r)
		}
	}()
	return e.fn(source, p)
}

// Dispatch invokes every callback registered for the packet's kind, in
// registration order, synchronously on the calling goroutine. A handler
// failing (or panicking) does not keep the remaining handlers of the round
// from running; the round's errors are reported once, afterwards. A kind
// nobody registered for dispatches to nobody without error.
func (d *Dispatcher) Dispatch(p packet.Packet) error {
	list, taps := d.snapshot(p.RecvID())
	rec := &DispatchRecord{Packet: p, Start: time.Now()}

	for _, t := range taps {
		t.offer(p)
	}

	var errs []error
	for _, e := range list {
		if err := invoke(e, d.source, p); err != nil {
			log.Warn(errors.Wrapf(err, "handler %T failed on %s packet", e.target, p.RecvID()))
			errs = append(errs, err)
		}
	}

	rec.End = time.Now()
	if len(errs) > 0 {
		rec.HandleError = errs[0]
	}
	d.history.Add(rec)

	if len(errs) > 0 {
		return errors.Wrapf(errs[0], "dispatch %s: %d of %d handlers failed", p.RecvID(), len(errs), len(list))
	}
	return nil
}

// DispatchOne receives, decodes and dispatches exactly one packet.
func (d *Dispatcher) DispatchOne(recv Receiver) (packet.Packet, error) {
	raw, err := recv.Recv()
	if err != nil {
		return nil, err
	}
	p, err := packet.Decode(raw)
	if err != nil {
		return nil, err
	}
	return p, d.Dispatch(p)
}

// Run is the blocking pump: receive, decode, dispatch, in strict delivery
// order, on the caller's goroutine. It returns nil once a Quit packet has
// been dispatched or the transport reports closure. A packet that fails to
// decode is discarded and the loop continues (the transport frames at the
// envelope boundary, so the next packet is unaffected), as are handler
// errors.
func (d *Dispatcher) Run(recv Receiver) error {
	for {
		raw, err := recv.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				log.Info("transport closed, stopping dispatch loop")
				return nil
			}
			return errors.Wrap(err, "receive next packet")
		}

		p, err := packet.Decode(raw)
		if err != nil {
			log.Warn(errors.Wrap(err, "discarding undecodable packet"))
			continue
		}

		if u, ok := p.(*packet.Unrecognized); ok {
			log.Debug("retaining unrecognized packet", zap.Error(u.Err()), zap.Int("bytes", len(u.Raw)))
		}

		if err := d.Dispatch(p); err != nil {
			log.Warn(err, zap.String("kind", p.RecvID().String()))
		}

		if _, quit := p.(*packet.RecvQuit); quit {
			log.Info("quit packet dispatched, stopping dispatch loop")
			return nil
		}
	}
}

// Histories returns the most recent dispatch records, oldest first. The
// ring tolerates concurrent writers but the snapshot is only exact when no
// dispatch is in flight; read it from the dispatch goroutine.
func (d *Dispatcher) Histories() []*DispatchRecord {
	var out []*DispatchRecord
	for _, v := range d.history.GetAll() {
		if rec, ok := v.(*DispatchRecord); ok {
			out = append(out, rec)
		}
	}
	return out
}
