// Package dispatch routes decoded packets to registered application
// callbacks and drives the blocking receive loop.
//
// Each handler family is an independent interface; a registration target
// implements any subset of them (its capability set) and is added to every
// matching kind's list once, at registration time. Invocation order within
// a kind is registration order, stable across dispatch rounds.
package dispatch

import (
	"github.com/vuuvv/simlink/packet"
)

// Source identifies the connection a packet arrived on. Handlers receive
// the value the dispatcher was built with, typically the client, so they
// can issue follow-up requests.
type Source any

type OpenHandler interface {
	HandleOpen(source Source, p *packet.RecvOpen) error
}

type ExceptionHandler interface {
	HandleException(source Source, p *packet.RecvException) error
}

type QuitHandler interface {
	HandleQuit(source Source, p *packet.RecvQuit) error
}

type EventHandler interface {
	HandleEvent(source Source, p *packet.RecvEvent) error
}

type ObjectAddRemoveHandler interface {
	HandleObjectAddRemove(source Source, p *packet.RecvEventObjectAddRemove) error
}

type FilenameHandler interface {
	HandleFilename(source Source, p *packet.RecvEventFilename) error
}

type FrameHandler interface {
	HandleFrame(source Source, p *packet.RecvEventFrame) error
}

type WeatherModeHandler interface {
	HandleWeatherMode(source Source, p *packet.RecvEventWeatherMode) error
}

type SimObjectDataHandler interface {
	HandleSimObjectData(source Source, p *packet.RecvSimObjectData) error
}

type SimObjectDataByTypeHandler interface {
	HandleSimObjectDataByType(source Source, p *packet.RecvSimObjectDataByType) error
}

type ClientDataHandler interface {
	HandleClientData(source Source, p *packet.RecvClientData) error
}

type SystemStateHandler interface {
	HandleSystemState(source Source, p *packet.RecvSystemState) error
}

type WeatherObservationHandler interface {
	HandleWeatherObservation(source Source, p *packet.RecvWeatherObservation) error
}

type CloudStateHandler interface {
	HandleCloudState(source Source, p *packet.RecvCloudState) error
}

type AssignedObjectHandler interface {
	HandleAssignedObject(source Source, p *packet.RecvAssignedObjectID) error
}

type ReservedKeyHandler interface {
	HandleReservedKey(source Source, p *packet.RecvReservedKey) error
}

type CustomActionHandler interface {
	HandleCustomAction(source Source, p *packet.RecvCustomAction) error
}

// FacilitiesHandler covers the four facility list kinds with one capability
// interface. The dispatcher calls exactly the method matching the concrete
// list kind, never the other three.
type FacilitiesHandler interface {
	HandleAirportList(source Source, p *packet.RecvAirportList) error
	HandleWaypointList(source Source, p *packet.RecvWaypointList) error
	HandleVORList(source Source, p *packet.RecvVORList) error
	HandleNDBList(source Source, p *packet.RecvNDBList) error
}

// MultiplayerHandler covers the three multiplayer session events.
type MultiplayerHandler interface {
	HandleMultiplayerServerStarted(source Source, p *packet.RecvEventMultiplayerServerStarted) error
	HandleMultiplayerClientStarted(source Source, p *packet.RecvEventMultiplayerClientStarted) error
	HandleMultiplayerSessionEnded(source Source, p *packet.RecvEventMultiplayerSessionEnded) error
}

// RaceHandler covers the two race progress events.
type RaceHandler interface {
	HandleRaceEnd(source Source, p *packet.RecvEventRaceEnd) error
	HandleRaceLap(source Source, p *packet.RecvEventRaceLap) error
}
