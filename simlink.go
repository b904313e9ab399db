// Package simlink is a client library for a SimConnect-style flight
// simulation host: it frames and decodes the host's binary packet stream,
// fans decoded packets out to registered handlers, and maps application
// record types to and from the host's fixed-layout data definitions.
package simlink

import (
	"github.com/vuuvv/simlink/core"
	"github.com/vuuvv/simlink/datadef"
	"github.com/vuuvv/simlink/dispatch"
	"github.com/vuuvv/simlink/log"
	"github.com/vuuvv/simlink/packet"
	"github.com/vuuvv/simlink/transport"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Cursor = core.Cursor

var NewCursor = core.NewCursor
var NewWriteCursor = core.NewWriteCursor

type Packet = packet.Packet
type RecvID = packet.RecvID
type Envelope = packet.Envelope

var Decode = packet.Decode

type Dispatcher = dispatch.Dispatcher
type Source = dispatch.Source

var NewDispatcher = dispatch.NewDispatcher

type Registry = datadef.Registry
type Definition = datadef.Definition
type FieldSpec = datadef.FieldSpec
type WireType = datadef.WireType
type Period = datadef.Period

var NewRegistry = datadef.NewRegistry
var Marshal = datadef.Marshal
var Unmarshal = datadef.Unmarshal

type Transport = transport.Transport
type Conn = transport.Conn
type Sender = transport.Sender
type ConfigProvider = transport.Provider

var Dial = transport.Dial
var NewConn = transport.NewConn
var NewSender = transport.NewSender
var NewConfigProvider = transport.NewProvider

func Setup() {
	var logger *zap.Logger
	var err error
	if !zap.L().Core().Enabled(zapcore.PanicLevel) {
		logger, err = zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
	} else {
		logger = zap.L()
	}
	log.SetLogger(logger)
	log.SetDefaultLogger(logger)
}
