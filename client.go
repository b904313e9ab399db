package simlink

import (
	"github.com/vuuvv/errors"
	"github.com/vuuvv/simlink/datadef"
	"github.com/vuuvv/simlink/dispatch"
	"github.com/vuuvv/simlink/packet"
	"github.com/vuuvv/simlink/transport"
)

// Client ties a framed transport, the data definition registry and the
// dispatcher into one session. Handlers receive it as the dispatch source,
// so they can issue follow-up requests from inside a callback.
type Client struct {
	transport  transport.Transport
	sender     *transport.Sender
	registry   *datadef.Registry
	dispatcher *dispatch.Dispatcher
	conn       *transport.Conn // owned only when dialed here
}

// Connect dials the numbered block of the configuration file and wraps the
// connection in a Client.
func Connect(configPath string, block int) (*Client, error) {
	provider := transport.NewProvider(configPath)
	b, err := provider.Block(block)
	if err != nil {
		return nil, err
	}
	conn, err := transport.Dial(b)
	if err != nil {
		return nil, err
	}
	c := NewClient(conn)
	c.conn = conn
	return c, nil
}

// NewClient wraps an already-established transport.
func NewClient(t transport.Transport) *Client {
	c := &Client{transport: t}
	c.sender = transport.NewSender(t)
	c.registry = datadef.NewRegistry(c.sender)
	c.dispatcher = dispatch.NewDispatcher(c)
	return c
}

func (c *Client) Registry() *datadef.Registry      { return c.registry }
func (c *Client) Dispatcher() *dispatch.Dispatcher { return c.dispatcher }
func (c *Client) Sender() *transport.Sender        { return c.sender }

// RegisterHandlers adds every target to the dispatcher.
func (c *Client) RegisterHandlers(targets ...any) error {
	for _, t := range targets {
		if err := c.dispatcher.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// RegisterDataDefinition registers the prototype's record type with the
// host and returns its definition.
func (c *Client) RegisterDataDefinition(prototype any) (*datadef.Definition, error) {
	return c.registry.Register(prototype)
}

// RequestDataOnSimObject asks the host to deliver data for a registered
// record type.
func (c *Client) RequestDataOnSimObject(def *datadef.Definition, requestID, objectID uint32, period datadef.Period, onlyOnChange bool) error {
	return c.registry.RequestData(def, requestID, objectID, period, onlyOnChange)
}

// SetDataOnSimObject encodes the record and pushes it at the object.
func (c *Client) SetDataOnSimObject(def *datadef.Definition, objectID uint32, rec any) error {
	return c.registry.SetData(def, objectID, rec)
}

// RequestFacilitiesList asks for a dump of one facility catalog.
func (c *Client) RequestFacilitiesList(facility transport.FacilityListType, requestID uint32) error {
	return c.sender.RequestFacilitiesList(facility, requestID)
}

// DispatchOne receives, decodes and dispatches exactly one packet.
func (c *Client) DispatchOne() (packet.Packet, error) {
	return c.dispatcher.DispatchOne(c.transport)
}

// Run pumps the connection until a Quit packet is dispatched or the
// transport closes. It blocks on the calling goroutine.
func (c *Client) Run() error {
	return errors.WithStack(c.dispatcher.Run(c.transport))
}

// Close tears the connection down when the client owns one.
func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}
