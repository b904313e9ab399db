// Package transport carries envelope-framed packets over a byte stream and
// encodes the outbound host calls. It preserves message boundaries exactly
// as the packet catalog assumes: every Recv returns one whole
// size-prefixed packet.
package transport

import (
	"context"
	"encoding/binary"
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

// Transport is the collaborator surface the dispatcher and registry need:
// a blocking receive of one whole packet, and a whole-buffer send.
type Transport interface {
	Recv() ([]byte, error)
	Send(data []byte) error
}

// MaxPacketSize bounds the envelope size field; anything larger is a
// corrupted stream, not a real packet.
const MaxPacketSize = 1 << 20

// Conn is a framed client connection to the simulation host over TCP or a
// local pipe.
type Conn struct {
	conn   net.Conn
	key    string
	wmu    sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// Dial connects to the host named by the configuration block.
func Dial(block *Block) (*Conn, error) {
	conn, err := net.Dial(block.Network(), block.Address)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s %s", block.Network(), block.Address)
	}
	if err = utils.OptimalTcpConn(conn, block.ReadBufferSize, block.WriteBufferSize); err != nil {
		utils.SafeCloseConn(conn)
		return nil, err
	}
	return NewConn(conn), nil
}

// NewConn wraps an established stream connection.
func NewConn(conn net.Conn) *Conn {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Conn{
		conn:   conn,
		key:    utils.GenId(),
		ctx:    ctx,
		cancel: cancel,
	}
	go c.checkCancel()
	log.Info("transport connected", c.zapFields()...)
	return c
}

func (this *Conn) Key() string {
	return this.key
}

func (this *Conn) RemoteAddr() string {
	return this.conn.RemoteAddr().String()
}

// Recv blocks for the next packet: the u32 size prefix first, then the
// remainder. The returned buffer includes the full 12-byte envelope.
func (this *Conn) Recv() ([]byte, error) {
	var sizeBuf [4]byte
	if _, err := io.ReadFull(this.conn, sizeBuf[:]); err != nil {
		return nil, err
	}
	size := binary.LittleEndian.Uint32(sizeBuf[:])
	if size < packet.EnvelopeSize || size > MaxPacketSize {
		return nil, errors.Errorf("invalid packet size %d on the wire", size)
	}

	buf := make([]byte, size)
	copy(buf, sizeBuf[:])
	if _, err := io.ReadFull(this.conn, buf[4:]); err != nil {
		return nil, errors.Wrapf(err, "read packet body of %d bytes", size-4)
	}
	return buf, nil
}

// Send writes one whole packet buffer. Serialized so concurrent senders
// never interleave frames.
func (this *Conn) Send(data []byte) error {
	this.wmu.Lock()
	defer this.wmu.Unlock()
	_, err := this.conn.Write(data)
	return errors.WithStack(err)
}

func (this *Conn) checkCancel() {
	defer utils.NormalRecover()
	<-this.ctx.Done()
	// force a blocked Recv to return by expiring the read deadline now
	err := this.conn.SetReadDeadline(time.Now())
	if err != nil {
		log.Error(err, this.zapFields()...)
	}
}

func (this *Conn) zapFields(fields ...zap.Field) []zap.Field {
	return append([]zap.Field{
		zap.String("addr", this.conn.RemoteAddr().String()),
		zap.String("key", this.key),
	}, fields...)
}

func (this *Conn) Close() {
	this.cancel()
	utils.SafeCloseConn(this.conn)
}
