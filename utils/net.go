package utils

import (
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/vuuvv/errors"
	"go.uber.org/zap"
)

// GenId returns a process-unique connection key.
func GenId() string {
	return uuid.NewString()
}

func SafeCloseConn(conn net.Conn) {
	if conn != nil {
		zap.L().Info("Closing connection", zap.String("addr", conn.RemoteAddr().String()))
		if err := conn.Close(); err != nil {
			zap.L().Warn("close error", zap.Error(err))
		}
	}
}

// OptimalTcpConn tunes a TCP connection for a low-latency packet exchange:
// keep-alive on with a 3 minute probe period, Nagle off, explicit kernel
// buffer sizes.
func OptimalTcpConn(conn net.Conn, readBufferSize, writeBufferSize int) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		// local pipes and in-memory test conns have nothing to tune
		return nil
	}

	err := tcpConn.SetKeepAlive(true)
	if err != nil {
		return errors.WithStack(err)
	}

	err = tcpConn.SetKeepAlivePeriod(3 * time.Minute)
	if err != nil {
		return errors.WithStack(err)
	}

	err = tcpConn.SetNoDelay(true)
	if err != nil {
		return errors.WithStack(err)
	}

	err = tcpConn.SetReadBuffer(readBufferSize)
	if err != nil {
		return errors.WithStack(err)
	}

	err = tcpConn.SetWriteBuffer(writeBufferSize)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}
