package server

import (
	"io"
	"net"
	"strings"
)

// Transport carries unstructured text between the server and one remote peer.
// Recv and Send may be used concurrently: the owning session goroutine reads
// while the hub writes broadcasts under its own lock.
type Transport interface {
	// Recv blocks until the peer delivers data and returns it as a string.
	// A closed peer is reported as io.EOF.
	Recv() (string, error)

	// Send writes msg to the peer.
	Send(msg string) error

	// Close releases the underlying connection. Safe to call more than once.
	Close() error

	// RemoteAddr describes the peer for diagnostics.
	RemoteAddr() string
}

// tcpTransport adapts a stream socket to the Transport interface. There is no
// framing: one Recv returns whatever a single Read call delivers.
type tcpTransport struct {
	conn net.Conn
	buf  []byte
}

func newTCPTransport(conn net.Conn, maxMessageSize int64) *tcpTransport {
	return &tcpTransport{
		conn: conn,
		buf:  make([]byte, maxMessageSize),
	}
}

func (t *tcpTransport) Recv() (string, error) {
	for {
		n, err := t.conn.Read(t.buf)
		if n > 0 {
			return string(t.buf[:n]), nil
		}
		if err != nil {
			return "", err
		}
	}
}

func (t *tcpTransport) Send(msg string) error {
	_, err := t.conn.Write([]byte(msg))
	return err
}

func (t *tcpTransport) Close() error {
	return t.conn.Close()
}

func (t *tcpTransport) RemoteAddr() string {
	return t.conn.RemoteAddr().String()
}

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	if err == io.EOF {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "closed pipe") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "connection reset by peer")
}
