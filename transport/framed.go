package transport

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"strings"

	"github.com/sirupsen/logrus"
)

// MaxBlockSize bounds a single announced block. Sealed payloads never exceed
// the service's plaintext bound plus cipher overhead, so anything larger is a
// misbehaving peer rather than a legitimate transfer.
const MaxBlockSize = 256*1024*1024 + 64

// LengthSize is the wire size of a block-length announcement.
const LengthSize = 8

// Conn frames a single byte stream into newline-terminated text lines and
// length-delimited binary blocks.
//
// One bufio.Reader owns the read side for both modes: line reads stop at the
// delimiter, and block reads drain the reader's internal buffer before
// touching the underlying connection. Every send flushes before returning.
type Conn struct {
	conn net.Conn
	r    *bufio.Reader
	w    *bufio.Writer
}

// NewConn frames an established connection. The stream is expected to be
// secured and ordered already; Conn adds no security of its own.
func NewConn(c net.Conn) *Conn {
	return &Conn{
		conn: c,
		r:    bufio.NewReader(c),
		w:    bufio.NewWriter(c),
	}
}

// SendLine writes one newline-terminated line and flushes it.
func (c *Conn) SendLine(line string) error {
	if strings.ContainsRune(line, '\n') {
		return ErrEmbeddedNewline
	}
	if _, err := c.w.WriteString(line); err != nil {
		return mapStreamErr(err)
	}
	if err := c.w.WriteByte('\n'); err != nil {
		return mapStreamErr(err)
	}
	return c.flush()
}

// ReadLine blocks until a full line arrives and returns it without the
// trailing delimiter. A disconnect mid-read reports ErrConnectionClosed.
func (c *Conn) ReadLine() (string, error) {
	line, err := c.r.ReadString('\n')
	if err != nil {
		return "", mapStreamErr(err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// SendLength announces an upcoming block's size as an 8-byte big-endian
// integer.
func (c *Conn) SendLength(n uint64) error {
	var buf [LengthSize]byte
	binary.BigEndian.PutUint64(buf[:], n)
	if _, err := c.w.Write(buf[:]); err != nil {
		return mapStreamErr(err)
	}
	return c.flush()
}

// ReadLength reads an 8-byte big-endian block-size announcement.
func (c *Conn) ReadLength() (uint64, error) {
	var buf [LengthSize]byte
	if _, err := io.ReadFull(c.r, buf[:]); err != nil {
		return 0, mapStreamErr(err)
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

// SendBlock writes the raw bytes with no delimiter and flushes. The receiver
// must already know the length from a prior announcement.
func (c *Conn) SendBlock(block []byte) error {
	if _, err := c.w.Write(block); err != nil {
		return mapStreamErr(err)
	}
	if err := c.flush(); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"function": "SendBlock",
		"bytes":    len(block),
	}).Debug("Block sent")
	return nil
}

// RecvBlock reads exactly length bytes, draining any bytes already buffered
// by a prior line read before pulling fresh ones from the connection. A
// disconnect before the block completes reports ErrTruncatedTransfer.
func (c *Conn) RecvBlock(length uint64) ([]byte, error) {
	if length > MaxBlockSize {
		return nil, ErrBlockTooLarge
	}

	block := make([]byte, length)
	if _, err := io.ReadFull(c.r, block); err != nil {
		if isClosed(err) {
			return nil, ErrTruncatedTransfer
		}
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function": "RecvBlock",
		"bytes":    length,
	}).Debug("Block received")
	return block, nil
}

// Close closes the underlying connection, unblocking any pending reads on
// either peer.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// RemoteAddr reports the peer's address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

func (c *Conn) flush() error {
	if err := c.w.Flush(); err != nil {
		return mapStreamErr(err)
	}
	return nil
}

// isClosed reports whether err is any of the shapes a dropped or closed
// connection produces.
func isClosed(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed)
}

func mapStreamErr(err error) error {
	if isClosed(err) {
		return ErrConnectionClosed
	}
	return err
}
