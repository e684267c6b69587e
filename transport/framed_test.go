package transport

import (
	"bytes"
	"errors"
	"net"
	"testing"
)

// pipePair returns two framed ends of an in-memory connection.
func pipePair(t *testing.T) (*Conn, *Conn) {
	t.Helper()
	a, b := net.Pipe()
	t.Cleanup(func() {
		a.Close()
		b.Close()
	})
	return NewConn(a), NewConn(b)
}

func TestLineRoundTrip(t *testing.T) {
	client, server := pipePair(t)

	errCh := make(chan error, 1)
	go func() {
		errCh <- client.SendLine("UPLOAD notes.txt")
	}()

	line, err := server.ReadLine()
	if err != nil {
		t.Fatalf("ReadLine() error: %v", err)
	}
	if line != "UPLOAD notes.txt" {
		t.Errorf("ReadLine() = %q, want %q", line, "UPLOAD notes.txt")
	}
	if err := <-errCh; err != nil {
		t.Fatalf("SendLine() error: %v", err)
	}
}

func TestLineTrimsCarriageReturn(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()
	server := NewConn(b)

	go a.Write([]byte("READY\r\n"))

	line, err := server.ReadLine()
	if err != nil {
		t.Fatalf("ReadLine() error: %v", err)
	}
	if line != "READY" {
		t.Errorf("ReadLine() = %q, want %q", line, "READY")
	}
}

func TestSendLineRejectsEmbeddedNewline(t *testing.T) {
	client, _ := pipePair(t)
	if err := client.SendLine("two\nlines"); err != ErrEmbeddedNewline {
		t.Errorf("SendLine() error = %v, want ErrEmbeddedNewline", err)
	}
}

func TestLengthRoundTrip(t *testing.T) {
	client, server := pipePair(t)

	go client.SendLength(0x0102030405060708)

	n, err := server.ReadLength()
	if err != nil {
		t.Fatalf("ReadLength() error: %v", err)
	}
	if n != 0x0102030405060708 {
		t.Errorf("ReadLength() = %#x, want %#x", n, uint64(0x0102030405060708))
	}
}

func TestBlockRoundTrip(t *testing.T) {
	client, server := pipePair(t)
	payload := bytes.Repeat([]byte{0xab, 0x00, 0x0a}, 1000)

	go client.SendBlock(payload)

	got, err := server.RecvBlock(uint64(len(payload)))
	if err != nil {
		t.Fatalf("RecvBlock() error: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("RecvBlock() returned different bytes than sent")
	}
}

// TestLineBlockLineAlignment is the regression test for the shared read
// pointer: a line, a block that contains newline bytes, and another line
// must all arrive intact even though the line reads buffer ahead.
func TestLineBlockLineAlignment(t *testing.T) {
	client, server := pipePair(t)

	block := []byte("binary\npayload\nwith\nnewlines\n")

	go func() {
		client.SendLine("SIZE 29")
		client.SendBlock(block)
		client.SendLine("END")
	}()

	line, err := server.ReadLine()
	if err != nil {
		t.Fatalf("first ReadLine() error: %v", err)
	}
	if line != "SIZE 29" {
		t.Errorf("first line = %q, want %q", line, "SIZE 29")
	}

	got, err := server.RecvBlock(uint64(len(block)))
	if err != nil {
		t.Fatalf("RecvBlock() error: %v", err)
	}
	if !bytes.Equal(got, block) {
		t.Errorf("block = %q, want %q", got, block)
	}

	line, err = server.ReadLine()
	if err != nil {
		t.Fatalf("second ReadLine() error: %v", err)
	}
	if line != "END" {
		t.Errorf("second line = %q, want %q", line, "END")
	}
}

// TestBufferedOverrunFeedsBlock forces the whole exchange into one write so
// the server's line read buffers past the delimiter into block territory.
func TestBufferedOverrunFeedsBlock(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()
	server := NewConn(b)

	block := []byte{0xde, 0xad, 0xbe, 0xef}
	wire := append([]byte("READY\n"), block...)
	go a.Write(wire)

	line, err := server.ReadLine()
	if err != nil {
		t.Fatalf("ReadLine() error: %v", err)
	}
	if line != "READY" {
		t.Errorf("ReadLine() = %q, want READY", line)
	}

	got, err := server.RecvBlock(uint64(len(block)))
	if err != nil {
		t.Fatalf("RecvBlock() error: %v", err)
	}
	if !bytes.Equal(got, block) {
		t.Errorf("RecvBlock() = %#x, want %#x", got, block)
	}
}

func TestRecvBlockTruncated(t *testing.T) {
	a, b := net.Pipe()
	defer b.Close()
	server := NewConn(b)

	go func() {
		a.Write([]byte("part"))
		a.Close()
	}()

	if _, err := server.RecvBlock(10); !errors.Is(err, ErrTruncatedTransfer) {
		t.Errorf("RecvBlock() error = %v, want ErrTruncatedTransfer", err)
	}
}

func TestRecvBlockTooLarge(t *testing.T) {
	_, server := pipePair(t)
	if _, err := server.RecvBlock(MaxBlockSize + 1); err != ErrBlockTooLarge {
		t.Errorf("RecvBlock() error = %v, want ErrBlockTooLarge", err)
	}
}

func TestReadLineConnectionClosed(t *testing.T) {
	a, b := net.Pipe()
	server := NewConn(b)

	a.Close()

	if _, err := server.ReadLine(); !errors.Is(err, ErrConnectionClosed) {
		t.Errorf("ReadLine() error = %v, want ErrConnectionClosed", err)
	}
}

func TestCloseUnblocksPendingRead(t *testing.T) {
	_, server := pipePair(t)

	done := make(chan error, 1)
	go func() {
		_, err := server.ReadLine()
		done <- err
	}()

	server.Close()

	if err := <-done; !errors.Is(err, ErrConnectionClosed) {
		t.Errorf("pending ReadLine() error = %v, want ErrConnectionClosed", err)
	}
}
