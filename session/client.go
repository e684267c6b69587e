package session

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/vaultwire/crypto"
	"github.com/opd-ai/vaultwire/transport"
)

// Client drives the client half of the protocol over an established,
// already-secured connection. Commands run one at a time; Client is not safe
// for concurrent use.
type Client struct {
	conn *transport.Conn
	key  crypto.Key
	user string
}

// NewClient frames conn for the protocol. The session is unauthenticated
// until Authenticate succeeds.
func NewClient(conn net.Conn) *Client {
	return &Client{conn: transport.NewConn(conn)}
}

// Authenticate performs the login round trip. The password is sent to the
// server for verification; the payload key is derived locally from the same
// password and never transmitted.
func (c *Client) Authenticate(username, password string) error {
	// The server opens with a prompt line; its content is unspecified.
	if _, err := c.conn.ReadLine(); err != nil {
		return err
	}

	if err := c.conn.SendLine(username + ":" + password); err != nil {
		return err
	}

	resp, err := c.conn.ReadLine()
	if err != nil {
		return err
	}
	if !strings.HasPrefix(resp, prefixSuccess) {
		return fmt.Errorf("%w: %s", ErrAuthenticationFailed, trimResponse(resp))
	}

	c.key = crypto.DeriveKey(password)
	c.user = username

	logrus.WithFields(logrus.Fields{
		"function": "Authenticate",
		"user":     username,
	}).Info("Authenticated")
	return nil
}

// User returns the authenticated username, or "" before Authenticate.
func (c *Client) User() string {
	return c.user
}

// Upload seals plaintext under the session key and stores it remotely as
// name, overwriting any previous content.
func (c *Client) Upload(name string, plaintext []byte) error {
	if err := c.requireAuth(); err != nil {
		return err
	}

	sealed, err := crypto.Encrypt(c.key, plaintext)
	if err != nil {
		return err
	}

	if err := c.conn.SendLine(CmdUpload + " " + name); err != nil {
		return err
	}
	if err := c.conn.SendLength(uint64(len(sealed))); err != nil {
		return err
	}

	line, err := c.conn.ReadLine()
	if err != nil {
		return err
	}
	if line != LineReady {
		return &RemoteError{Reason: trimResponse(line)}
	}

	if err := c.conn.SendBlock(sealed); err != nil {
		return err
	}

	resp, err := c.conn.ReadLine()
	if err != nil {
		return err
	}
	if !strings.HasPrefix(resp, prefixSuccess) {
		return &RemoteError{Reason: trimResponse(resp)}
	}

	logrus.WithFields(logrus.Fields{
		"function": "Upload",
		"file":     name,
		"bytes":    len(plaintext),
	}).Info("Upload complete")
	return nil
}

// Download retrieves name from the user's remote namespace and returns the
// decrypted contents.
func (c *Client) Download(name string) ([]byte, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}

	if err := c.conn.SendLine(CmdDownload + " " + name); err != nil {
		return nil, err
	}

	resp, err := c.conn.ReadLine()
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(resp, prefixSize) {
		return nil, &RemoteError{Reason: trimResponse(resp)}
	}

	length, err := strconv.ParseUint(strings.TrimPrefix(resp, prefixSize), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad size line %q", ErrProtocolViolation, resp)
	}

	if err := c.conn.SendLine(LineReady); err != nil {
		return nil, err
	}

	sealed, err := c.conn.RecvBlock(length)
	if err != nil {
		return nil, err
	}

	plaintext, err := crypto.Decrypt(c.key, sealed)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function": "Download",
		"file":     name,
		"bytes":    len(plaintext),
	}).Info("Download complete")
	return plaintext, nil
}

// List returns the names stored in the user's remote namespace. It reads
// exactly the announced number of name lines plus the terminator.
func (c *Client) List() ([]string, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}

	if err := c.conn.SendLine(CmdList); err != nil {
		return nil, err
	}

	resp, err := c.conn.ReadLine()
	if err != nil {
		return nil, err
	}
	if resp == LineNoFiles {
		return nil, nil
	}
	if strings.HasPrefix(resp, prefixFailed) {
		return nil, &RemoteError{Reason: trimResponse(resp)}
	}

	header, ok := strings.CutPrefix(resp, prefixFiles)
	if !ok {
		return nil, fmt.Errorf("%w: bad list header %q", ErrProtocolViolation, resp)
	}
	count, err := strconv.Atoi(header)
	if err != nil || count < 0 {
		return nil, fmt.Errorf("%w: bad list header %q", ErrProtocolViolation, resp)
	}

	names := make([]string, 0, count)
	for i := 0; i < count; i++ {
		name, err := c.conn.ReadLine()
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	end, err := c.conn.ReadLine()
	if err != nil {
		return nil, err
	}
	if end != LineEnd {
		return nil, fmt.Errorf("%w: missing list terminator, got %q", ErrProtocolViolation, end)
	}
	return names, nil
}

// Exit performs the clean shutdown exchange and closes the channel.
func (c *Client) Exit() error {
	if err := c.conn.SendLine(CmdExit); err != nil {
		c.conn.Close()
		return err
	}
	// Goodbye acknowledgement; the session is over either way.
	c.conn.ReadLine()
	return c.conn.Close()
}

// Close tears down the channel without the exit exchange.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) requireAuth() error {
	if c.user == "" {
		return ErrNotAuthenticated
	}
	return nil
}
