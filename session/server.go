package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/vaultwire/auth"
	"github.com/opd-ai/vaultwire/storage"
	"github.com/opd-ai/vaultwire/transport"
)

// Handler runs the server half of the protocol for one connection. It is
// owned exclusively by the goroutine handling that connection.
type Handler struct {
	conn  *transport.Conn
	creds *auth.Store
	files *storage.Dir
	user  string
	log   *logrus.Entry
}

// NewHandler binds a handler to an accepted, framed connection.
func NewHandler(conn *transport.Conn, creds *auth.Store, files *storage.Dir) *Handler {
	return &Handler{
		conn:  conn,
		creds: creds,
		files: files,
		log: logrus.WithFields(logrus.Fields{
			"session": uuid.NewString()[:8],
			"remote":  conn.RemoteAddr().String(),
		}),
	}
}

// Run drives the session from handshake to close. It returns when the client
// exits, authentication fails, or the channel breaks; the connection is
// closed in every case.
func (h *Handler) Run() {
	defer h.conn.Close()

	h.log.Info("Session started")

	if err := h.authenticate(); err != nil {
		h.log.WithError(err).Info("Session ended before authentication")
		return
	}

	h.commandLoop()
	h.log.Info("Session closed")
}

// authenticate performs the single-round-trip handshake. A malformed
// credential line fails without touching the store.
func (h *Handler) authenticate() error {
	if err := h.conn.SendLine(LoginPrompt); err != nil {
		return err
	}

	line, err := h.conn.ReadLine()
	if err != nil {
		return err
	}

	username, password, ok := strings.Cut(line, ":")
	if !ok {
		h.conn.SendLine(failLine("Invalid credentials format"))
		return fmt.Errorf("%w: malformed credential line", ErrAuthenticationFailed)
	}

	if !h.creds.Verify(username, password) {
		h.conn.SendLine(failLine("Invalid username or password"))
		return fmt.Errorf("%w: user %q", ErrAuthenticationFailed, username)
	}

	h.user = username
	h.log = h.log.WithField("user", username)
	h.log.Info("Client authenticated")

	return h.conn.SendLine(successLine("Authenticated as " + username))
}

// commandLoop executes commands strictly sequentially until EXIT or a channel
// error. Handlers return a non-nil error only for channel-level failures;
// per-command failures have already been reported to the peer.
func (h *Handler) commandLoop() {
	for {
		line, err := h.conn.ReadLine()
		if err != nil {
			if !errors.Is(err, transport.ErrConnectionClosed) {
				h.log.WithError(err).Warn("Command read failed")
			}
			return
		}

		cmd := parseCommand(line)
		h.log.WithFields(logrus.Fields{
			"function": "commandLoop",
			"command":  cmd.verb,
		}).Debug("Command received")

		switch cmd.verb {
		case CmdUpload:
			err = h.requireArg(cmd, h.handleUpload)
		case CmdDownload:
			err = h.requireArg(cmd, h.handleDownload)
		case CmdList:
			err = h.handleList()
		case CmdExit:
			h.conn.SendLine(LineGoodbye)
			return
		default:
			err = h.conn.SendLine(failLine("Unknown command"))
		}

		if err != nil {
			h.log.WithError(err).Warn("Session channel failed")
			return
		}
	}
}

func (h *Handler) requireArg(cmd command, handle func(string) error) error {
	if cmd.arg == "" {
		return h.conn.SendLine(failLine("Missing filename"))
	}
	return handle(cmd.arg)
}

// handleUpload receives one announced ciphertext block into the user's
// namespace. A refusal is sent in place of READY, before the client streams
// any payload bytes, so the channel stays aligned.
func (h *Handler) handleUpload(name string) error {
	length, err := h.conn.ReadLength()
	if err != nil {
		return err
	}

	if err := storage.ValidateName(name); err != nil {
		return h.conn.SendLine(failLine("Invalid filename"))
	}
	if length > transport.MaxBlockSize {
		return h.conn.SendLine(failLine("File too large"))
	}

	if err := h.conn.SendLine(LineReady); err != nil {
		return err
	}

	block, err := h.conn.RecvBlock(length)
	if err != nil {
		return err
	}

	if err := h.files.Save(h.user, name, block); err != nil {
		h.log.WithError(err).WithField("file", name).Error("Upload store failed")
		return h.conn.SendLine(failLine("Could not store file"))
	}

	h.log.WithFields(logrus.Fields{
		"file":  name,
		"bytes": length,
	}).Info("File uploaded")

	return h.conn.SendLine(successLine("File uploaded successfully"))
}

// handleDownload streams a stored ciphertext block to the client. No SIZE
// line is ever sent for a missing file, and the block is streamed only after
// the client's READY.
func (h *Handler) handleDownload(name string) error {
	if err := storage.ValidateName(name); err != nil {
		return h.conn.SendLine(failLine("File not found"))
	}

	data, err := h.files.Load(h.user, name)
	if errors.Is(err, storage.ErrFileNotFound) {
		return h.conn.SendLine(failLine("File not found"))
	}
	if err != nil {
		h.log.WithError(err).WithField("file", name).Error("Download read failed")
		return h.conn.SendLine(failLine("Could not read file"))
	}

	if err := h.conn.SendLine(fmt.Sprintf("SIZE %d", len(data))); err != nil {
		return err
	}

	ack, err := h.conn.ReadLine()
	if err != nil {
		return err
	}
	if ack != LineReady {
		// The client declined the transfer; the command is abandoned and the
		// session stays usable.
		h.log.WithField("line", ack).Warn("Expected READY")
		return nil
	}

	if err := h.conn.SendBlock(data); err != nil {
		return err
	}

	h.log.WithFields(logrus.Fields{
		"file":  name,
		"bytes": len(data),
	}).Info("File downloaded")
	return nil
}

func (h *Handler) handleList() error {
	names, err := h.files.List(h.user)
	if err != nil {
		h.log.WithError(err).Error("List failed")
		return h.conn.SendLine(failLine("Could not list files"))
	}

	if len(names) == 0 {
		return h.conn.SendLine(LineNoFiles)
	}

	if err := h.conn.SendLine(fmt.Sprintf("Files: %d", len(names))); err != nil {
		return err
	}
	for _, name := range names {
		if err := h.conn.SendLine(name); err != nil {
			return err
		}
	}
	return h.conn.SendLine(LineEnd)
}
