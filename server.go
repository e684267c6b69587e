package vaultwire

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/opd-ai/vaultwire/auth"
	"github.com/opd-ai/vaultwire/session"
	"github.com/opd-ai/vaultwire/storage"
	"github.com/opd-ai/vaultwire/transport"
)

// Options configures a Server.
type Options struct {
	// Addr is the listen address, e.g. ":8444".
	Addr string

	// CertFile and KeyFile hold the server's TLS certificate. Leaving both
	// empty listens on plain TCP, for tests and links secured externally.
	CertFile string
	KeyFile  string

	// StorageDir is the root of the per-user file namespaces.
	StorageDir string

	// AcceptRate bounds accepted connections per second; AcceptBurst is the
	// burst allowance. Zero AcceptRate disables the bound.
	AcceptRate  float64
	AcceptBurst int
}

// Server accepts connections and runs one independent session per connection.
// Sessions share only the read-mostly credential store and the per-user file
// namespaces.
type Server struct {
	listener net.Listener
	creds    *auth.Store
	files    *storage.Dir
	limiter  *rate.Limiter

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

// NewServer opens the listener and prepares storage. Credentials must be
// provisioned on store before clients connect; each provisioned user gets a
// namespace directory up front.
func NewServer(opts Options, store *auth.Store) (*Server, error) {
	files, err := storage.NewDir(opts.StorageDir)
	if err != nil {
		return nil, err
	}
	for _, username := range store.Usernames() {
		if err := files.Provision(username); err != nil {
			return nil, fmt.Errorf("vaultwire: provision %s: %w", username, err)
		}
	}

	var ln net.Listener
	if opts.CertFile != "" || opts.KeyFile != "" {
		ln, err = transport.Listen(opts.Addr, opts.CertFile, opts.KeyFile)
	} else {
		ln, err = net.Listen("tcp", opts.Addr)
	}
	if err != nil {
		return nil, err
	}

	var limiter *rate.Limiter
	if opts.AcceptRate > 0 {
		burst := opts.AcceptBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.AcceptRate), burst)
	}

	ctx, cancel := context.WithCancel(context.Background())

	logrus.WithFields(logrus.Fields{
		"function": "NewServer",
		"addr":     ln.Addr().String(),
		"storage":  files.Root(),
		"tls":      opts.CertFile != "",
	}).Info("Server ready")

	return &Server{
		listener: ln,
		creds:    store,
		files:    files,
		limiter:  limiter,
		ctx:      ctx,
		cancel:   cancel,
		conns:    make(map[net.Conn]struct{}),
	}, nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve accepts connections until Close is called. The accept loop is the
// only serialized point; each accepted connection runs its session on its own
// goroutine.
func (s *Server) Serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			logrus.WithError(err).Error("Accept failed")
			continue
		}

		if s.limiter != nil && !s.limiter.Allow() {
			logrus.WithFields(logrus.Fields{
				"function": "Serve",
				"remote":   conn.RemoteAddr().String(),
			}).Warn("Connection rejected by accept limiter")
			conn.Close()
			continue
		}

		logrus.WithFields(logrus.Fields{
			"function": "Serve",
			"remote":   conn.RemoteAddr().String(),
		}).Info("Client connected")

		s.track(conn)
		s.wg.Add(1)
		go func(c net.Conn) {
			defer s.wg.Done()
			defer s.untrack(c)
			session.NewHandler(transport.NewConn(c), s.creds, s.files).Run()
		}(conn)
	}
}

// Close stops accepting, closes live connections to unblock their sessions,
// and waits for every handler goroutine to finish.
func (s *Server) Close() error {
	s.cancel()
	err := s.listener.Close()

	s.mu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	logrus.WithField("function", "Close").Info("Server stopped")
	return err
}

func (s *Server) track(conn net.Conn) {
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	conn.Close()
}
