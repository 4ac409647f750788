package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"chat-relay/domain"
)

const acceptRetryDelay = 100 * time.Millisecond

// ServerConfig is the listener's external surface: where to bind and the
// per-session bounds handed to every accepted connection.
type ServerConfig struct {
	Host    string
	Port    int
	Session SessionConfig
}

// Server accepts TCP connections and runs one Session goroutine per
// connection, all sharing the process-wide registry and relay. It
// implements contract.Worker so the supervisor owns its lifecycle.
type Server struct {
	log      *slog.Logger
	registry *Registry
	relay    *Relay
	cfg      ServerConfig

	listener net.Listener
	nextID   atomic.Int64
	wg       sync.WaitGroup
}

func NewServer(log *slog.Logger, registry *Registry, relay *Relay, cfg ServerConfig) *Server {
	return &Server{log: log, registry: registry, relay: relay, cfg: cfg}
}

// Listen binds the configured endpoint. A bind failure is fatal to the
// process and must be reported before anything starts serving.
func (s *Server) Listen() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", addr, err)
	}
	s.listener = l
	return nil
}

// Addr reports the bound address, useful when the port was 0.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Run accepts until ctx is canceled. Transient accept errors are logged
// and retried; they never bring the listener down. On cancellation the
// listener closes, every session notices within its poll window, and Run
// returns only after the last session goroutine finished.
func (s *Server) Run(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	defer s.wg.Wait()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		<-ctx.Done()
		_ = s.listener.Close()
	}()

	s.log.Info("Listening", "addr", s.listener.Addr())
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.log.Warn("Accept failed", "err", err)
			time.Sleep(acceptRetryDelay)
			continue
		}

		id := domain.ConnID(s.nextID.Add(1))
		sess := NewSession(id, conn, s.log, s.registry, s.relay, s.cfg.Session)

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			_ = sess.Run(ctx)
		}()
	}
}
