package runtime

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/wire"
)

// State is the session lifecycle position. Transitions only move forward.
type State int32

const (
	StateConnecting State = iota
	StateRegistering
	StateActive
	StateClosing
	StateClosed
)

// SessionConfig bounds the per-connection timers and sizes.
type SessionConfig struct {
	// RegisterTimeout bounds the name handshake.
	RegisterTimeout time.Duration
	// PollTimeout is the read-deadline granularity of the active loop,
	// used only to re-check shutdown; it is not a protocol timeout.
	PollTimeout time.Duration
	// SendTimeout is the write deadline applied to every send.
	SendTimeout time.Duration
	MaxLineLen  int
	MaxNameLen  int
}

// Session drives one connection from accept to close: name handshake,
// registration, read loop with message classification, and idempotent
// cleanup. It owns the connection exclusively; everyone else reaches the
// peer through the Sink it implements.
type Session struct {
	id       domain.ConnID
	conn     net.Conn
	log      *slog.Logger
	registry contract.IRegistry
	relay    contract.IRelay
	cfg      SessionConfig

	reader *wire.LineReader

	writeMu sync.Mutex

	state atomic.Int32

	closeOnce sync.Once

	// mu guards name and registered, written once during the handshake
	// and read by Close, which may run on another goroutine.
	mu         sync.Mutex
	name       string
	registered bool
}

func NewSession(id domain.ConnID, conn net.Conn, log *slog.Logger,
	registry contract.IRegistry, relay contract.IRelay, cfg SessionConfig) *Session {
	return &Session{
		id:       id,
		conn:     conn,
		log:      log.With("conn", int64(id), "addr", conn.RemoteAddr()),
		registry: registry,
		relay:    relay,
		cfg:      cfg,
		reader:   wire.NewLineReader(conn, cfg.MaxLineLen),
	}
}

func (s *Session) ID() domain.ConnID { return s.id }

func (s *Session) State() State { return State(s.state.Load()) }

// Run executes the whole session lifecycle. It always returns nil: a
// failed connection is contained here and must never abort the listener
// or any other session.
func (s *Session) Run(ctx context.Context) error {
	defer s.Close()

	if err := s.handshake(); err != nil {
		s.log.Info("Registration failed", "err", err)
		return nil
	}
	s.readLoop(ctx)
	return nil
}

// handshake reads exactly one line as the proposed name within the
// registration timeout. Any rejection sends a system notice while the
// socket is still writable; no participant is created on failure.
func (s *Session) handshake() error {
	s.state.Store(int32(StateRegistering))

	line, err := s.reader.ReadLine(time.Now().Add(s.cfg.RegisterTimeout))
	if err != nil {
		if stderrors.Is(err, os.ErrDeadlineExceeded) {
			s.notify("Registration timed out.")
		}
		return fmt.Errorf("name handshake: %w", err)
	}

	name := strings.TrimSpace(line)
	if err := domain.ValidateName(name, s.cfg.MaxNameLen); err != nil {
		s.notify("Invalid username.")
		return err
	}

	_, err = s.registry.TryRegister(contract.Member{
		Participant: domain.Participant{ID: s.id, Name: name, Addr: s.conn.RemoteAddr()},
		Sink:        s,
		Kick:        s.Close,
	})
	if err != nil {
		s.notify(fmt.Sprintf("Username '%s' is already in use. Please choose another.", name))
		return err
	}

	s.mu.Lock()
	s.name = name
	s.registered = true
	s.mu.Unlock()
	s.state.Store(int32(StateActive))

	s.relay.Broadcast(domain.NewSystem(fmt.Sprintf("@%s has joined the chat.", name)), s.id)
	s.notify(fmt.Sprintf("Welcome, %s! Current users: %s",
		name, strings.Join(s.registry.Names(), ", ")))
	s.log.Info("Participant connected", "name", name)
	return nil
}

// readLoop processes one line at a time: the relay call completes before
// the next read, which is what gives per-sender delivery ordering. The
// short poll deadline only exists so shutdown is noticed within a bounded
// period.
func (s *Session) readLoop(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		line, err := s.reader.ReadLine(time.Now().Add(s.cfg.PollTimeout))
		switch {
		case err == nil:
			s.dispatch(line)
		case stderrors.Is(err, os.ErrDeadlineExceeded):
			// Liveness check window, nothing received.
		case stderrors.Is(err, errors.ErrLineTooLong):
			s.notify("Message exceeds the maximum length, disconnecting.")
			s.log.Warn("Protocol violation: oversized line")
			return
		default:
			// Peer closed or transport failure; either way this
			// session is done.
			return
		}
	}
}

// dispatch classifies one complete line and hands it to the relay.
func (s *Session) dispatch(line string) {
	msg, err := domain.Classify(s.name, line)
	if err != nil {
		s.notify("Invalid DM format. Use '@username message'")
		return
	}
	switch msg.Kind {
	case domain.KindDirect:
		if err := s.relay.SendDirect(s.name, msg.Target, msg.Body); err != nil {
			s.log.Debug("Direct message not delivered", "target", msg.Target, "err", err)
		}
	default:
		s.relay.Broadcast(msg, s.id)
	}
}

// Send implements contract.Sink: one rendered line to the peer, writes
// serialized and bounded by the send deadline so a stalled peer cannot
// hold up a broadcast sweep indefinitely.
func (s *Session) Send(line string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.State() >= StateClosing {
		return errors.ErrSessionClosed
	}
	if err := s.conn.SetWriteDeadline(time.Now().Add(s.cfg.SendTimeout)); err != nil {
		return err
	}
	_, err := s.conn.Write([]byte(line + "\n"))
	return err
}

// notify sends a private system notice directly over this session's own
// sink, best effort: the socket may already be broken.
func (s *Session) notify(body string) {
	if err := s.Send(wire.Render(domain.NewSystem(body))); err != nil {
		s.log.Debug("Notice not delivered", "err", err)
	}
}

// Close is idempotent and safe from any goroutine: peer disconnect, a
// relay dead-send kick and server shutdown may all race here. Exactly one
// trigger performs the registry removal, the socket close and the
// departure announcement.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.state.Store(int32(StateClosing))

		p, removed := s.registry.Remove(s.id)
		_ = s.conn.Close()

		s.mu.Lock()
		name, wasRegistered := s.name, s.registered
		s.mu.Unlock()
		if removed {
			name = p.Name
		}

		if removed || wasRegistered {
			// The departing socket is already gone, nobody to exclude.
			s.relay.Broadcast(domain.NewSystem(
				fmt.Sprintf("@%s has left the chat.", name)), domain.Nobody)
			s.log.Info("Participant disconnected", "name", name)
		}
		s.state.Store(int32(StateClosed))
	})
}
