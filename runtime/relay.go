package runtime

import (
	"fmt"
	"log/slog"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/wire"
)

// Relay formats and delivers broadcast and direct traffic, using the
// registry as its address book. A failing peer never aborts delivery to
// the remaining peers, and the relay never closes a connection it does
// not own: dead members are removed from the registry and their sessions
// are kicked, the session performs the final socket close.
type Relay struct {
	log      *slog.Logger
	registry contract.IRegistry
}

func NewRelay(log *slog.Logger, registry contract.IRegistry) *Relay {
	return &Relay{log: log, registry: registry}
}

// Broadcast delivers msg to every member except exclude (domain.Nobody
// excludes no one). The sweep is two-phase: send over a snapshot and
// collect failures, then remove each dead member exactly once and signal
// its session to terminate. The registry is never mutated mid-iteration.
func (e *Relay) Broadcast(msg domain.Message, exclude domain.ConnID) {
	line := wire.Render(msg)

	var dead []contract.Member
	for _, m := range e.registry.Snapshot() {
		if m.Participant.ID == exclude {
			continue
		}
		if err := m.Sink.Send(line); err != nil {
			e.log.Warn("Broadcast send failed",
				"to", m.Participant.Name, "addr", m.Participant.Addr, "err", err)
			dead = append(dead, m)
		}
	}

	for _, m := range dead {
		if p, ok := e.registry.Remove(m.Participant.ID); ok {
			e.log.Info("Removed dead participant", "name", p.Name, "addr", p.Addr)
		}
		if m.Kick != nil {
			m.Kick()
		}
	}
	e.log.Debug("Broadcast delivered", "id", msg.ID, "origin", msg.Origin, "dead", len(dead))
}

// SendDirect delivers body from one named participant to another and
// echoes a copy back to the sender. An unknown target notifies the sender
// and returns ErrTargetNotFound; a transport failure on the target
// returns ErrSendFailed and suppresses the sender echo.
func (e *Relay) SendDirect(from, target, body string) error {
	sender, senderOnline := e.registry.FindByName(from)

	m, ok := e.registry.FindByName(target)
	if !ok {
		if senderOnline {
			e.Notify(sender, fmt.Sprintf("User '%s' not found.", target))
		}
		return errors.ErrTargetNotFound
	}

	// Registered casing wins over whatever the sender typed.
	msg := domain.NewDirect(from, m.Participant.Name, body)

	if err := m.Sink.Send(wire.Render(msg)); err != nil {
		e.log.Warn("Direct send failed",
			"from", from, "to", m.Participant.Name, "err", err)
		if p, removed := e.registry.Remove(m.Participant.ID); removed {
			e.log.Info("Removed dead participant", "name", p.Name, "addr", p.Addr)
		}
		if m.Kick != nil {
			m.Kick()
		}
		return fmt.Errorf("%w: %s", errors.ErrSendFailed, m.Participant.Name)
	}

	if senderOnline {
		if err := sender.Sink.Send(wire.RenderEcho(msg)); err != nil {
			e.log.Warn("Direct echo failed", "to", from, "err", err)
		}
	}
	return nil
}

// Notify sends a private system notice to a single member, best effort.
func (e *Relay) Notify(m contract.Member, body string) {
	if err := m.Sink.Send(wire.Render(domain.NewSystem(body))); err != nil {
		e.log.Warn("Notify failed", "to", m.Participant.Name, "err", err)
	}
}
