package runtime

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
)

// recordingSink captures delivered lines; it can be told to fail like a
// broken socket.
type recordingSink struct {
	mu    sync.Mutex
	lines []string
	fail  bool
}

func (s *recordingSink) Send(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.ErrSendFailed
	}
	s.lines = append(s.lines, line)
	return nil
}

func (s *recordingSink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

func join(t *testing.T, registry *Registry, id int64, name string, sink *recordingSink, kicked *int) {
	t.Helper()
	_, err := registry.TryRegister(contract.Member{
		Participant: domain.Participant{ID: domain.ConnID(id), Name: name},
		Sink:        sink,
		Kick: func() {
			if kicked != nil {
				*kicked++
			}
		},
	})
	require.NoError(t, err)
}

func TestRelay_BroadcastExcludesSender(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	relay := NewRelay(slog.Default(), registry)

	alice, bob, carol := &recordingSink{}, &recordingSink{}, &recordingSink{}
	join(t, registry, 1, "alice", alice, nil)
	join(t, registry, 2, "bob", bob, nil)
	join(t, registry, 3, "carol", carol, nil)

	// When alice broadcasts
	relay.Broadcast(domain.NewBroadcast("alice", "hello"), 1)

	// Then everyone but alice receives the rendered line
	req.Empty(alice.Lines())
	req.Equal([]string{"@alice: hello"}, bob.Lines())
	req.Equal([]string{"@alice: hello"}, carol.Lines())
}

func TestRelay_BroadcastSweepsDeadConnections(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	relay := NewRelay(slog.Default(), registry)

	alice, carol := &recordingSink{}, &recordingSink{}
	dead := &recordingSink{fail: true}
	kicked := 0
	join(t, registry, 1, "alice", alice, nil)
	join(t, registry, 2, "bob", dead, &kicked)
	join(t, registry, 3, "carol", carol, nil)

	// When a broadcast hits the broken connection
	relay.Broadcast(domain.NewSystem("notice"), domain.Nobody)

	// Then delivery to the healthy peers completed anyway
	req.Equal([]string{"[System]: notice"}, alice.Lines())
	req.Equal([]string{"[System]: notice"}, carol.Lines())

	// And the dead member was removed once and its session kicked
	req.Equal(2, registry.Count())
	req.Equal(1, kicked)
	_, found := registry.FindByName("bob")
	req.False(found)

	// And a second sweep does not touch it again
	relay.Broadcast(domain.NewSystem("again"), domain.Nobody)
	req.Equal(1, kicked)
}

func TestRelay_SendDirect(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	relay := NewRelay(slog.Default(), registry)

	alice, bob := &recordingSink{}, &recordingSink{}
	join(t, registry, 1, "alice", alice, nil)
	join(t, registry, 2, "Bob", bob, nil)

	// When alice messages bob, casing ignored
	err := relay.SendDirect("alice", "bob", "hello")

	// Then bob gets the message and alice the echo, registered casing wins
	req.NoError(err)
	req.Equal([]string{"[DM from alice]: hello"}, bob.Lines())
	req.Equal([]string{"[DM to Bob]: hello"}, alice.Lines())
}

func TestRelay_SendDirectTargetNotFound(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	relay := NewRelay(slog.Default(), registry)

	alice, carol := &recordingSink{}, &recordingSink{}
	join(t, registry, 1, "alice", alice, nil)
	join(t, registry, 2, "carol", carol, nil)

	// When the target is not registered
	err := relay.SendDirect("alice", "bob", "hello")

	// Then the sender is notified and nobody else hears about it
	req.ErrorIs(err, errors.ErrTargetNotFound)
	req.Equal([]string{"[System]: User 'bob' not found."}, alice.Lines())
	req.Empty(carol.Lines())
}

func TestRelay_SendDirectTransportFailure(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	relay := NewRelay(slog.Default(), registry)

	alice := &recordingSink{}
	dead := &recordingSink{fail: true}
	kicked := 0
	join(t, registry, 1, "alice", alice, nil)
	join(t, registry, 2, "bob", dead, &kicked)

	// When the target's transport fails
	err := relay.SendDirect("alice", "bob", "hello")

	// Then the error is reported, no echo reaches the sender, and the
	// dead member is swept
	req.ErrorIs(err, errors.ErrSendFailed)
	req.Empty(alice.Lines())
	req.Equal(1, kicked)
	_, found := registry.FindByName("bob")
	req.False(found)
}
