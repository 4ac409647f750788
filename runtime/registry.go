// Package runtime wires sessions, the registry and the relay together.
// It coordinates connection lifecycles without containing rendering or
// transport framing rules.
package runtime

import (
	"strings"
	"sync"

	"github.com/samber/lo"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
)

// Registry is the single structure shared across all sessions: the source
// of truth for who is online. Every read and write happens under one
// mutex, and no network I/O ever runs while it is held. Callers that need
// to send take a Snapshot first, release, then act.
type Registry struct {
	mu      sync.RWMutex
	members map[domain.ConnID]contract.Member
	names   map[string]domain.ConnID // lower-cased name -> owner
	order   []domain.ConnID          // registration order, for snapshots
}

func NewRegistry() *Registry {
	return &Registry{
		members: make(map[domain.ConnID]contract.Member),
		names:   make(map[string]domain.ConnID),
	}
}

// TryRegister inserts a member if its name is free. The check and the
// insert happen under one lock acquisition, so two concurrent handshakes
// can never both win the same name. Name comparison is case-insensitive.
func (r *Registry) TryRegister(m contract.Member) (domain.Participant, error) {
	key := strings.ToLower(m.Participant.Name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.names[key]; taken {
		return domain.Participant{}, errors.ErrNameConflict
	}
	r.members[m.Participant.ID] = m
	r.names[key] = m.Participant.ID
	r.order = append(r.order, m.Participant.ID)
	return m.Participant, nil
}

// Remove deletes the entry if present and reports the removed participant
// for announcement purposes. Removing an absent entry is a no-op, which
// makes concurrent removal triggers (peer close, dead-send sweep,
// shutdown) safe.
func (r *Registry) Remove(id domain.ConnID) (domain.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.members[id]
	if !ok {
		return domain.Participant{}, false
	}
	delete(r.members, id)
	delete(r.names, strings.ToLower(m.Participant.Name))
	r.order = lo.Without(r.order, id)
	return m.Participant, true
}

// Snapshot returns a point-in-time copy of the membership in registration
// order. The copy is what broadcast sweeps iterate, so a slow send never
// stalls the registry.
func (r *Registry) Snapshot() []contract.Member {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.FilterMap(r.order, func(id domain.ConnID, _ int) (contract.Member, bool) {
		m, ok := r.members[id]
		return m, ok
	})
}

// FindByName resolves a display name case-insensitively.
func (r *Registry) FindByName(name string) (contract.Member, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.names[strings.ToLower(name)]
	if !ok {
		return contract.Member{}, false
	}
	m, ok := r.members[id]
	return m, ok
}

// Names lists current display names in registration order.
func (r *Registry) Names() []string {
	return lo.Map(r.Snapshot(), func(m contract.Member, _ int) string {
		return m.Participant.Name
	})
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}
