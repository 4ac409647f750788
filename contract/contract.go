package contract

import (
	"context"
	"reflect"

	"chat-relay/domain"
)

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Sink delivers one already-rendered line to a participant's connection.
// Implementations serialize concurrent writes and bound each send with a
// deadline, so a stalled peer cannot block a broadcast sweep forever.
type Sink interface {
	Send(line string) error
}

// Member pairs a Participant with the delivery endpoints its Session owns.
// The registry stores Members; it never touches the raw connection.
type Member struct {
	Participant domain.Participant
	Sink        Sink
	// Kick asks the owning session to terminate. Only the session closes
	// its own socket.
	Kick func()
}

type IRegistry interface {
	TryRegister(m Member) (domain.Participant, error)
	Remove(id domain.ConnID) (domain.Participant, bool)
	Snapshot() []Member
	FindByName(name string) (Member, bool)
	Names() []string
	Count() int
}

type IRelay interface {
	Broadcast(msg domain.Message, exclude domain.ConnID)
	SendDirect(from, target, body string) error
	Notify(m Member, body string)
}
