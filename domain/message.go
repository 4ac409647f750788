// Package domain contains core concepts of the chat relay.
// This file defines Message values and classification rules.
// Messages are immutable and validated by the domain.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"chat-relay/errors"
)

// Kind distinguishes how a Message is routed and rendered.
type Kind int

const (
	KindBroadcast Kind = iota
	KindDirect
	KindSystem
)

// DirectPrefix marks a line addressed to a single user: "@bob hello".
const DirectPrefix = "@"

// Message represents one immutable outbound chat event. It carries
// structured fields only; rendering to wire text happens at send time.
type Message struct {
	ID     uuid.UUID
	Kind   Kind
	Origin string // sender name, empty for system notices
	Target string // recipient name, direct messages only
	Body   string
	At     time.Time
}

func NewBroadcast(origin, body string) Message {
	return Message{ID: uuid.New(), Kind: KindBroadcast, Origin: origin, Body: body, At: time.Now().UTC()}
}

func NewDirect(origin, target, body string) Message {
	return Message{ID: uuid.New(), Kind: KindDirect, Origin: origin, Target: target, Body: body, At: time.Now().UTC()}
}

func NewSystem(body string) Message {
	return Message{ID: uuid.New(), Kind: KindSystem, Body: body, At: time.Now().UTC()}
}

// Classify turns one received line into a Message for the given origin.
// A line starting with "@" addresses a single user and must carry a
// non-empty body after the target token; anything else is broadcast with
// the line as its verbatim body.
func Classify(origin, line string) (Message, error) {
	if !strings.HasPrefix(line, DirectPrefix) {
		return NewBroadcast(origin, line), nil
	}
	target, body, found := strings.Cut(line[len(DirectPrefix):], " ")
	if !found || target == "" || strings.TrimSpace(body) == "" {
		return Message{}, errors.ErrMalformedDirect
	}
	return NewDirect(origin, target, body), nil
}
