// Package domain contains core concepts of the chat relay.
// This file defines Participant entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"net"
	"strings"
	"unicode"

	"chat-relay/errors"
)

// ConnID is a stable handle issued at accept time, used as the registry key.
// It decouples participant identity from the transport object's lifecycle.
type ConnID int64

// Nobody is the zero ConnID; passing it as an exclusion excludes no one.
const Nobody ConnID = 0

// Participant represents one connected, named user.
// Name is case-insensitively unique and immutable once assigned.
type Participant struct {
	ID   ConnID
	Name string
	Addr net.Addr
}

// ValidateName checks a proposed display name: non-empty after trimming,
// within maxLen, printable, and without embedded whitespace. A name with
// spaces could never be addressed as a direct-message target.
func ValidateName(name string, maxLen int) error {
	if name == "" || len(name) > maxLen {
		return errors.ErrNameInvalid
	}
	if strings.HasPrefix(name, DirectPrefix) {
		return errors.ErrNameInvalid
	}
	for _, r := range name {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return errors.ErrNameInvalid
		}
	}
	return nil
}
