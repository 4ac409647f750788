package wire

import "chat-relay/domain"

// Message prefixes as seen by the peer.
const (
	SystemPrefix = "[System]"
	dmFrom       = "[DM from "
	dmTo         = "[DM to "
)

// Render produces the wire text of a message as the recipient sees it.
// The framing newline is appended at send time, not here.
func Render(m domain.Message) string {
	switch m.Kind {
	case domain.KindBroadcast:
		return domain.DirectPrefix + m.Origin + ": " + m.Body
	case domain.KindDirect:
		return dmFrom + m.Origin + "]: " + m.Body
	case domain.KindSystem:
		return SystemPrefix + ": " + m.Body
	}
	return m.Body
}

// RenderEcho produces the sender-side copy of a direct message.
func RenderEcho(m domain.Message) string {
	return dmTo + m.Target + "]: " + m.Body
}
