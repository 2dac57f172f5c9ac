// Package packet defines the JSON envelopes exchanged with clients.
package packet

import "encoding/json"

// TargetServer addresses every connected session.
const TargetServer = "server"

// Server → client message types.
const (
	TypeMessage   = "message"   // plain text for one reader
	TypeError     = "error"     // a rejected command
	TypeChat      = "chat"      // say / global / whisper / faction
	TypeCombat    = "combat"    // one resolved attack
	TypeDeath     = "death"     // a character died
	TypeArrive    = "arrive"    // someone entered a cell
	TypeDepart    = "depart"    // someone left a cell
	TypeLook      = "look"      // cell contents
	TypeInventory = "inventory" // the reader's inventory and stats
	TypeStats     = "stats"     // the reader's stats after a change
	TypeWelcome   = "welcome"   // first message after login
	TypePong      = "pong"
)

// Meta routes an envelope. A nil Meta means "the sender only".
type Meta struct {
	Target string   `json:"target,omitempty"`
	Ignore []string `json:"ignore,omitempty"`
}

// Envelope is one server → client message.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

// ToSender builds an envelope for the originating connection.
func ToSender(typ string, payload any) Envelope {
	return Envelope{Type: typ, Payload: payload}
}

// ToRoom builds an envelope for every subscriber of room, minus ignore.
func ToRoom(room, typ string, payload any, ignore ...string) Envelope {
	return Envelope{Type: typ, Payload: payload, Meta: &Meta{Target: room, Ignore: ignore}}
}

// ToServer builds a global broadcast, minus ignore.
func ToServer(typ string, payload any, ignore ...string) Envelope {
	return ToRoom(TargetServer, typ, payload, ignore...)
}

// Text is a plain message to the sender.
func Text(text string) Envelope {
	return ToSender(TypeMessage, text)
}

// Error is a rejection message to the sender.
func Error(text string) Envelope {
	return ToSender(TypeError, text)
}

// Scoped reports whether the envelope goes beyond the sender.
func (e Envelope) Scoped() bool { return e.Meta != nil && e.Meta.Target != "" }

// Ignores reports whether userID is excluded from delivery.
func (e Envelope) Ignores(userID string) bool {
	if e.Meta == nil {
		return false
	}
	for _, id := range e.Meta.Ignore {
		if id == userID {
			return true
		}
	}
	return false
}

// Encode marshals the envelope for the wire.
func (e Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}
