package packet

import (
	"encoding/json"
	"fmt"
)

// Client → server message types.
const (
	ClientCommand = "command" // payload: the command line as a JSON string
	ClientPing    = "ping"
)

// ClientMessage is one client → server envelope.
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Decode parses a client frame.
func Decode(data []byte) (ClientMessage, error) {
	var m ClientMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return ClientMessage{}, fmt.Errorf("decode client message: %w", err)
	}
	if m.Type == "" {
		return ClientMessage{}, fmt.Errorf("decode client message: missing type")
	}
	return m, nil
}

// Command returns the command line carried by a "command" message.
func (m ClientMessage) Command() (string, error) {
	if m.Type != ClientCommand {
		return "", fmt.Errorf("message type %q carries no command", m.Type)
	}
	var line string
	if err := json.Unmarshal(m.Payload, &line); err != nil {
		return "", fmt.Errorf("command payload: %w", err)
	}
	return line, nil
}
