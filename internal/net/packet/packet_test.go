package packet

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeOmitsMetaForSender(t *testing.T) {
	data, err := Text("hello").Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"message","payload":"hello"}`, string(data))
}

func TestEnvelopeRoomMeta(t *testing.T) {
	env := ToRoom("m_1_2", TypeChat, ChatPayload{Channel: ChannelLocal, From: "a", Text: "hi"}, "u1")
	assert.True(t, env.Scoped())
	assert.True(t, env.Ignores("u1"))
	assert.False(t, env.Ignores("u2"))

	data, err := env.Encode()
	require.NoError(t, err)
	var back map[string]any
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, map[string]any{"target": "m_1_2", "ignore": []any{"u1"}}, back["meta"])
}

func TestToServer(t *testing.T) {
	env := ToServer(TypeChat, "x")
	require.NotNil(t, env.Meta)
	assert.Equal(t, TargetServer, env.Meta.Target)
	assert.False(t, Error("no").Scoped())
}

func TestDecodeCommand(t *testing.T) {
	m, err := Decode([]byte(`{"type":"command","payload":"/aim bob"}`))
	require.NoError(t, err)
	line, err := m.Command()
	require.NoError(t, err)
	assert.Equal(t, "/aim bob", line)
}

func TestDecodeRejects(t *testing.T) {
	_, err := Decode([]byte(`not json`))
	assert.Error(t, err)
	_, err = Decode([]byte(`{"payload":"x"}`))
	assert.Error(t, err)

	m, err := Decode([]byte(`{"type":"ping"}`))
	require.NoError(t, err)
	_, err = m.Command()
	assert.Error(t, err)

	m, err = Decode([]byte(`{"type":"command","payload":42}`))
	require.NoError(t, err)
	_, err = m.Command()
	assert.Error(t, err)
}
