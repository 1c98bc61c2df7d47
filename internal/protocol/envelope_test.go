package protocol_test

import (
	"encoding/json"
	"testing"

	"essayons/internal/protocol"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeDecode(t *testing.T) {
	var env protocol.Envelope
	require.NoError(t, json.Unmarshal([]byte(`{"type":"start","payload":{"opponents":2}}`), &env))
	assert.Equal(t, protocol.MsgStart, env.Type)

	var msg protocol.StartMsg
	require.NoError(t, env.Decode(&msg))
	require.NotNil(t, msg.Opponents)
	assert.Equal(t, 2, *msg.Opponents)
	assert.Empty(t, msg.PlayerName)
}

func TestEnvelopeDecodeEmptyPayload(t *testing.T) {
	env := protocol.Envelope{Type: protocol.MsgRoll}
	msg := protocol.ConfigureMsg{Opponents: 1}
	require.NoError(t, env.Decode(&msg))
	assert.Equal(t, 1, msg.Opponents)
}

func TestEnvelopeDecodeBadPayload(t *testing.T) {
	env := protocol.Envelope{Type: protocol.MsgConfigure, Payload: json.RawMessage(`{"opponents":"many"}`)}
	var msg protocol.ConfigureMsg
	assert.Error(t, env.Decode(&msg))
}

func TestMustEnvelope(t *testing.T) {
	env := protocol.MustEnvelope(protocol.MsgError, protocol.ErrorMsg{Message: "nope"})
	assert.JSONEq(t, `{"message":"nope"}`, string(env.Payload))
	assert.Panics(t, func() { protocol.MustEnvelope(protocol.MsgEvent, make(chan int)) })
}
