package cascadesync

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_RoundTripsPayload(t *testing.T) {
	env, err := encode(EventHeartbeatPing, struct{}{})
	require.NoError(t, err)
	assert.Equal(t, EventHeartbeatPing, env.Type)
	assert.JSONEq(t, `{}`, string(env.Payload))
}

func TestEnvelope_UnmarshalsKnownType(t *testing.T) {
	raw := []byte(`{"type":"cascade_sync_start","payload":{"spinId":"abc","playerId":"def","enableBroadcast":true}}`)
	var env Envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, EventCascadeSyncStart, env.Type)

	var payload CascadeSyncStartPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.True(t, payload.EnableBroadcast)
	assert.Equal(t, "abc", payload.SpinID)
}
