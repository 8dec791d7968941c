package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeKeepsEnvelope(t *testing.T) {
	at := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	evt := New(SessionApproved, map[string]interface{}{
		"recipient_id": uint(7),
		"message":      "approved",
	}, at)

	raw, err := Encode(evt)
	require.NoError(t, err)

	decoded, err := Decode(raw)
	require.NoError(t, err)

	assert.Equal(t, SessionApproved, decoded.EventType())
	assert.True(t, at.Equal(decoded.Timestamp()))
	id, ok := decoded.Uint("recipient_id")
	assert.True(t, ok)
	assert.Equal(t, uint(7), id)
	assert.Equal(t, "approved", decoded.String("message"))
}

func TestDecodeRejectsMissingType(t *testing.T) {
	_, err := Decode([]byte(`{"data":{}}`))
	assert.Error(t, err)

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}

func TestUint(t *testing.T) {
	e := New("X", map[string]interface{}{
		"float":    float64(42),
		"fraction": 1.5,
		"negative": -3,
		"text":     "9",
	}, time.Now())

	v, ok := e.Uint("float")
	assert.True(t, ok)
	assert.Equal(t, uint(42), v)

	for _, key := range []string{"fraction", "negative", "text", "missing"} {
		_, ok := e.Uint(key)
		assert.False(t, ok, key)
	}
}
