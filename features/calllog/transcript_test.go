package calllog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTranscript(t *testing.T) {
	t.Run("Flat String", func(t *testing.T) {
		turns, err := NormalizeTranscript(json.RawMessage(`"Caller asked about pricing."`))
		require.NoError(t, err)
		require.Len(t, turns, 1)
		assert.Equal(t, "agent", turns[0].Role)
		assert.Equal(t, "Caller asked about pricing.", turns[0].Message)
	})

	t.Run("Bare Array Of Turns", func(t *testing.T) {
		raw := json.RawMessage(`[
			{"role": "agent", "message": "Hello, how can I help?", "time_in_call_secs": 0},
			{"role": "user", "message": "I want to cancel.", "time_in_call_secs": 3.5}
		]`)
		turns, err := NormalizeTranscript(raw)
		require.NoError(t, err)
		require.Len(t, turns, 2)
		assert.Equal(t, "agent", turns[0].Role)
		assert.Equal(t, "user", turns[1].Role)
		assert.Equal(t, 3.5, turns[1].OffsetSeconds)
	})

	t.Run("Wrapped Messages", func(t *testing.T) {
		raw := json.RawMessage(`{"messages": [{"role": "user", "message": "Hi there"}]}`)
		turns, err := NormalizeTranscript(raw)
		require.NoError(t, err)
		require.Len(t, turns, 1)
		assert.Equal(t, "Hi there", turns[0].Message)
	})

	t.Run("Role Defaults From Agent Flag", func(t *testing.T) {
		raw := json.RawMessage(`[
			{"message": "Welcome to support.", "is_agent": true},
			{"message": "Thanks.", "is_agent": false},
			{"message": "No flag at all."}
		]`)
		turns, err := NormalizeTranscript(raw)
		require.NoError(t, err)
		require.Len(t, turns, 3)
		assert.Equal(t, "agent", turns[0].Role)
		assert.Equal(t, "user", turns[1].Role)
		assert.Equal(t, "user", turns[2].Role)
	})

	t.Run("Text Field Fallback", func(t *testing.T) {
		raw := json.RawMessage(`[{"role": "user", "text": "said via text field"}]`)
		turns, err := NormalizeTranscript(raw)
		require.NoError(t, err)
		require.Len(t, turns, 1)
		assert.Equal(t, "said via text field", turns[0].Message)
	})

	t.Run("Empty Turns Dropped", func(t *testing.T) {
		raw := json.RawMessage(`[{"role": "agent", "message": ""}, {"role": "user", "message": "real"}]`)
		turns, err := NormalizeTranscript(raw)
		require.NoError(t, err)
		require.Len(t, turns, 1)
		assert.Equal(t, "real", turns[0].Message)
	})

	t.Run("Null And Empty", func(t *testing.T) {
		turns, err := NormalizeTranscript(json.RawMessage(`null`))
		require.NoError(t, err)
		assert.Empty(t, turns)

		turns, err = NormalizeTranscript(nil)
		require.NoError(t, err)
		assert.Empty(t, turns)
	})

	t.Run("Malformed", func(t *testing.T) {
		_, err := NormalizeTranscript(json.RawMessage(`[{"role": broken`))
		assert.Error(t, err)
	})
}
