package cogbot

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_String(t *testing.T) {
	assert.Equal(t, "unset", Unset.String())
	assert.Equal(t, "on", On.String())
	assert.Equal(t, "off", Off.String())
	assert.Equal(t, "unset", State(42).String())
	assert.True(t, On.Enabled())
	assert.False(t, Off.Enabled())
	assert.False(t, Unset.Enabled())
}

func TestParseState(t *testing.T) {
	for _, in := range []string{"on", "ON", " true ", "1", "yes", "enabled"} {
		s, err := ParseState(in)
		require.NoError(t, err, in)
		assert.Equal(t, On, s, in)
	}
	for _, in := range []string{"off", "Off", "false", "0", "no", "disabled"} {
		s, err := ParseState(in)
		require.NoError(t, err, in)
		assert.Equal(t, Off, s, in)
	}
	for _, in := range []string{"", "unset", "maybe"} {
		_, err := ParseState(in)
		assert.True(t, errors.Is(err, ErrInvalidState), in)
	}
}

func TestStateOf(t *testing.T) {
	assert.Equal(t, On, StateOf(true))
	assert.Equal(t, Off, StateOf(false))
}

func TestTable_JSONEncoding(t *testing.T) {
	table := Table{
		1001: {"search": On, "music": Off},
		2002: {},
	}

	data, err := json.Marshal(table)
	require.NoError(t, err)
	assert.JSONEq(t, `{"1001":{"search":"on","music":"off"},"2002":{}}`, string(data))

	var decoded Table
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, table, decoded)
}

func TestState_UnmarshalText(t *testing.T) {
	var s State
	require.NoError(t, s.UnmarshalText([]byte("unset")))
	assert.Equal(t, Unset, s)

	require.NoError(t, s.UnmarshalText([]byte("off")))
	assert.Equal(t, Off, s)

	assert.Error(t, s.UnmarshalText([]byte("sometimes")))
}

func TestWriteResult_String(t *testing.T) {
	assert.Equal(t, "enabled", Enabled.String())
	assert.Equal(t, "disabled", Disabled.String())
	assert.Equal(t, "cleared", Cleared.String())
	assert.Equal(t, "nothing to reset", NothingToReset.String())
	assert.Equal(t, "unknown", WriteResult(0).String())
}
