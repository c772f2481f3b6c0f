package cogbot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDefaults(t *testing.T) {
	t.Run("complete", func(t *testing.T) {
		err := ValidateDefaults([]string{"music", "search"}, Defaults{"music": Off, "search": On})
		assert.NoError(t, err)
	})

	t.Run("missing default", func(t *testing.T) {
		err := ValidateDefaults([]string{"music", "search", "games"}, Defaults{"search": On})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMissingDefault))
		assert.Contains(t, err.Error(), "games, music")
	})

	t.Run("unset default", func(t *testing.T) {
		err := ValidateDefaults([]string{"music"}, Defaults{"music": Unset})
		assert.True(t, errors.Is(err, ErrInvalidState))
	})

	t.Run("no categories", func(t *testing.T) {
		assert.ErrorIs(t, ValidateDefaults(nil, Defaults{}), ErrNoCategories)
	})
}

func TestParseWriteArgs(t *testing.T) {
	m := newTestManager(t)

	category, mode, err := m.ParseWriteArgs([]string{"Search", "ON"})
	require.NoError(t, err)
	assert.Equal(t, "search", category)
	assert.Equal(t, ModeOn, mode)

	_, mode, err = m.ParseWriteArgs([]string{"music", "reset"})
	require.NoError(t, err)
	assert.Equal(t, ModeReset, mode)

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"no args", nil, ErrArgCount},
		{"one arg", []string{"search"}, ErrArgCount},
		{"three args", []string{"search", "on", "now"}, ErrArgCount},
		{"bad category", []string{"memes", "on"}, ErrInvalidCategory},
		{"bad mode", []string{"search", "toggle"}, ErrInvalidMode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := m.ParseWriteArgs(tt.args)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "expected %v, got %v", tt.want, err)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, m.Categories(), ve.Categories)
			assert.Equal(t, Modes, ve.Modes)
		})
	}

	assert.Empty(t, m.Snapshot(), "validation must not mutate the table")
}
