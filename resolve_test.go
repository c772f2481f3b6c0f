package cogbot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testGuild   int64 = 100
	testChannel int64 = 200
	otherChan   int64 = 201
)

func TestResolve_Precedence(t *testing.T) {
	defaults := Defaults{"search": On, "music": Off}

	tests := []struct {
		name    string
		table   Table
		channel int64
		cat     string
		want    State
	}{
		{"default when nothing set", Table{}, testChannel, "search", On},
		{"default off", Table{}, testChannel, "music", Off},
		{"guild overrides default", Table{testGuild: {"search": Off}}, testChannel, "search", Off},
		{"channel overrides guild", Table{testGuild: {"search": On}, testChannel: {"search": Off}}, testChannel, "search", Off},
		{"channel overrides default", Table{testChannel: {"music": On}}, testChannel, "music", On},
		{"other channel falls back to guild", Table{testGuild: {"music": On}, testChannel: {"music": Off}}, otherChan, "music", On},
		{"empty channel scope falls through", Table{testChannel: {}, testGuild: {"search": Off}}, testChannel, "search", Off},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.channel, testGuild, tt.cat, tt.table, tt.table, defaults)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_SeparateTables(t *testing.T) {
	channels := Table{testChannel: {"search": Off}}
	guilds := Table{testGuild: {"search": On}}

	got, err := Resolve(testChannel, testGuild, "search", channels, guilds, Defaults{"search": On})
	require.NoError(t, err)
	assert.Equal(t, Off, got)

	got, err = Resolve(otherChan, testGuild, "search", channels, guilds, Defaults{"search": Off})
	require.NoError(t, err)
	assert.Equal(t, On, got)
}

func TestResolve_MissingDefault(t *testing.T) {
	_, err := Resolve(testChannel, testGuild, "games", Table{}, Table{}, Defaults{"search": On})
	assert.True(t, errors.Is(err, ErrMissingDefault))

	// An explicit value still resolves without a default.
	got, err := Resolve(testChannel, testGuild, "games", Table{testChannel: {"games": On}}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, On, got)
}
