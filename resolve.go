package cogbot

import "fmt"

// Resolve computes the effective state of category for a channel in a guild.
// An explicit channel value wins over an explicit guild value, which wins
// over the default. channels and guilds may be the same table.
//
// ErrMissingDefault is returned when no default exists for category; callers
// should treat it as a failed capability check.
func Resolve(channelID, guildID int64, category string, channels, guilds Table, defaults Defaults) (State, error) {
	if s := lookup(channels, channelID, category); s != Unset {
		return s, nil
	}
	if s := lookup(guilds, guildID, category); s != Unset {
		return s, nil
	}
	if s, ok := defaults[category]; ok && s != Unset {
		return s, nil
	}
	return Unset, fmt.Errorf("%w: %q", ErrMissingDefault, category)
}

func lookup(t Table, scopeID int64, category string) State {
	scope, ok := t[scopeID]
	if !ok {
		return Unset
	}
	return scope[category]
}
