// Package cogbot defines the core types used by the settings store.
package cogbot

import (
	"fmt"
	"strings"
)

// State is the tri-state value of a category toggle at one scope.
// The zero value is Unset, which is never written to a Table.
type State int8

const (
	// Unset means no explicit value; resolution falls through to the next scope.
	Unset State = iota
	// On enables the category.
	On
	// Off disables the category.
	Off
)

func (s State) String() string {
	switch s {
	case On:
		return "on"
	case Off:
		return "off"
	default:
		return "unset"
	}
}

// Enabled reports whether s is On.
func (s State) Enabled() bool {
	return s == On
}

// MarshalText encodes the state as "on", "off" or "unset".
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a persisted state. Unlike ParseState it accepts "unset".
func (s *State) UnmarshalText(text []byte) error {
	if strings.EqualFold(string(text), "unset") {
		*s = Unset
		return nil
	}
	v, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseState parses "on"/"off" and the common boolean spellings.
func ParseState(v string) (State, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "1", "true", "yes", "enabled":
		return On, nil
	case "off", "0", "false", "no", "disabled":
		return Off, nil
	default:
		return Unset, fmt.Errorf("%w: %q", ErrInvalidState, v)
	}
}

// StateOf converts a boolean to On or Off.
func StateOf(enabled bool) State {
	if enabled {
		return On
	}
	return Off
}

// Mode is the operation requested by a settings write.
type Mode string

const (
	ModeOn    Mode = "on"
	ModeOff   Mode = "off"
	ModeReset Mode = "reset"
)

// Modes lists the accepted write modes in display order.
var Modes = []Mode{ModeOn, ModeOff, ModeReset}

// Table maps a scope id (channel or guild) to its explicitly set categories.
type Table map[int64]map[string]State

// Defaults maps every configured category to its default state.
type Defaults map[string]State

// WriteResult describes the outcome of an accepted settings write.
type WriteResult int

const (
	// Enabled means the category was set On for the scope.
	Enabled WriteResult = iota + 1
	// Disabled means the category was set Off for the scope.
	Disabled
	// Cleared means an explicit value was removed.
	Cleared
	// NothingToReset means a reset found no explicit value. The table is unchanged.
	NothingToReset
)

func (r WriteResult) String() string {
	switch r {
	case Enabled:
		return "enabled"
	case Disabled:
		return "disabled"
	case Cleared:
		return "cleared"
	case NothingToReset:
		return "nothing to reset"
	default:
		return "unknown"
	}
}

// CategoryView is the per-category breakdown shown for one channel in one guild.
type CategoryView struct {
	Category  string `json:"category"`
	Guild     State  `json:"guild"`
	Channel   State  `json:"channel"`
	Effective State  `json:"effective"`
}

// Config holds the internal configuration for a Manager instance.
// It is populated by applying functional Options when a Manager is created
// with New.
type Config struct {
	// storage persists the settings table. Optional; without it Load and Save are no-ops.
	storage Storage
	// logger is the logging interface used by the Manager.
	logger Logger
	// categories is the configured category set. When empty the keys of defaults are used.
	categories []string
	// defaults is the read-only defaults table.
	defaults Defaults
	// cacheName is the name of the cache the settings table is persisted under.
	cacheName string
}

// Option configures a Manager.
type Option func(*Config)

// WithStorage sets the backend the settings table is loaded from and saved to.
func WithStorage(s Storage) Option {
	return func(c *Config) {
		c.storage = s
	}
}

// WithLogger sets the Logger used by the Manager.
// If not set, NewDefaultLogger is used.
func WithLogger(l Logger) Option {
	return func(c *Config) {
		c.logger = l
	}
}

// WithDefaults sets the defaults table. Every configured category must have an entry.
func WithDefaults(d Defaults) Option {
	return func(c *Config) {
		c.defaults = make(Defaults, len(d))
		for k, v := range d {
			c.defaults[strings.ToLower(k)] = v
		}
	}
}

// WithCategories sets the category list explicitly, preserving its order for display.
func WithCategories(categories ...string) Option {
	return func(c *Config) {
		c.categories = make([]string, 0, len(categories))
		for _, cat := range categories {
			c.categories = append(c.categories, strings.ToLower(cat))
		}
	}
}

// WithCacheName overrides the cache name the settings table is stored under.
func WithCacheName(name string) Option {
	return func(c *Config) {
		c.cacheName = name
	}
}
