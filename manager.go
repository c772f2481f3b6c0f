// manager.go
package cogbot

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// DefaultCacheName is the cache the settings table is persisted under.
const DefaultCacheName = "settings"

// Manager owns the settings table and resolves effective category states.
// It is safe for concurrent use.
type Manager struct {
	mu          sync.RWMutex
	config      *Config
	table       Table
	categorySet map[string]struct{}
}

// New creates a Manager with an empty settings table. It returns
// ErrMissingDefault or ErrNoCategories when the configured categories and
// defaults do not line up; such a configuration must not be started.
func New(opts ...Option) (*Manager, error) {
	cfg := &Config{
		defaults:  make(Defaults),
		cacheName: DefaultCacheName,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.logger == nil {
		cfg.logger = NewDefaultLogger()
	}
	if len(cfg.categories) == 0 {
		for cat := range cfg.defaults {
			cfg.categories = append(cfg.categories, cat)
		}
		sort.Strings(cfg.categories)
	}

	if err := ValidateDefaults(cfg.categories, cfg.defaults); err != nil {
		return nil, err
	}

	set := make(map[string]struct{}, len(cfg.categories))
	for _, cat := range cfg.categories {
		set[cat] = struct{}{}
	}

	return &Manager{
		config:      cfg,
		table:       make(Table),
		categorySet: set,
	}, nil
}

// Categories returns the configured categories in display order.
func (m *Manager) Categories() []string {
	return append([]string(nil), m.config.categories...)
}

// Default returns the configured default for category.
func (m *Manager) Default(category string) (State, bool) {
	s, ok := m.config.defaults[category]
	return s, ok
}

// Resolve returns the effective state of category in the given channel and guild.
func (m *Manager) Resolve(channelID, guildID int64, category string) (State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Resolve(channelID, guildID, category, m.table, m.table, m.config.defaults)
}

// Allowed is the capability check used by gated commands. It reports whether
// category is enabled in the channel. An error means the category is not
// configured and the action should be blocked.
func (m *Manager) Allowed(channelID, guildID int64, category string) (bool, error) {
	state, err := m.Resolve(channelID, guildID, category)
	if err != nil {
		return false, err
	}
	return state.Enabled(), nil
}

// Lookup returns the explicit state of category at one scope, or Unset.
func (m *Manager) Lookup(scopeID int64, category string) State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return lookup(m.table, scopeID, category)
}

// Scope returns a copy of the explicit values set for scopeID.
func (m *Manager) Scope(scopeID int64) map[string]State {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]State, len(m.table[scopeID]))
	for cat, s := range m.table[scopeID] {
		out[cat] = s
	}
	return out
}

// Effective returns, for every configured category, the guild value, the
// channel value and the resolved state.
func (m *Manager) Effective(channelID, guildID int64) ([]CategoryView, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	views := make([]CategoryView, 0, len(m.config.categories))
	for _, cat := range m.config.categories {
		eff, err := Resolve(channelID, guildID, cat, m.table, m.table, m.config.defaults)
		if err != nil {
			return nil, err
		}
		views = append(views, CategoryView{
			Category:  cat,
			Guild:     lookup(m.table, guildID, cat),
			Channel:   lookup(m.table, channelID, cat),
			Effective: eff,
		})
	}
	return views, nil
}

// Write applies mode to category at scopeID. The category and mode are
// validated first; a rejected write returns a *ValidationError and leaves
// the table unchanged. Write does not persist.
func (m *Manager) Write(scopeID int64, category string, mode Mode) (WriteResult, error) {
	if !m.isCategory(category) {
		return 0, m.validationError(fmt.Errorf("%w: %q", ErrInvalidCategory, category))
	}
	switch mode {
	case ModeOn, ModeOff, ModeReset:
	default:
		return 0, m.validationError(fmt.Errorf("%w: %q", ErrInvalidMode, mode))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	switch mode {
	case ModeOn, ModeOff:
		scope, ok := m.table[scopeID]
		if !ok {
			scope = make(map[string]State)
			m.table[scopeID] = scope
		}
		if mode == ModeOn {
			scope[category] = On
			m.config.logger.Debug("Category enabled", "scope", scopeID, "category", category)
			return Enabled, nil
		}
		scope[category] = Off
		m.config.logger.Debug("Category disabled", "scope", scopeID, "category", category)
		return Disabled, nil
	default:
		scope, ok := m.table[scopeID]
		if !ok {
			return NothingToReset, nil
		}
		if _, ok := scope[category]; !ok {
			return NothingToReset, nil
		}
		delete(scope, category)
		m.config.logger.Debug("Category reset", "scope", scopeID, "category", category)
		return Cleared, nil
	}
}

// Snapshot returns a deep copy of the settings table.
func (m *Manager) Snapshot() Table {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(Table, len(m.table))
	for id, scope := range m.table {
		c := make(map[string]State, len(scope))
		for cat, s := range scope {
			c[cat] = s
		}
		out[id] = c
	}
	return out
}

// Load replaces the in-memory table with the persisted one. Unset values
// found in the store are dropped. Without a storage backend Load is a no-op.
func (m *Manager) Load(ctx context.Context) {
	if m.config.storage == nil {
		return
	}

	loaded := LoadCache[Table](ctx, m.config.storage, m.config.cacheName, m.config.logger)
	for id, scope := range loaded {
		for cat, s := range scope {
			if s != On && s != Off {
				delete(scope, cat)
			}
		}
		if scope == nil {
			loaded[id] = make(map[string]State)
		}
	}

	m.mu.Lock()
	m.table = loaded
	m.mu.Unlock()
}

// Save persists a snapshot of the table. Without a storage backend Save is a no-op.
func (m *Manager) Save(ctx context.Context) error {
	if m.config.storage == nil {
		return nil
	}
	return SaveCaches(ctx, m.config.storage, map[string]any{
		m.config.cacheName: m.Snapshot(),
	}, m.config.logger)
}

// AutoSave saves the table every interval until ctx is done, then saves once
// more with a fresh context. Failed periodic saves are logged; the error of
// the final save is returned.
func (m *Manager) AutoSave(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := m.Save(ctx); err != nil {
				m.config.logger.Error("Checkpoint failed", "error", err)
			}
		case <-ctx.Done():
			return m.Save(context.WithoutCancel(ctx))
		}
	}
}
