// Package config loads the process configuration from a config file, a .env
// file and COGBOT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/CreativeUnicorns/cogbot"
)

const (
	EnvPrefix                 = "COGBOT"
	DefaultPrefix             = "!"
	DefaultStorageType        = "file"
	DefaultStorageDir         = "caches"
	DefaultCacheType          = "memory"
	DefaultCheckpointInterval = 5 * time.Minute
	DefaultStatsCooldown      = 60 * time.Second
	DefaultLogLevel           = slog.LevelInfo
	DefaultLogFormat          = "text"
	DefaultSearchSite         = "en.wikipedia.org"
	DefaultIndicatorOn        = "✅"
	DefaultIndicatorOff       = "❌"
	DefaultIndicatorUnset     = "➖"
	DefaultRedisPrefix        = "cogbot:"
)

// Storage backends accepted in storage.type.
const (
	StorageFile     = "file"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
	StorageMemory   = "memory"
)

// Cache backends accepted in cache.type.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

var (
	// ErrTokenNotFound is returned when no bot token is configured or the token file is missing or empty.
	ErrTokenNotFound = errors.New("discord token not found")
	// ErrInvalidConfig is wrapped by every Validate failure.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config is the full process configuration.
type Config struct {
	General            GeneralConfig  `mapstructure:"general" yaml:"general"`
	Discord            DiscordConfig  `mapstructure:"discord" yaml:"discord"`
	Search             SearchConfig   `mapstructure:"search" yaml:"search"`
	Storage            StorageConfig  `mapstructure:"storage" yaml:"storage"`
	Cache              CacheConfig    `mapstructure:"cache" yaml:"cache"`
	API                APIConfig      `mapstructure:"api" yaml:"api"`
	CheckpointInterval time.Duration  `mapstructure:"checkpoint_interval" yaml:"checkpoint_interval"`
	StatsCooldown      time.Duration  `mapstructure:"stats_cooldown" yaml:"stats_cooldown"`
	LogLevel           *slog.LevelVar `mapstructure:"log_level" yaml:"log_level"`
	LogFormat          string         `mapstructure:"log_format" yaml:"log_format"`
}

type GeneralConfig struct {
	Prefix      []string `mapstructure:"prefix" yaml:"prefix"`
	GithubRepo  string   `mapstructure:"github_repo" yaml:"github_repo"`
	DeveloperID string   `mapstructure:"developer_id" yaml:"developer_id"`
}

type DiscordConfig struct {
	Token      string         `mapstructure:"token" yaml:"-"`
	TokenFile  string         `mapstructure:"token_file" yaml:"token_file"`
	Settings   SettingsConfig `mapstructure:"settings" yaml:"settings"`
	Indicators Indicators     `mapstructure:"indicators" yaml:"indicators"`
}

// SettingsConfig declares the toggleable categories and their defaults.
type SettingsConfig struct {
	Categories []string                `mapstructure:"categories" yaml:"categories"`
	Defaults   map[string]cogbot.State `mapstructure:"defaults" yaml:"defaults"`
	Help       string                  `mapstructure:"help" yaml:"help"`
}

// Indicators are the symbols the settings view prints for each state.
type Indicators struct {
	On    string `mapstructure:"on" yaml:"on"`
	Off   string `mapstructure:"off" yaml:"off"`
	Unset string `mapstructure:"unset" yaml:"unset"`
}

// For returns the indicator for s.
func (i Indicators) For(s cogbot.State) string {
	switch s {
	case cogbot.On:
		return i.On
	case cogbot.Off:
		return i.Off
	default:
		return i.Unset
	}
}

type SearchConfig struct {
	Site string `mapstructure:"site" yaml:"site"`
}

type StorageConfig struct {
	Type      string            `mapstructure:"type" yaml:"type"`
	Dir       string            `mapstructure:"dir" yaml:"dir"`
	Locations map[string]string `mapstructure:"locations" yaml:"locations"`
	DSN       string            `mapstructure:"dsn" yaml:"-"`
	Redis     RedisConfig       `mapstructure:"redis" yaml:"redis"`
	// Encrypt wraps the backend in cogbot.EncryptedStorage keyed from COGBOT_ENCRYPTION_KEY.
	Encrypt bool `mapstructure:"encrypt" yaml:"encrypt"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"-"`
	DB       int    `mapstructure:"db" yaml:"db"`
	Prefix   string `mapstructure:"prefix" yaml:"prefix"`
}

type CacheConfig struct {
	Type  string      `mapstructure:"type" yaml:"type"`
	Redis RedisConfig `mapstructure:"redis" yaml:"redis"`
}

// APIConfig configures the admin HTTP API. An empty Listen disables it.
type APIConfig struct {
	Listen string `mapstructure:"listen" yaml:"listen"`
}

// DefaultConfig returns a Config populated with defaults.
func DefaultConfig() *Config {
	level := &slog.LevelVar{}
	level.Set(DefaultLogLevel)
	return &Config{
		General: GeneralConfig{Prefix: []string{DefaultPrefix}},
		Discord: DiscordConfig{
			Settings: SettingsConfig{Defaults: map[string]cogbot.State{}},
			Indicators: Indicators{
				On:    DefaultIndicatorOn,
				Off:   DefaultIndicatorOff,
				Unset: DefaultIndicatorUnset,
			},
		},
		Search:             SearchConfig{Site: DefaultSearchSite},
		Storage:            StorageConfig{Type: DefaultStorageType, Dir: DefaultStorageDir},
		Cache:              CacheConfig{Type: DefaultCacheType},
		CheckpointInterval: DefaultCheckpointInterval,
		StatsCooldown:      DefaultStatsCooldown,
		LogLevel:           level,
		LogFormat:          DefaultLogFormat,
	}
}

// Categories returns the configured category list followed by any category
// that only appears in the defaults table, in sorted order.
func (c *Config) Categories() []string {
	out := make([]string, 0, len(c.Discord.Settings.Defaults))
	for _, cat := range c.Discord.Settings.Categories {
		cat = strings.ToLower(strings.TrimSpace(cat))
		if cat != "" && !slices.Contains(out, cat) {
			out = append(out, cat)
		}
	}
	var extra []string
	for cat := range c.Discord.Settings.Defaults {
		if !slices.Contains(out, cat) {
			extra = append(extra, cat)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// Defaults returns the defaults table in the form the Manager expects.
func (c *Config) Defaults() cogbot.Defaults {
	out := make(cogbot.Defaults, len(c.Discord.Settings.Defaults))
	for cat, s := range c.Discord.Settings.Defaults {
		out[strings.ToLower(cat)] = s
	}
	return out
}

// Validate rejects configurations the bot must not start with.
func (c *Config) Validate() error {
	var errs []error

	if len(c.General.Prefix) == 0 {
		errs = append(errs, errors.New("general.prefix must not be empty"))
	}
	if err := cogbot.ValidateDefaults(c.Categories(), c.Defaults()); err != nil {
		errs = append(errs, fmt.Errorf("discord.settings: %w", err))
	}

	switch c.Storage.Type {
	case StorageFile, StorageSQLite, StorageMemory:
	case StoragePostgres:
		if c.Storage.DSN == "" {
			errs = append(errs, errors.New("storage.dsn is required for postgres"))
		}
	case StorageRedis:
		if c.Storage.Redis.Addr == "" {
			errs = append(errs, errors.New("storage.redis.addr is required for redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.type %q is not one of file, sqlite, postgres, redis, memory", c.Storage.Type))
	}

	switch c.Cache.Type {
	case CacheMemory:
	case CacheRedis:
		if c.Cache.Redis.Addr == "" {
			errs = append(errs, errors.New("cache.redis.addr is required for redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache.type %q is not one of memory, redis", c.Cache.Type))
	}

	if c.CheckpointInterval <= 0 {
		errs = append(errs, errors.New("checkpoint_interval must be positive"))
	}
	if c.StatsCooldown < 0 {
		errs = append(errs, errors.New("stats_cooldown must not be negative"))
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		errs = append(errs, fmt.Errorf("log_format %q is not one of json, text", c.LogFormat))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Token returns discord.token, or the first line of discord.token_file.
func (c *Config) Token() (string, error) {
	if tok := strings.TrimSpace(c.Discord.Token); tok != "" {
		return tok, nil
	}
	if c.Discord.TokenFile == "" {
		return "", fmt.Errorf("%w: set discord.token or discord.token_file", ErrTokenNotFound)
	}
	lines, err := LoadToken(c.Discord.TokenFile)
	if err != nil {
		return "", err
	}
	return lines[0], nil
}

// LoadToken reads a token file and returns its non-empty lines, trimmed.
// A missing file or a file without content is ErrTokenNotFound.
func LoadToken(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrTokenNotFound, path, err)
	}

	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrTokenNotFound, path)
	}
	return lines, nil
}
