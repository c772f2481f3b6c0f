package config

import (
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/CreativeUnicorns/cogbot"
)

// Options controls where Load looks for configuration.
type Options struct {
	// ConfigFile is an optional YAML, TOML or JSON file.
	ConfigFile string
	// EnvFile is an optional .env file. When empty, ".env" is tried and a
	// missing file is ignored.
	EnvFile string
}

// SetDefaults registers every key with its default so that viper can bind
// the matching COGBOT_* environment variable.
func SetDefaults(v *viper.Viper) {
	def := DefaultConfig()

	v.SetDefault("general.prefix", def.General.Prefix)
	v.SetDefault("general.github_repo", "")
	v.SetDefault("general.developer_id", "")

	v.SetDefault("discord.token", "")
	v.SetDefault("discord.token_file", "")
	v.SetDefault("discord.settings.categories", []string{})
	v.SetDefault("discord.settings.help", "")
	v.SetDefault("discord.indicators.on", def.Discord.Indicators.On)
	v.SetDefault("discord.indicators.off", def.Discord.Indicators.Off)
	v.SetDefault("discord.indicators.unset", def.Discord.Indicators.Unset)

	v.SetDefault("search.site", def.Search.Site)

	v.SetDefault("storage.type", def.Storage.Type)
	v.SetDefault("storage.dir", def.Storage.Dir)
	v.SetDefault("storage.dsn", "")
	v.SetDefault("storage.encrypt", false)
	v.SetDefault("storage.redis.addr", "")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.prefix", DefaultRedisPrefix+"cache:")

	v.SetDefault("cache.type", def.Cache.Type)
	v.SetDefault("cache.redis.addr", "")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.prefix", DefaultRedisPrefix+"cooldown:")

	v.SetDefault("api.listen", "")

	v.SetDefault("checkpoint_interval", def.CheckpointInterval)
	v.SetDefault("stats_cooldown", def.StatsCooldown)
	v.SetDefault("log_level", def.LogLevel.Level().String())
	v.SetDefault("log_format", def.LogFormat)
}

// Load reads the configuration into a fresh Config. It does not validate.
func Load(v *viper.Viper, opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", opts.EnvFile, err)
		}
	} else {
		// A missing default .env file is fine.
		_ = godotenv.Load()
	}

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", opts.ConfigFile, err)
		}
	}

	cfg := DefaultConfig()
	// The decode hooks build the LevelVar; a non-nil pointer would be decoded
	// into field by field instead.
	cfg.LogLevel = nil
	err := v.Unmarshal(
		cfg,
		viper.DecodeHook(
			mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
				LevelToStringHookFunc(),
				StateHookFunc(),
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if cfg.LogLevel == nil {
		cfg.LogLevel = DefaultConfig().LogLevel
	}
	return cfg, nil
}

// YAML renders the configuration with secrets omitted.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

func getLogLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", level)
	}
	return l, nil
}

var levelVarType = reflect.TypeOf(slog.LevelVar{})

// LevelToStringHookFunc decodes a level name into a *slog.LevelVar. It
// matches both the pointer field and its element.
func LevelToStringHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		if t != levelVarType && (t.Kind() != reflect.Ptr || t.Elem() != levelVarType) {
			return data, nil
		}
		lvl, err := getLogLevel(data.(string))
		if err != nil {
			return nil, err
		}
		lvlVar := &slog.LevelVar{}
		lvlVar.Set(lvl)
		return lvlVar, nil
	}
}

var stateType = reflect.TypeOf(cogbot.State(0))

// StateHookFunc decodes "on"/"off" strings, booleans and 1/0 into
// cogbot.State. Config formats that read on/off as booleans land in the
// bool branch.
func StateHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if t != stateType {
			return data, nil
		}
		switch f.Kind() {
		case reflect.String:
			return cogbot.ParseState(data.(string))
		case reflect.Bool:
			return cogbot.StateOf(data.(bool)), nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return stateOfInt(reflect.ValueOf(data).Int(), data)
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return stateOfInt(int64(reflect.ValueOf(data).Uint()), data)
		case reflect.Float32, reflect.Float64:
			fv := reflect.ValueOf(data).Float()
			if fv != float64(int64(fv)) {
				return nil, fmt.Errorf("%w: %v", cogbot.ErrInvalidState, data)
			}
			return stateOfInt(int64(fv), data)
		default:
			return data, nil
		}
	}
}

func stateOfInt(n int64, data any) (cogbot.State, error) {
	switch n {
	case 0:
		return cogbot.Off, nil
	case 1:
		return cogbot.On, nil
	default:
		return cogbot.Unset, fmt.Errorf("%w: %v", cogbot.ErrInvalidState, data)
	}
}
