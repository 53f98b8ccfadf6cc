// Package config provides Viper-based configuration loading for the room host.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/viper"

	"github.com/cory-johannsen/haxroom/internal/native"
)

// RoomConfig holds the settings passed to the native host on creation.
type RoomConfig struct {
	Name       string              `mapstructure:"name"`
	PlayerName string              `mapstructure:"player_name"`
	Password   string              `mapstructure:"password"`
	MaxPlayers int                 `mapstructure:"max_players"`
	Public     bool                `mapstructure:"public"`
	NoPlayer   bool                `mapstructure:"no_player"`
	Token      string              `mapstructure:"token"`
	Geo        *native.GeoOverride `mapstructure:"geo"`
}

// Native converts the section to the host's creation config.
func (r RoomConfig) Native() native.RoomConfig {
	return native.RoomConfig{
		Name:       r.Name,
		PlayerName: r.PlayerName,
		Password:   r.Password,
		MaxPlayers: r.MaxPlayers,
		Public:     r.Public,
		Geo:        r.Geo,
		Token:      r.Token,
		NoPlayer:   r.NoPlayer,
	}
}

// CommandsConfig holds chat command settings.
type CommandsConfig struct {
	// Prefix is the single character that starts a command.
	Prefix string `mapstructure:"prefix"`
	// Cooldown is the minimum time between two commands from one player. Zero disables it.
	Cooldown            time.Duration `mapstructure:"cooldown"`
	NoPermissionMessage string        `mapstructure:"no_permission_message"`
	CooldownMessage     string        `mapstructure:"cooldown_message"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// History backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// HistoryConfig selects where connection history is kept.
type HistoryConfig struct {
	Backend string `mapstructure:"backend"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// RedisConfig holds Redis connection settings for the redis history backend.
type RedisConfig struct {
	// URL is a redis:// connection URL.
	URL       string `mapstructure:"url"`
	KeyPrefix string `mapstructure:"key_prefix"`
	PoolSize  int    `mapstructure:"pool_size"`
}

// GeoConfig holds player geolocation settings.
type GeoConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Endpoint is a URL template with one %s for the IP.
	Endpoint      string        `mapstructure:"endpoint"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RatePerMinute int           `mapstructure:"rate_per_minute"`
}

// BridgeConfig holds the native host websocket listener settings.
type BridgeConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// CallTimeout bounds each call into the host page.
	CallTimeout time.Duration `mapstructure:"call_timeout"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (b BridgeConfig) Addr() string {
	return fmt.Sprintf("%s:%d", b.Host, b.Port)
}

// AdminConfig holds the HTTP admin API settings.
type AdminConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

// Addr returns the "host:port" listen address.
func (a AdminConfig) Addr() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// Config is the top-level application configuration.
type Config struct {
	Room     RoomConfig     `mapstructure:"room"`
	Commands CommandsConfig `mapstructure:"commands"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	History  HistoryConfig  `mapstructure:"history"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Geo      GeoConfig      `mapstructure:"geo"`
	Bridge   BridgeConfig   `mapstructure:"bridge"`
	Admin    AdminConfig    `mapstructure:"admin"`

	// RolesFile is an optional YAML file of role definitions.
	RolesFile string `mapstructure:"roles_file"`
	// ModulesDir is an optional directory of Lua modules.
	ModulesDir string `mapstructure:"modules_dir"`
	// ClaimPasswordHash is the bcrypt hash checked by the claim command. Empty disables it.
	ClaimPasswordHash string `mapstructure:"claim_password_hash"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	check := func(err error) {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	check(validateRoom(c.Room))
	check(validateCommands(c.Commands))
	check(validateLogging(c.Logging))
	check(validateHistory(c.History))
	if c.History.Backend == BackendPostgres {
		check(validateDatabase(c.Database))
	}
	if c.History.Backend == BackendRedis {
		check(validateRedis(c.Redis))
	}
	check(validateGeo(c.Geo))
	check(validatePort("bridge.port", c.Bridge.Port))
	if c.Bridge.CallTimeout <= 0 {
		errs = append(errs, "bridge.call_timeout must be positive")
	}
	if c.Admin.Enabled {
		check(validatePort("admin.port", c.Admin.Port))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validatePort(key string, port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s must be 1-65535, got %d", key, port)
	}
	return nil
}

func validateRoom(r RoomConfig) error {
	var errs []string
	if r.Name == "" {
		errs = append(errs, "room.name must not be empty")
	}
	if r.MaxPlayers < 1 || r.MaxPlayers > 30 {
		errs = append(errs, fmt.Sprintf("room.max_players must be 1-30, got %d", r.MaxPlayers))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateCommands(c CommandsConfig) error {
	var errs []string
	if utf8.RuneCountInString(c.Prefix) != 1 {
		errs = append(errs, fmt.Sprintf("commands.prefix must be a single character, got %q", c.Prefix))
	}
	if c.Cooldown < 0 {
		errs = append(errs, "commands.cooldown must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateHistory(h HistoryConfig) error {
	switch h.Backend {
	case BackendMemory, BackendPostgres, BackendRedis:
		return nil
	}
	return fmt.Errorf("history.backend must be one of [memory, postgres, redis], got %q", h.Backend)
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateRedis(r RedisConfig) error {
	var errs []string
	if !strings.HasPrefix(r.URL, "redis://") && !strings.HasPrefix(r.URL, "rediss://") {
		errs = append(errs, fmt.Sprintf("redis.url must start with redis:// or rediss://, got %q", r.URL))
	}
	if r.PoolSize < 0 {
		errs = append(errs, fmt.Sprintf("redis.pool_size must be >= 0, got %d", r.PoolSize))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateGeo(g GeoConfig) error {
	if !g.Enabled {
		return nil
	}
	var errs []string
	if strings.Count(g.Endpoint, "%s") != 1 {
		errs = append(errs, fmt.Sprintf("geo.endpoint must contain exactly one %%s, got %q", g.Endpoint))
	}
	if g.Timeout <= 0 {
		errs = append(errs, "geo.timeout must be positive")
	}
	if g.RatePerMinute < 0 {
		errs = append(errs, fmt.Sprintf("geo.rate_per_minute must be >= 0, got %d", g.RatePerMinute))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with HAXROOM_ prefix
	v.SetEnvPrefix("HAXROOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("room.name", "haxroom")
	v.SetDefault("room.player_name", "Host")
	v.SetDefault("room.max_players", 12)
	v.SetDefault("room.public", false)
	v.SetDefault("room.no_player", true)

	v.SetDefault("commands.prefix", "!")
	v.SetDefault("commands.cooldown", "0s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("history.backend", BackendMemory)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "haxroom")
	v.SetDefault("database.password", "haxroom")
	v.SetDefault("database.name", "haxroom")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.key_prefix", "haxroom:")
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("geo.enabled", false)
	v.SetDefault("geo.endpoint", "https://ipapi.co/%s/json/")
	v.SetDefault("geo.timeout", "10s")
	v.SetDefault("geo.rate_per_minute", 45)

	v.SetDefault("bridge.host", "127.0.0.1")
	v.SetDefault("bridge.port", 8089)
	v.SetDefault("bridge.call_timeout", "5s")

	v.SetDefault("admin.enabled", false)
	v.SetDefault("admin.host", "127.0.0.1")
	v.SetDefault("admin.port", 8090)
}
