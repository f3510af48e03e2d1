package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/seqflow/internal/runtime"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SEQFLOW_"

// Defaults.
const (
	DefaultFile         = "seqflow.yaml"
	DefaultEnvFile      = ".env"
	DefaultCanvasWidth  = 1200.0
	DefaultCanvasHeight = 800.0
	DefaultPort         = 8080
	DefaultLockTTL      = 30 * time.Second
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreFile   = "file"
)

// Config is the resolved runtime configuration.
type Config struct {
	Speed  float64 `yaml:"speed"`
	Canvas Canvas  `yaml:"canvas"`
	Log    Log     `yaml:"log"`
	HTTP   HTTP    `yaml:"http"`
	Redis  Redis   `yaml:"redis"`
	Store  Store   `yaml:"store"`

	// Library is a directory of diagram documents served read-only.
	Library string `yaml:"library"`
}

type Canvas struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type HTTP struct {
	Port int `yaml:"port"`
}

type Redis struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
	LockTTL  time.Duration `yaml:"lock_ttl"`
}

type Store struct {
	Backend string `yaml:"backend"`
	Dir     string `yaml:"dir"`
	Format  string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Speed:  runtime.DefaultSpeed,
		Canvas: Canvas{Width: DefaultCanvasWidth, Height: DefaultCanvasHeight},
		Log:    Log{Level: "info", Format: "text"},
		HTTP:   HTTP{Port: DefaultPort},
		Redis:  Redis{Addr: "localhost:6379", Prefix: "seqflow:diagram:", LockTTL: DefaultLockTTL},
		Store:  Store{Backend: StoreMemory, Format: "json"},
	}
}

// Options selects the sources Load reads.
type Options struct {
	// File is the YAML file. Empty means DefaultFile; a missing file is skipped.
	File string
	// EnvFile is the dotenv file. Empty means DefaultEnvFile; a missing file is skipped.
	EnvFile string
	// Lookup reads environment variables. Nil means os.LookupEnv.
	Lookup func(string) (string, bool)
	// Logger receives a warning for every clamped or defaulted value.
	Logger *slog.Logger
}

// Load resolves the configuration from defaults, the YAML file, the dotenv
// file and SEQFLOW_* variables, in increasing precedence.
// Invalid values are clamped or defaulted; only unreadable files fail.
func Load(opts Options) (Config, error) {
	cfg := Default()

	file := opts.File
	explicit := file != ""
	if !explicit {
		file = DefaultFile
	}
	data, err := os.ReadFile(file)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", file, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("failed to read config %s: %w", file, err)
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	dotenv, err := godotenv.Read(envFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("failed to read env file %s: %w", envFile, err)
	}

	lookup := opts.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	env := func(key string) (string, bool) {
		if v, ok := lookup(EnvPrefix + key); ok {
			return v, true
		}
		v, ok := dotenv[EnvPrefix+key]
		return v, ok
	}

	var warnings []string
	warn := func(key, raw string) {
		warnings = append(warnings, fmt.Sprintf("%s%s=%q", EnvPrefix, key, raw))
	}
	applyEnv(&cfg, env, warn)
	warnings = append(warnings, cfg.Normalize()...)

	if opts.Logger != nil {
		for _, w := range warnings {
			opts.Logger.Warn("config value ignored", "value", w)
		}
	}
	return cfg, nil
}

func applyEnv(cfg *Config, env func(string) (string, bool), warn func(key, raw string)) {
	str := func(key string, dst *string) {
		if v, ok := env(key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *float64) {
		if v, ok := env(key); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				warn(key, v)
				return
			}
			*dst = f
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := env(key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				warn(key, v)
				return
			}
			*dst = n
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := env(key); ok {
			d, err := time.ParseDuration(strings.TrimSpace(v))
			if err != nil {
				warn(key, v)
				return
			}
			*dst = d
		}
	}

	num("SPEED", &cfg.Speed)
	num("CANVAS_WIDTH", &cfg.Canvas.Width)
	num("CANVAS_HEIGHT", &cfg.Canvas.Height)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)
	integer("HTTP_PORT", &cfg.HTTP.Port)
	str("REDIS_ADDR", &cfg.Redis.Addr)
	str("REDIS_PASSWORD", &cfg.Redis.Password)
	integer("REDIS_DB", &cfg.Redis.DB)
	str("REDIS_PREFIX", &cfg.Redis.Prefix)
	duration("REDIS_TTL", &cfg.Redis.TTL)
	duration("REDIS_LOCK_TTL", &cfg.Redis.LockTTL)
	str("STORE", &cfg.Store.Backend)
	str("STORE_DIR", &cfg.Store.Dir)
	str("STORE_FORMAT", &cfg.Store.Format)
	str("LIBRARY", &cfg.Library)
}

// Normalize clamps or defaults invalid values and reports what it changed.
func (c *Config) Normalize() []string {
	var changed []string
	note := func(format string, args ...any) {
		changed = append(changed, fmt.Sprintf(format, args...))
	}

	if s := runtime.ClampSpeed(c.Speed); s != c.Speed {
		note("speed %v clamped to %v", c.Speed, s)
		c.Speed = s
	}
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		note("canvas %vx%v replaced by default", c.Canvas.Width, c.Canvas.Height)
		c.Canvas = Canvas{Width: DefaultCanvasWidth, Height: DefaultCanvasHeight}
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		note("http port %d replaced by default", c.HTTP.Port)
		c.HTTP.Port = DefaultPort
	}
	if c.Redis.DB < 0 {
		note("redis db %d replaced by 0", c.Redis.DB)
		c.Redis.DB = 0
	}
	if c.Redis.TTL < 0 {
		note("redis ttl %v replaced by 0", c.Redis.TTL)
		c.Redis.TTL = 0
	}
	if c.Redis.LockTTL <= 0 {
		c.Redis.LockTTL = DefaultLockTTL
	}

	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	switch c.Store.Backend {
	case StoreMemory, StoreRedis, StoreFile:
	default:
		note("store backend %q replaced by %s", c.Store.Backend, StoreMemory)
		c.Store.Backend = StoreMemory
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		note("log format %q replaced by text", c.Log.Format)
		c.Log.Format = "text"
	}
	return changed
}

// Addr is the HTTP listen address.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTP.Port)
}
