// Package config loads signsync settings from YAML with environment overrides.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/ayusman/signsync/internal/locale"
)

// Environment variables consulted by Load.
const (
	EnvConfig    = "SIGNSYNC_CONFIG"
	EnvAddr      = "SIGNSYNC_ADDR"
	EnvDBPath    = "SIGNSYNC_DB_PATH"
	EnvModelPath = "SIGNSYNC_MODEL_PATH"
	EnvLogLevel  = "SIGNSYNC_LOG_LEVEL"
)

type Config struct {
	Server  Server  `yaml:"server"`
	DB      DB      `yaml:"db"`
	Model   Model   `yaml:"model"`
	Session Session `yaml:"session"`
	Local   Local   `yaml:"local"`
	Log     Log     `yaml:"log"`
}

type Server struct {
	// Listen address
	Addr string `yaml:"addr" example:":5000" validate:"required"`
	// Directory served at /, empty disables static files
	StaticDir string `yaml:"static_dir" example:"./web"`
}

type DB struct {
	// SQLite database file
	Path string `yaml:"path" example:"~/.local/share/signsync/signsync.db" validate:"required"`
}

type Model struct {
	// Secondary classifier weights, empty disables it
	Path string `yaml:"path" example:"./model.json"`
	// Minimum secondary confidence, exclusive
	Threshold float64 `yaml:"threshold" example:"0.78" validate:"gt=0,lte=1"`
	// Upper bound on one secondary inference
	Timeout time.Duration `yaml:"timeout" example:"50ms" validate:"gt=0"`
}

type Session struct {
	// Sessions idle longer than this are dropped
	IdleTTL time.Duration `yaml:"idle_ttl" example:"30m" validate:"gt=0"`
	// Cron spec for the idle sweep
	Sweep string `yaml:"sweep" example:"@every 1m" validate:"required"`
}

type Local struct {
	CameraID int    `yaml:"camera_id" example:"0" validate:"gte=0"`
	FPS      int    `yaml:"fps" example:"15" validate:"gt=0,lte=120"`
	Locale   string `yaml:"locale" example:"en" validate:"locale"`
}

type Log struct {
	// debug, info, warn or error
	Level string `yaml:"level" example:"info" validate:"oneof=debug info warn error"`
	// Optional JSON log file written alongside the console
	File string `yaml:"file" example:"/var/log/signsync.json"`
}

// Default returns the configuration used when no file sets a value.
func Default() Config {
	return Config{
		Server: Server{Addr: ":5000"},
		DB:     DB{Path: filepath.Join(dataDir(), "signsync.db")},
		Model: Model{
			Threshold: 0.78,
			Timeout:   50 * time.Millisecond,
		},
		Session: Session{
			IdleTTL: 30 * time.Minute,
			Sweep:   "@every 1m",
		},
		Local: Local{FPS: 15, Locale: "en"},
		Log:   Log{Level: "info"},
	}
}

// DefaultPath returns the config file path used when none is given.
func DefaultPath() string {
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "signsync", "config.yaml")
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path uses DefaultPath. A missing file is
// not an error.
func Load(path string) (*Config, error) {
	result := Default()

	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, oops.Errorf("failed to read config file: %w", err)
	default:
		if err = yaml.Unmarshal(data, &result); err != nil {
			return nil, oops.Errorf("failed to parse YAML config: %w", err)
		}
	}

	if err := applyEnv(&result); err != nil {
		return nil, err
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.RegisterValidation("locale", validLocale); err != nil {
		return nil, oops.Errorf("failed to register locale validator: %w", err)
	}
	if err := validate.Struct(result); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}

// validLocale accepts the tags of locale.Supported.
func validLocale(fl validator.FieldLevel) bool {
	tag := fl.Field().String()
	for _, l := range locale.Supported() {
		if string(l) == tag {
			return true
		}
	}
	return false
}

func applyEnv(c *Config) error {
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		c.DB.Path = v
	}
	if v := os.Getenv(EnvModelPath); v != "" {
		c.Model.Path = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("PORT"); v != "" && os.Getenv(EnvAddr) == "" {
		if _, err := strconv.Atoi(v); err != nil {
			return oops.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Addr = ":" + v
	}
	return nil
}

func dataDir() string {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return filepath.Join(d, "signsync")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "signsync")
}
