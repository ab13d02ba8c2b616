package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"nailbook/cmd/internal/booking"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// BookingConfig is the salon's booking policy. Open and Close are "HH:MM" wall-clock
// times in Timezone.
type BookingConfig struct {
	Timezone         string        `yaml:"timezone"`
	WindowDays       int           `yaml:"window_days"`
	CutoffHour       int           `yaml:"cutoff_hour"`
	Open             string        `yaml:"open"`
	Close            string        `yaml:"close"`
	DefaultDuration  int           `yaml:"default_duration"`
	MaxAdvanceMonths int           `yaml:"max_advance_months"`
	Refresh          time.Duration `yaml:"refresh"`
}

type CognitoConfig struct {
	Region     string `yaml:"region"`
	UserPoolID string `yaml:"user_pool_id"`
	ClientID   string `yaml:"client_id"`
}

type AuthConfig struct {
	// Provider is "local" or "cognito".
	Provider  string        `yaml:"provider"`
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
	Cognito   CognitoConfig `yaml:"cognito"`
}

type ClientConfig struct {
	// Backend is "remote" or "local".
	Backend  string `yaml:"backend"`
	BaseURL  string `yaml:"base_url"`
	DataFile string `yaml:"data_file"`
	Token    string `yaml:"token"`
}

type Config struct {
	Listen   string         `yaml:"listen"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Booking  BookingConfig  `yaml:"booking"`
	Auth     AuthConfig     `yaml:"auth"`
	Client   ClientConfig   `yaml:"client"`
}

func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Normalize()
	return cfg
}

// Normalize fills zero values with defaults so a partial file still works.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = ":6060"
	}
	if c.Database.Path == "" {
		c.Database.Path = "nailbook.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	b := &c.Booking
	if b.Timezone == "" {
		b.Timezone = "Local"
	}
	if b.WindowDays <= 0 {
		b.WindowDays = 30
	}
	if b.CutoffHour <= 0 {
		b.CutoffHour = 20
	}
	if b.Open == "" {
		b.Open = "11:00"
	}
	if b.Close == "" {
		b.Close = "18:00"
	}
	if b.DefaultDuration <= 0 {
		b.DefaultDuration = 60
	}
	if b.MaxAdvanceMonths <= 0 {
		b.MaxAdvanceMonths = 6
	}
	if b.Refresh <= 0 {
		b.Refresh = 30 * time.Second
	}

	c.Auth.Provider = strings.ToLower(c.Auth.Provider)
	if c.Auth.Provider == "" {
		c.Auth.Provider = "local"
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}

	c.Client.Backend = strings.ToLower(c.Client.Backend)
	if c.Client.Backend == "" {
		c.Client.Backend = "remote"
	}
	if c.Client.BaseURL == "" {
		c.Client.BaseURL = "http://localhost:6060"
	}
	if c.Client.DataFile == "" {
		c.Client.DataFile = "nailbook-offline.json"
	}
}

// Load reads the YAML file at path, applies environment overrides (a .env file in the
// working directory is honoured) and normalises the result. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	override := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	override(&c.Listen, "NAILBOOK_LISTEN")
	override(&c.Database.Path, "DATABASE_PATH")
	override(&c.Auth.JWTSecret, "JWT_SECRET")
	override(&c.Auth.Provider, "AUTH_PROVIDER")
	override(&c.Auth.Cognito.Region, "COGNITO_REGION")
	override(&c.Auth.Cognito.UserPoolID, "COGNITO_USER_POOL_ID")
	override(&c.Auth.Cognito.ClientID, "COGNITO_CLIENT_ID")
	override(&c.Client.Backend, "NAILBOOK_BACKEND")
	override(&c.Client.BaseURL, "NAILBOOK_BASE_URL")
	override(&c.Client.Token, "NAILBOOK_TOKEN")
}

func (c *Config) Validate() error {
	switch c.Auth.Provider {
	case "local", "cognito":
	default:
		return fmt.Errorf("unknown auth provider %q", c.Auth.Provider)
	}
	switch c.Client.Backend {
	case "remote", "local":
	default:
		return fmt.Errorf("unknown client backend %q", c.Client.Backend)
	}
	_, err := c.Rules()
	return err
}

// Rules converts the booking section into booking.Rules.
func (c *Config) Rules() (booking.Rules, error) {
	b := c.Booking
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return booking.Rules{}, fmt.Errorf("booking timezone: %w", err)
	}
	open, err := parseClock(b.Open)
	if err != nil {
		return booking.Rules{}, fmt.Errorf("booking open: %w", err)
	}
	closing, err := parseClock(b.Close)
	if err != nil {
		return booking.Rules{}, fmt.Errorf("booking close: %w", err)
	}

	rules := booking.Rules{
		Location:               loc,
		WindowDays:             b.WindowDays,
		CutoffHour:             b.CutoffHour,
		OpenMinute:             open,
		CloseMinute:            closing,
		DefaultDurationMinutes: b.DefaultDuration,
		MaxAdvanceMonths:       b.MaxAdvanceMonths,
	}
	return rules, rules.Validate()
}

// parseClock turns "HH:MM" into minutes after midnight.
func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
