// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Fixtures     FixturesConfig          `yaml:"fixtures"`
	Playback     PlaybackConfig          `yaml:"playback"`
	Payment      PaymentConfig           `yaml:"payment"`
	Ledger       LedgerConfig            `yaml:"ledger"`
	Notification NotificationConfig      `yaml:"notification"`
	Log          LogConfig               `yaml:"log"`
	Filters      map[string]FilterConfig `yaml:"filters"`
	Messages     MessagesConfig          `yaml:"messages"`
}

// FixturesConfig selects the seed data.
type FixturesConfig struct {
	// Path to a fixture YAML file. Empty selects the built-in demo venue.
	Path string `yaml:"path"`
}

// PlaybackConfig represents playback control configuration.
type PlaybackConfig struct {
	TickIntervalMs int     `yaml:"tick_interval_ms" default:"100" validate:"gte=10,lte=1000"`
	Speed          float64 `yaml:"speed" default:"1" validate:"gt=0,lte=1000"`
	EventBuffer    int     `yaml:"event_buffer" default:"64" validate:"gte=1"`
	// ManualStart keeps playback idle after the first request until an admin skips.
	ManualStart bool `yaml:"manual_start"`
}

// TickInterval returns the driver interval.
func (p PlaybackConfig) TickInterval() time.Duration {
	return time.Duration(p.TickIntervalMs) * time.Millisecond
}

// PaymentConfig represents the payment gateway configuration.
type PaymentConfig struct {
	Gateway  string         `yaml:"gateway" default:"mock" validate:"oneof=mock"`
	Settings map[string]any `yaml:"settings"`
}

// LedgerConfig represents the transaction ledger configuration.
type LedgerConfig struct {
	DSN string `yaml:"dsn" default:"file:venuebox?mode=memory&cache=shared" validate:"required"`
}

// NotificationConfig represents notification fan-out configuration.
type NotificationConfig struct {
	SendTimeoutMs int `yaml:"send_timeout_ms" default:"500" validate:"gte=1,lte=10000"`
}

// SendTimeout returns the per-subscriber send timeout.
func (n NotificationConfig) SendTimeout() time.Duration {
	return time.Duration(n.SendTimeoutMs) * time.Millisecond
}

// LogConfig represents logger configuration.
type LogConfig struct {
	Output string `yaml:"output" default:"stdout"`
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn warning error"`
	File   string `yaml:"file"`
}

// FilterConfig represents a filter's configuration.
type FilterConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// MessagesConfig represents user-facing messages.
type MessagesConfig struct {
	Success               string `yaml:"success" default:"Your song has been added to the queue!"`
	DefaultError          string `yaml:"default_error" default:"Something went wrong. Please try again."`
	InvalidSession        string `yaml:"invalid_session" default:"Please log in to request songs."`
	SongNotFound          string `yaml:"song_not_found" default:"That song is not in the catalog."`
	DuplicateSong         string `yaml:"duplicate_song" default:"That song is already playing or in the queue."`
	UserPending           string `yaml:"user_pending" default:"Please wait for your previous request to play."`
	DurationLimitExceeded string `yaml:"duration_limit_exceeded" default:"That song is too long or too short for tonight."`
	QueueFull             string `yaml:"queue_full" default:"The queue is full. Try again later."`
	PaymentDeclined       string `yaml:"payment_declined" default:"Payment failed. Please try again."`
	InsufficientCredits   string `yaml:"insufficient_credits" default:"Not enough venue credit."`
}

// Load loads configuration from a YAML file. An empty path yields the defaults.
// Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read config file")
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	}

	// Override with environment variables
	if err := cfg.overrideFromEnv(); err != nil {
		return nil, err
	}

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() error {
	if v := os.Getenv("LEDGER_DSN"); v != "" {
		c.Ledger.DSN = v
	}
	if v := os.Getenv("VENUEBOX_FIXTURES"); v != "" {
		c.Fixtures.Path = v
	}
	if v := os.Getenv("VENUEBOX_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("VENUEBOX_SPEED"); v != "" {
		speed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Wrapf(err, "invalid VENUEBOX_SPEED %q", v)
		}
		c.Playback.Speed = speed
	}
	return nil
}

// GetMessage returns the message for the given code.
func (c *Config) GetMessage(code string) string {
	switch code {
	case "success":
		return c.Messages.Success
	case "invalid_session":
		return c.Messages.InvalidSession
	case "song_not_found":
		return c.Messages.SongNotFound
	case "duplicate_song":
		return c.Messages.DuplicateSong
	case "user_pending":
		return c.Messages.UserPending
	case "duration_limit_exceeded":
		return c.Messages.DurationLimitExceeded
	case "queue_full":
		return c.Messages.QueueFull
	case "payment_declined":
		return c.Messages.PaymentDeclined
	case "insufficient_credits":
		return c.Messages.InsufficientCredits
	default:
		return c.Messages.DefaultError
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}

// IsFilterEnabled checks if a filter is enabled.
func (c *Config) IsFilterEnabled(filterName string) bool {
	if f, ok := c.Filters[filterName]; ok {
		return f.Enabled
	}
	return false
}

// EnabledFilters returns the enabled filters among order, keeping order.
func (c *Config) EnabledFilters(order []string) []string {
	enabled := make([]string, 0, len(order))
	for _, name := range order {
		if c.IsFilterEnabled(name) {
			enabled = append(enabled, name)
		}
	}
	return enabled
}

// FilterSettings returns the settings of every configured filter.
func (c *Config) FilterSettings() map[string]map[string]any {
	settings := make(map[string]map[string]any, len(c.Filters))
	for name, f := range c.Filters {
		settings[name] = f.Settings
	}
	return settings
}
