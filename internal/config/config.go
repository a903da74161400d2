package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	AppName       = "TIBR Simple Player"
	DefaultAPIURL = "https://azura.theindiebeat.fm/api"
)

// Config represents application configuration
type Config struct {
	API      APIConfig       `mapstructure:"api"`
	Player   PlayerConfig    `mapstructure:"player"`
	Tray     TrayConfig      `mapstructure:"tray"`
	Channels []ChannelConfig `mapstructure:"channels"`
	Log      LogConfig       `mapstructure:"log"`
}

// APIConfig represents AzuraCast API configuration
type APIConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	UserAgent      string `mapstructure:"user_agent"`
	Timeout        string `mapstructure:"timeout"`
	RetryAttempts  int    `mapstructure:"retry_attempts"`
	RetryBaseDelay string `mapstructure:"retry_base_delay"`
}

// PlayerConfig represents media pipeline configuration
type PlayerConfig struct {
	Binary           string  `mapstructure:"binary"`
	ClientName       string  `mapstructure:"client_name"`
	AudioOutput      string  `mapstructure:"audio_output"` // mpv --ao value, empty = mpv default
	Volume           float64 `mapstructure:"volume"`       // 0.0 - 1.0
	MetadataInterval string  `mapstructure:"metadata_interval"`
}

// TrayConfig represents tray icon configuration
type TrayConfig struct {
	Title   string       `mapstructure:"title"`
	Tooltip string       `mapstructure:"tooltip"`
	Links   []LinkConfig `mapstructure:"links"`
}

// LinkConfig is an external link shown in the tray menu
type LinkConfig struct {
	Label string `mapstructure:"label"`
	URL   string `mapstructure:"url"`
}

// ChannelConfig is a statically configured channel
type ChannelConfig struct {
	Name      string `mapstructure:"name"`
	Shortcode string `mapstructure:"shortcode"`
	ListenURL string `mapstructure:"listen_url"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", DefaultAPIURL)
	v.SetDefault("api.user_agent", AppName+"/1.0")
	v.SetDefault("api.timeout", "10s")
	v.SetDefault("api.retry_attempts", 3)
	v.SetDefault("api.retry_base_delay", "5s")

	v.SetDefault("player.binary", "mpv")
	v.SetDefault("player.client_name", AppName)
	v.SetDefault("player.audio_output", "pulse")
	v.SetDefault("player.volume", 0.5)
	v.SetDefault("player.metadata_interval", "30s")

	v.SetDefault("tray.title", "")
	v.SetDefault("tray.tooltip", AppName)
	v.SetDefault("tray.links", []map[string]string{
		{"label": "Go to The Indie Beat", "url": "https://theindiebeat.fm/"},
		{"label": "Go to Bandwagon", "url": "https://bandwagon.fm/"},
	})

	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
}

// Load loads configuration from file.
// Without an explicit path a missing config file is fine and defaults apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/tibr-player")
		v.AddConfigPath("/etc/tibr-player")
	}

	// TIBR_API_BASE_URL overrides api.base_url
	v.SetEnvPrefix("TIBR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.ExpandEnvVars()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.API.RetryAttempts <= 0 {
		return fmt.Errorf("api.retry_attempts must be positive")
	}

	if c.Player.Binary == "" {
		return fmt.Errorf("player.binary is required")
	}
	if c.Player.Volume < 0 || c.Player.Volume > 1 {
		return fmt.Errorf("player.volume must be between 0 and 1, got %v", c.Player.Volume)
	}

	for i, ch := range c.Channels {
		if ch.Name == "" {
			return fmt.Errorf("channels[%d].name is required", i)
		}
		if ch.ListenURL == "" {
			return fmt.Errorf("channels[%d].listen_url is required", i)
		}
	}

	for i, link := range c.Tray.Links {
		if link.Label == "" || link.URL == "" {
			return fmt.Errorf("tray.links[%d] needs both label and url", i)
		}
	}

	return nil
}

// GetTimeout returns the HTTP timeout for API requests
func (c *APIConfig) GetTimeout() time.Duration {
	return parseDuration(c.Timeout, 10*time.Second)
}

// GetRetryBaseDelay returns the first retry delay (doubled on each retry)
func (c *APIConfig) GetRetryBaseDelay() time.Duration {
	return parseDuration(c.RetryBaseDelay, 5*time.Second)
}

// GetMetadataInterval returns how often now-playing info is refreshed
func (c *PlayerConfig) GetMetadataInterval() time.Duration {
	return parseDuration(c.MetadataInterval, 30*time.Second)
}

// HasStaticChannels reports whether channels come from config instead of the API
func (c *Config) HasStaticChannels() bool {
	return len(c.Channels) > 0
}

// ExpandEnvVars expands environment variables in config strings
func (c *Config) ExpandEnvVars() {
	c.API.BaseURL = os.ExpandEnv(c.API.BaseURL)
	c.Log.File = os.ExpandEnv(c.Log.File)
	for i := range c.Channels {
		c.Channels[i].ListenURL = os.ExpandEnv(c.Channels[i].ListenURL)
	}
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	duration, err := time.ParseDuration(value)
	if err != nil || duration <= 0 {
		return fallback
	}
	return duration
}
