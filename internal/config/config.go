// Package config holds the bot configuration: the shared core settings plus
// storage, channel, content and metrics.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/fitbot/core/config"
	coredatabase "github.com/m3rciful/fitbot/core/database"
)

// ErrMissingChannel is returned when no channel to gate on is configured.
var ErrMissingChannel = errors.New("channel id is required")

// ChannelConfig names the channel users must join.
type ChannelConfig struct {
	// ID is "@username" or a numeric chat id.
	ID        string        `yaml:"id" envconfig:"CHANNEL_ID"`
	InviteURL string        `yaml:"invite_url" envconfig:"CHANNEL_INVITE_URL"`
	Timeout   time.Duration `yaml:"timeout" envconfig:"GATE_TIMEOUT"`
}

// ContentConfig locates the guides and the optional programs file.
type ContentConfig struct {
	AssetsDir    string `yaml:"assets_dir" envconfig:"CONTENT_ASSETS_DIR"`
	ProgramsFile string `yaml:"programs_file" envconfig:"CONTENT_PROGRAMS_FILE"`
	ContactURL   string `yaml:"contact_url" envconfig:"CONTACT_URL"`
	ContactName  string `yaml:"contact_name" envconfig:"CONTACT_NAME"`
}

type MetricsConfig struct {
	Address string `yaml:"address" envconfig:"METRICS_ADDRESS"`
}

type StatsConfig struct {
	AdminOnly bool `yaml:"admin_only" envconfig:"STATS_ADMIN_ONLY"`
}

// Config is the full bot configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Channel  ChannelConfig       `yaml:"channel"`
	Content  ContentConfig       `yaml:"content"`
	Metrics  MetricsConfig       `yaml:"metrics"`
	Stats    StatsConfig         `yaml:"stats"`
}

// CoreConfig returns the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// Load reads the YAML file at path, if any, applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates required fields and fills defaults.
func (c *Config) Normalize() error {
	if err := coreconfig.Normalize(&c.Config); err != nil {
		return err
	}
	c.Channel.ID = strings.TrimSpace(c.Channel.ID)
	if c.Channel.ID == "" {
		return ErrMissingChannel
	}
	if c.Channel.Timeout < 0 {
		return fmt.Errorf("channel.timeout must be >= 0")
	}
	if strings.TrimSpace(c.Content.AssetsDir) == "" {
		c.Content.AssetsDir = "assets"
	}
	if c.Stats.AdminOnly && c.Telegram.AdminID == 0 {
		return fmt.Errorf("stats.admin_only needs telegram.admin_id")
	}
	return c.Database.Normalize()
}
