// Package config loads the djust.json configuration file.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	derrors "github.com/djust-dev/djust/internal/errors"
	"github.com/djust-dev/djust/pkg/live"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "djust.json"

	// DefaultPort is the default server port.
	DefaultPort = 4000

	// DefaultHost is the default server host.
	DefaultHost = "localhost"
)

// Config represents the complete djust.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Server contains the HTTP/WebSocket listener configuration.
	Server ServerConfig `json:"server,omitempty"`

	// Session contains actor-core lifecycle tuning.
	Session SessionConfig `json:"session,omitempty"`

	// Templates is the directory the default renderer loads templates from.
	// Empty restricts rendering to inline templates.
	Templates string `json:"templates,omitempty"`
}

// ServerConfig configures the listener.
type ServerConfig struct {
	Host string `json:"host,omitempty"`
	Port int    `json:"port,omitempty"`
}

// SessionConfig tunes the live actor core.
type SessionConfig struct {
	// TTLSeconds is the idle time before a session is expired.
	TTLSeconds int `json:"ttl_seconds,omitempty"`

	// SweepIntervalSeconds is how often expiry/health sweeps run.
	SweepIntervalSeconds int `json:"sweep_interval_seconds,omitempty"`

	// AskTimeoutMS bounds every actor request/response round trip.
	AskTimeoutMS int `json:"ask_timeout_ms,omitempty"`

	// Mailbox capacities; session > view > component.
	SessionMailbox   int `json:"session_mailbox,omitempty"`
	ViewMailbox      int `json:"view_mailbox,omitempty"`
	ComponentMailbox int `json:"component_mailbox,omitempty"`
}

// Default returns the configuration used when no djust.json exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads djust.json from dir, falling back to defaults when the file
// does not exist.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads a specific configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, derrors.Newf("E070", "reading %s", path).Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, derrors.Newf("E070", "parsing %s", path).Wrap(err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Session.TTLSeconds == 0 {
		c.Session.TTLSeconds = 3600
	}
	if c.Session.SweepIntervalSeconds == 0 {
		c.Session.SweepIntervalSeconds = 30
	}
	if c.Session.AskTimeoutMS == 0 {
		c.Session.AskTimeoutMS = 5000
	}
	if c.Session.SessionMailbox == 0 {
		c.Session.SessionMailbox = 64
	}
	if c.Session.ViewMailbox == 0 {
		c.Session.ViewMailbox = 32
	}
	if c.Session.ComponentMailbox == 0 {
		c.Session.ComponentMailbox = 16
	}
}

func (c *Config) validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return derrors.Newf("E070", "port %d out of range", c.Server.Port)
	}
	if c.Session.TTLSeconds < 0 || c.Session.SweepIntervalSeconds < 0 || c.Session.AskTimeoutMS < 0 {
		return derrors.Newf("E070", "session durations must not be negative")
	}
	if c.Session.SessionMailbox < c.Session.ViewMailbox ||
		c.Session.ViewMailbox < c.Session.ComponentMailbox {
		return derrors.Newf("E070", "mailbox capacities must satisfy session >= view >= component")
	}
	return nil
}

// LiveConfig converts the session section into the actor core's Config.
func (c *Config) LiveConfig() live.Config {
	return live.Config{
		TTL:              time.Duration(c.Session.TTLSeconds) * time.Second,
		SweepInterval:    time.Duration(c.Session.SweepIntervalSeconds) * time.Second,
		AskTimeout:       time.Duration(c.Session.AskTimeoutMS) * time.Millisecond,
		SessionMailbox:   c.Session.SessionMailbox,
		ViewMailbox:      c.Session.ViewMailbox,
		ComponentMailbox: c.Session.ComponentMailbox,
	}
}
