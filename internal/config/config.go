// Package config provides YAML-based configuration loading for namegame:
// where profiles come from, where they are cached and how the SSH and web
// front ends listen.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// Config is the full application configuration.
type Config struct {
	Profiles ProfilesConfig `yaml:"profiles"`
	Storage  StorageConfig  `yaml:"storage"`
	SSH      SSHConfig      `yaml:"ssh"`
	Web      WebConfig      `yaml:"web"`
	Log      LogConfig      `yaml:"log"`
}

// ProfilesConfig defines where profiles are loaded from.
type ProfilesConfig struct {
	URL      string        `yaml:"url"`
	File     string        `yaml:"file"` // Overrides URL when set
	Timeout  time.Duration `yaml:"timeout"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// StorageConfig defines the profile cache database.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// SSHConfig defines the SSH server.
type SSHConfig struct {
	Address     string        `yaml:"address"`
	HostKey     string        `yaml:"host_key"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// WebConfig defines the HTTP/WebSocket server.
type WebConfig struct {
	Bind      string `yaml:"bind"`
	Port      int    `yaml:"port"`
	PublicURL string `yaml:"public_url"` // Encoded in the /qr code, derived from bind/port when empty
}

// LogConfig defines logging.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // Used by local TUI play
}

// Addr returns the host:port the web server listens on.
func (w WebConfig) Addr() string {
	return fmt.Sprintf("%s:%d", w.Bind, w.Port)
}

// URL returns the public URL, falling back to one built from Bind and Port.
func (w WebConfig) URL() string {
	if w.PublicURL != "" {
		return w.PublicURL
	}
	host := w.Bind
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, w.Port)
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error

	if c.Profiles.URL == "" && c.Profiles.File == "" {
		errs = append(errs, errors.New("config: profiles.url or profiles.file is required"))
	}
	if c.Profiles.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("config: profiles.timeout must be positive, got %s", c.Profiles.Timeout))
	}
	if c.Profiles.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("config: profiles.cache_ttl cannot be negative, got %s", c.Profiles.CacheTTL))
	}
	if c.Web.Port < 1 || c.Web.Port > 65535 {
		errs = append(errs, fmt.Errorf("config: web.port out of range: %d", c.Web.Port))
	}
	if c.SSH.IdleTimeout <= 0 {
		errs = append(errs, fmt.Errorf("config: ssh.idle_timeout must be positive, got %s", c.SSH.IdleTimeout))
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("config: log.level: %w", err))
	}

	return errors.Join(errs...)
}

// LogLevel returns the parsed log level, info when invalid.
func (c Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
