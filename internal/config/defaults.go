package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/namegame.yaml
var defaultYAML []byte

// DefaultProfilesURL is the public profiles API.
const DefaultProfilesURL = "https://namegame.willowtreeapps.com/api/v1.0/profiles"

// Default returns the hardcoded configuration.
func Default() Config {
	return Config{
		Profiles: ProfilesConfig{
			URL:      DefaultProfilesURL,
			Timeout:  10 * time.Second,
			CacheTTL: 10 * time.Minute,
		},
		Storage: StorageConfig{
			Path: "~/.namegame/profiles.db",
		},
		SSH: SSHConfig{
			Address:     ":23235",
			IdleTimeout: 30 * time.Minute,
		},
		Web: WebConfig{
			Bind: "0.0.0.0",
			Port: 8080,
		},
		Log: LogConfig{
			Level: "info",
			File:  "~/.namegame/namegame.log",
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultYAML
}
