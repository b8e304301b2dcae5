package main

import (
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/vovakirdan/namegame/internal/config"
)

func testFlags(t *testing.T) *pflag.FlagSet {
	t.Helper()
	flagProfilesURL, flagLogLevel, flagDBPath = "", "", ""
	flagPort, flagIdleTimeout = 0, 0

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.StringVar(&flagProfilesURL, "profiles-url", "", "")
	fs.StringVar(&flagLogLevel, "log-level", "", "")
	fs.StringVar(&flagDBPath, "db", "", "")
	fs.IntVar(&flagPort, "port", 0, "")
	fs.DurationVar(&flagIdleTimeout, "idle-timeout", 0, "")
	return fs
}

func TestBindEnvOverridesConfig(t *testing.T) {
	t.Setenv("NAMEGAME_PROFILES_URL", "https://env.example.com/profiles")
	t.Setenv("NAMEGAME_PORT", "9000")
	t.Setenv("NAMEGAME_IDLE_TIMEOUT", "5m")

	fs := testFlags(t)
	if err := fs.Parse(nil); err != nil {
		t.Fatal(err)
	}
	if err := bindEnv(fs); err != nil {
		t.Fatalf("bindEnv() failed: %v", err)
	}

	cfg := config.Default()
	applyFlags(fs, &cfg)

	if cfg.Profiles.URL != "https://env.example.com/profiles" {
		t.Errorf("Profiles.URL = %q", cfg.Profiles.URL)
	}
	if cfg.Web.Port != 9000 {
		t.Errorf("Web.Port = %d, expected 9000", cfg.Web.Port)
	}
	if cfg.SSH.IdleTimeout != 5*time.Minute {
		t.Errorf("SSH.IdleTimeout = %s, expected 5m", cfg.SSH.IdleTimeout)
	}
	// Untouched fields keep their config value
	if cfg.Storage.Path != config.Default().Storage.Path {
		t.Errorf("Storage.Path = %q, expected default", cfg.Storage.Path)
	}
}

func TestFlagBeatsEnv(t *testing.T) {
	t.Setenv("NAMEGAME_LOG_LEVEL", "warn")

	fs := testFlags(t)
	if err := fs.Parse([]string{"--log-level", "debug"}); err != nil {
		t.Fatal(err)
	}
	if err := bindEnv(fs); err != nil {
		t.Fatalf("bindEnv() failed: %v", err)
	}

	cfg := config.Default()
	applyFlags(fs, &cfg)

	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, expected debug", cfg.Log.Level)
	}
}

func TestBindEnvInvalidValue(t *testing.T) {
	t.Setenv("NAMEGAME_PORT", "not-a-port")

	fs := testFlags(t)
	if err := fs.Parse(nil); err != nil {
		t.Fatal(err)
	}
	if err := bindEnv(fs); err == nil {
		t.Error("expected error for invalid NAMEGAME_PORT")
	}
}

func TestApplyFlagsWithoutChanges(t *testing.T) {
	fs := testFlags(t)
	if err := fs.Parse(nil); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	applyFlags(fs, &cfg)

	if cfg != config.Default() {
		t.Errorf("config changed without flags: %+v", cfg)
	}
}
