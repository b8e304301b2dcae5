// namegame is a photo quiz: match a colleague's name to the right face.
//
// Usage:
//
//	namegame play              - Play in the terminal
//	namegame serve             - Start SSH server for remote play
//	namegame web               - Start the browser front end
//	namegame profiles          - List the profiles the game can use
//
// Global flags:
//
//	--config <path>         - Config file (default: search ~/.namegame, ./configs, embedded)
//	--seed <value>          - Set RNG seed for reproducible rounds
//	--db <path>             - Profile cache database (default: ~/.namegame/profiles.db)
//	--profiles-url <url>    - Profiles API endpoint
//	--profiles-file <path>  - Read profiles from a local JSON file instead
//	--log-level <level>     - debug, info, warn, error
//	--env-file <path>       - Dotenv file loaded before anything else (default: .env)
//
// Every flag can also be set through a NAMEGAME_ environment variable,
// e.g. NAMEGAME_PROFILES_URL or NAMEGAME_LOG_LEVEL.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/vovakirdan/namegame/internal/config"
)

// Set at build time with -ldflags "-X main.version=..."
var version = "dev"

var (
	// Global flags
	flagConfig       string
	flagSeed         int64
	flagDBPath       string
	flagProfilesURL  string
	flagProfilesFile string
	flagLogLevel     string
	flagEnvFile      string
)

// Resolved by the root PersistentPreRunE for every subcommand.
var (
	appConfig config.Config
	logger    *log.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "namegame",
	Short: "The Name Game - put names to faces",
	Long: `The Name Game shows you a name and six headshots. Pick the right face.

Practice mode ends after five correct answers or five mistakes.
Timed mode gives you 60 seconds to score as many as you can.

Available commands:
  play      - Play in your terminal
  serve     - Start SSH server for remote play
  web       - Start the browser front end
  profiles  - List the profiles the game can use

Examples:
  namegame play
  namegame play --mode timed
  namegame serve --ssh :2222
  namegame web --port 9000
  namegame profiles --offline`,
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	// Global persistent flags. Empty values fall back to the config file.
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to profile cache database")
	rootCmd.PersistentFlags().StringVar(&flagProfilesURL, "profiles-url", "", "Profiles API endpoint")
	rootCmd.PersistentFlags().StringVar(&flagProfilesFile, "profiles-file", "", "Load profiles from a local JSON file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", "", "Dotenv file to load (default: .env)")

	// Add subcommands
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(webCmd)
	rootCmd.AddCommand(profilesCmd)
}

// setup loads the dotenv file, binds NAMEGAME_* variables to unset flags,
// loads the config and applies flag overrides on top of it.
func setup(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(flagEnvFile); err != nil {
		return err
	}

	if err := bindEnv(cmd.Flags()); err != nil {
		return err
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	applyFlags(cmd.Flags(), &cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}

	appConfig = cfg
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "namegame",
		Level:           cfg.LogLevel(),
	})
	return nil
}

// bindEnv lets NAMEGAME_<FLAG_NAME> set any flag the user did not pass.
func bindEnv(fs *pflag.FlagSet) error {
	v := viper.New()
	v.SetEnvPrefix("NAMEGAME")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var bindErr error
	fs.VisitAll(func(f *pflag.Flag) {
		if bindErr != nil || f.Name == "help" || f.Name == "version" {
			return
		}
		if err := v.BindPFlag(f.Name, f); err != nil {
			bindErr = err
			return
		}
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			if err := fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name))); err != nil {
				bindErr = fmt.Errorf("invalid NAMEGAME_%s: %w",
					strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_")), err)
			}
		}
	})
	return bindErr
}

// applyFlags copies explicitly set flags over the loaded config.
func applyFlags(fs *pflag.FlagSet, cfg *config.Config) {
	set := func(name string, apply func()) {
		if f := fs.Lookup(name); f != nil && f.Changed {
			apply()
		}
	}

	set("db", func() { cfg.Storage.Path = flagDBPath })
	set("profiles-url", func() { cfg.Profiles.URL = flagProfilesURL })
	set("profiles-file", func() { cfg.Profiles.File = flagProfilesFile })
	set("log-level", func() { cfg.Log.Level = flagLogLevel })

	// Command-local flags
	set("ssh", func() { cfg.SSH.Address = flagSSHAddr })
	set("host-key", func() { cfg.SSH.HostKey = flagHostKey })
	set("idle-timeout", func() { cfg.SSH.IdleTimeout = flagIdleTimeout })
	set("bind", func() { cfg.Web.Bind = flagBind })
	set("port", func() { cfg.Web.Port = flagPort })
	set("public-url", func() { cfg.Web.PublicURL = flagPublicURL })
}
