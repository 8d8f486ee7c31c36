package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/spf13/viper"

	"github.com/agentstation/cardsync/internal/config"
)

// Config holds the CLI configuration loaded from flags, environment
// variables and .env files. Panel settings themselves live in
// internal/config and are read when a command first needs a Syncer.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// ConfigFile is the settings file (default settings.ini)
	ConfigFile string

	// Overrides applied on top of the settings file
	Panels   []string
	Snapshot string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables
// 3. .env files
// 4. Defaults
func LoadConfig() (*Config, error) {
	// .env files must be loaded before the environment is read, here and in
	// internal/config
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(config.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for _, key := range []string{"log_level", "log_format", "log_output"} {
		// LOG_LEVEL and friends are shared with pkg/logging
		_ = v.BindEnv(key, config.EnvPrefix+"_"+strings.ToUpper(key), strings.ToUpper(key))
	}
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")

	return &Config{
		Format:     v.GetString("format"),
		ConfigFile: v.GetString("config"),
		NoColor:    v.GetBool("no_color") || os.Getenv("NO_COLOR") != "",
		LogLevel:   v.GetString("log_level"),
		LogFormat:  v.GetString("log_format"),
		LogOutput:  v.GetString("log_output"),
	}, nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// ColorDisabled reports whether output must be plain: --no-color, NO_COLOR
// or a stdout that is not a terminal.
func (c *Config) ColorDisabled() bool {
	if c.NoColor {
		return true
	}
	fd := os.Stdout.Fd()
	return !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd)
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	envFiles := []string{
		".env.local",
		".env",
	}

	for _, envFile := range envFiles {
		_ = godotenv.Load(envFile)
	}
}
