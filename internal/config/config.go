// Package config loads runtime configuration for the CLI, server and
// stream surfaces. Defaults come first, an optional .env file second, and
// AFRIPROG_* environment variables win.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration.
type Config struct {
	// DBPath overrides the default database location. Empty means the
	// store resolves its own XDG path.
	DBPath string

	Grading GradingConfig
	Server  ServerConfig
	Stream  StreamConfig
}

// GradingConfig carries the course-wide grading policy applied to records
// that do not set their own values.
type GradingConfig struct {
	PassingThreshold float64
	MaxAttempts      int
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr            string
	Debug           bool
	ShutdownTimeout time.Duration
}

// StreamConfig configures the optional NATS boundary.
type StreamConfig struct {
	Enabled bool
	URL     string

	// Subject is the subscription for pushed progress updates.
	Subject string

	// RiskSubjectPrefix is where risk-level changes are republished,
	// suffixed with ".<learnerID>.<moduleID>".
	RiskSubjectPrefix string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Grading: GradingConfig{
			PassingThreshold: 80,
			MaxAttempts:      3,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Stream: StreamConfig{
			URL:               "nats://127.0.0.1:4222",
			Subject:           "progress.events.>",
			RiskSubjectPrefix: "progress.risk",
		},
	}
}

// Load builds a Config from defaults, an optional .env file, and
// AFRIPROG_* environment variables (dots in keys become underscores, so
// server.addr is AFRIPROG_SERVER_ADDR).
func Load() (Config, error) {
	// Load .env if it exists (ignore if it does not).
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return Config{}, fmt.Errorf("load .env: %w", err)
		}
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)

	def := DefaultConfig()
	v.SetDefault("db.path", def.DBPath)
	v.SetDefault("grading.passing_threshold", def.Grading.PassingThreshold)
	v.SetDefault("grading.max_attempts", def.Grading.MaxAttempts)
	v.SetDefault("server.addr", def.Server.Addr)
	v.SetDefault("server.debug", def.Server.Debug)
	v.SetDefault("server.shutdown_timeout", def.Server.ShutdownTimeout)
	v.SetDefault("stream.enabled", def.Stream.Enabled)
	v.SetDefault("stream.url", def.Stream.URL)
	v.SetDefault("stream.subject", def.Stream.Subject)
	v.SetDefault("stream.risk_subject_prefix", def.Stream.RiskSubjectPrefix)

	v.SetEnvPrefix("AFRIPROG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return Config{
		DBPath: v.GetString("db.path"),
		Grading: GradingConfig{
			PassingThreshold: v.GetFloat64("grading.passing_threshold"),
			MaxAttempts:      v.GetInt("grading.max_attempts"),
		},
		Server: ServerConfig{
			Addr:            v.GetString("server.addr"),
			Debug:           v.GetBool("server.debug"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Stream: StreamConfig{
			Enabled:           v.GetBool("stream.enabled"),
			URL:               v.GetString("stream.url"),
			Subject:           v.GetString("stream.subject"),
			RiskSubjectPrefix: v.GetString("stream.risk_subject_prefix"),
		},
	}, nil
}
