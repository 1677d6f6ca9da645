// Package config loads the process-level tunables from the environment.
// Everything the command line does not cover is an ANALYZER_* variable.
package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// Config holds the analyzer's environment-driven settings.
type Config struct {
	// LogLevel selects the logrus level for stderr diagnostics. The
	// default keeps only [ERROR] lines; "info" restores the lifecycle
	// messages.
	LogLevel string `split_words:"true" default:"error"`

	// MaxLineBytes caps a single input line. Lines beyond the cap fail
	// the scan and are reported, never silently truncated.
	MaxLineBytes int `split_words:"true" default:"1048576"`

	// TypewriterDelay is the per-character pause of the typewriter stage.
	TypewriterDelay time.Duration `split_words:"true" default:"100ms"`

	// DrawFile, when set, is the path the pipeline topology is rendered
	// to as DOT at shutdown.
	DrawFile string `split_words:"true"`
}

// Load reads ANALYZER_* variables into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("analyzer", cfg); err != nil {
		return nil, errors.Wrap(err, "unable to process environment")
	}

	return cfg, nil
}
