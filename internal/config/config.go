// Package config loads the bridge configuration.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the bridge's root configuration.
type Config struct {
	// HostName is the registered name of the native messaging host.
	HostName string `mapstructure:"host_name"`

	// Origin is passed to the host as its first argument, the way the
	// browser identifies the calling extension.
	Origin string `mapstructure:"origin"`

	// Trigger selects the event source that stands in for the toolbar
	// click: "signal" or "stdin".  Defaults to "signal", except on
	// Windows which has no SIGUSR1 and defaults to "stdin".
	Trigger string `mapstructure:"trigger"`

	// MetricsListen, when set, enables the Prometheus endpoint on the
	// given address.
	MetricsListen string `mapstructure:"metrics_listen"`

	Logging LoggingConfig `mapstructure:"logging"`
}

// LoggingConfig controls the log sink.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads the configuration from the given file.  An empty path
// falls back to a config.yaml in the working directory; a missing file
// is not an error, the defaults apply.  Every key can be overridden
// through the environment with a SPEECH_BRIDGE_ prefix.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("SPEECH_BRIDGE")
	// Nested keys use underscores in the environment, e.g.
	// logging.level becomes SPEECH_BRIDGE_LOGGING_LEVEL.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("host_name", "beeves_speech_server")
	v.SetDefault("origin", "chrome-extension://beeves/")
	v.SetDefault("trigger", defaultTrigger)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}
