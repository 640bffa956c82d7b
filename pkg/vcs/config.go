// ABOUTME: Engine configuration with defaults, YAML loading and validation
// ABOUTME: Tunables for autosave similarity, auto-resolve window, analytics caps

package vcs

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML configs can use "24h" style strings
type Duration time.Duration

// UnmarshalYAML parses a duration string such as "24h" or "90m"
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("vcs: invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds engine tunables
type Config struct {
	// AutosaveSimilarityThreshold is the Jaccard similarity above which an
	// autosave is skipped as redundant
	AutosaveSimilarityThreshold float64 `yaml:"autosave_similarity_threshold" validate:"gte=0,lte=1"`

	// AutoResolveWindow is the wall-clock gap beyond which divergent edits
	// auto-resolve in favor of the newer side
	AutoResolveWindow Duration `yaml:"auto_resolve_window" validate:"gte=0"`

	// ActivityFeedLimit caps the recent-activity feed in statistics
	ActivityFeedLimit int `yaml:"activity_feed_limit" validate:"gt=0"`

	// TopContributorLimit caps the contributor ranking in statistics
	TopContributorLimit int `yaml:"top_contributor_limit" validate:"gt=0"`

	// LogLevel selects the engine log level
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`

	// PrettyLogs enables console-formatted log output for development
	PrettyLogs bool `yaml:"pretty_logs"`
}

// DefaultConfig returns the standard engine configuration
func DefaultConfig() Config {
	return Config{
		AutosaveSimilarityThreshold: 0.98,
		AutoResolveWindow:           Duration(24 * time.Hour),
		ActivityFeedLimit:           20,
		TopContributorLimit:         10,
		LogLevel:                    "info",
	}
}

// LoadConfig reads a YAML config file over the defaults
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("vcs: read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("vcs: parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate checks the configuration against its constraints
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("vcs: invalid config: %w", err)
	}
	return nil
}
