package lilfast

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the settings that can be provided through a TOML file.
// Command line flags take precedence over the file.
type Config struct {
	Endpoint   string  `toml:"endpoint"`
	Prompt     string  `toml:"prompt"`
	Iterations int     `toml:"iterations"`
	Color      string  `toml:"color"`
	Brush      float64 `toml:"brush"`
	Filter     string  `toml:"filter"`
	// Timeout of the inference request, in seconds. Zero disables it.
	Timeout int `toml:"timeout"`
}

// DefaultConfig returns the settings used when nothing else is provided.
func DefaultConfig() Config {
	return Config{
		Endpoint:   DefaultEndpoint,
		Iterations: DefaultIterations,
		Color:      DefaultColor,
		Brush:      BrushMedium,
		Filter:     "lanczos",
		Timeout:    120,
	}
}

// LoadConfig reads the TOML file at path on top of the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("could not open the config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("could not decode the config file %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the settings for values the canvas or the client cannot work with.
func (c Config) Validate() error {
	if _, err := c.Style(); err != nil {
		return err
	}
	if c.Iterations <= 0 {
		return fmt.Errorf("the number of iterations must be positive, got %d", c.Iterations)
	}
	if _, ok := FilterByName(c.Filter); !ok {
		return fmt.Errorf("unknown resampling filter %q", c.Filter)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("the timeout cannot be negative, got %d", c.Timeout)
	}
	return nil
}

// Style returns the pen described by the color and brush settings.
func (c Config) Style() (Style, error) {
	return ParseStyle(c.Color, c.Brush)
}

// RequestTimeout returns the inference request timeout.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}
