package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Load reads a TOML file over the defaults and validates the result.
// Keys missing from the file keep their default. A missing file yields the
// defaults; unknown keys are an error.
func Load(path string, logger *slog.Logger) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("config file not found, using defaults", "path", path)
		cfg := NewDefaultConfig()
		if err := Validate(cfg); err != nil {
			return nil, fmt.Errorf("default configuration is invalid: %w", err)
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	cfg, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.Source = path

	logger.Info("loaded configuration", "path", path)
	return cfg, nil
}

// Decode parses TOML over the defaults and validates the result.
func Decode(data []byte) (*Config, error) {
	cfg := NewDefaultConfig()

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("unknown configuration keys:\n%s", strict.String())
		}
		return nil, fmt.Errorf("failed to unmarshal TOML: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}
