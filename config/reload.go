package config

import (
	"fmt"
	"log/slog"
	"reflect"
)

// restartFields are read once at startup. Changing them in a reload has no
// effect until the process restarts.
var restartFields = []struct {
	name string
	get  func(*Config) any
}{
	{"Server", func(c *Config) any { return c.Server }},
	{"RateLimit.PermitLimit", func(c *Config) any { return c.RateLimit.PermitLimit }},
	{"RateLimit.Window", func(c *Config) any { return c.RateLimit.Window }},
	{"Sweeper.Interval", func(c *Config) any { return c.Sweeper.Interval }},
	{"Scheduler.Interval", func(c *Config) any { return c.Scheduler.Interval }},
	{"GeoIP", func(c *Config) any { return c.GeoIP }},
	{"TopCountries", func(c *Config) any { return c.TopCountries }},
	{"Log.Level", func(c *Config) any { return c.Log.Level }},
	{"Log.Format", func(c *Config) any { return c.Log.Format }},
	{"Metrics.Endpoint", func(c *Config) any { return c.Metrics.Endpoint }},
	{"Endpoints", func(c *Config) any { return c.Endpoints }},
}

// checkChangedRestartFields lists the restart-only fields that differ.
func checkChangedRestartFields(oldCfg, newCfg *Config) []string {
	changed := []string{}
	for _, f := range restartFields {
		if !reflect.DeepEqual(f.get(oldCfg), f.get(newCfg)) {
			changed = append(changed, f.name)
		}
	}
	return changed
}

// Reload re-reads the file the current config came from and swaps it into
// provider. Switches like rate_limit.activated, request logging and the
// metrics allow list take effect at once; restart-only changes are logged.
// On any error the current config stays in place.
func Reload(provider *Provider, logger *slog.Logger) error {
	current := provider.Get()
	if current.Source == "" {
		logger.Warn("Reload: configuration has no source file, nothing to reload")
		return nil
	}

	newCfg, err := Load(current.Source, logger)
	if err != nil {
		logger.Error("Reload: failed to load configuration", "path", current.Source, "error", err)
		return fmt.Errorf("failed to reload configuration: %w", err)
	}
	if newCfg.Source == "" {
		// file vanished, keep what we have
		return fmt.Errorf("configuration file %s disappeared", current.Source)
	}

	if changed := checkChangedRestartFields(current, newCfg); len(changed) > 0 {
		logger.Warn("Reload: fields changed that require a restart", "fields", changed)
	}

	provider.Update(newCfg)
	logger.Info("Reload: configuration successfully reloaded", "path", newCfg.Source)
	return nil
}
