// hot-reload.go: dynamic configuration with Argus integration
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package mnemo

import (
	"math"
	"sync"
	"time"

	"github.com/agilira/argus"
	"github.com/agilira/go-timecache"
)

// HotConfig provides dynamic configuration reload capabilities using Argus.
// It watches a configuration file and pushes the settings it finds to every
// registered Tunable (TimedCache, GenerationalCache with a tunable policy,
// PathCache). Only keys present in the file are pushed: a cache built with
// its own capacity or period keeps it until the file names that key.
type HotConfig struct {
	watcher *argus.Watcher
	logger  Logger

	mu         sync.RWMutex
	config     Config
	overrides  Config // keys set by the last load, zero when absent
	loaded     bool
	lastReload int64 // wall clock nanoseconds, from timecache
	targets    []Tunable

	// OnReload is called after configuration is successfully reloaded.
	// This callback is optional and must be fast and non-blocking.
	OnReload func(oldConfig, newConfig Config)
}

// HotConfigOptions configures hot reload behavior.
type HotConfigOptions struct {
	// ConfigPath is the path to the configuration file to watch.
	// Supports JSON, YAML, TOML, HCL, INI, Properties formats.
	ConfigPath string

	// PollInterval is how often to check for configuration changes.
	// Default: 1 second. Minimum: 100ms.
	PollInterval time.Duration

	// OnReload is called after configuration is successfully reloaded.
	OnReload func(oldConfig, newConfig Config)

	// Logger for hot reload operations. If nil, NoOpLogger is used.
	Logger Logger

	// Targets receive every reloaded configuration.
	Targets []Tunable
}

// NewHotConfig creates a new hot-reloadable configuration.
// It starts watching the configuration file immediately.
//
// Example configuration file (YAML):
//
//	mnemo:
//	  rotation_period: "30s"
//	  rotation_threshold: 5000
//	  capacity: 2000
//
// Supported configuration keys:
//   - mnemo.rotation_period (duration string): generation lifetime of timed caches
//   - mnemo.rotation_threshold (int): recent generation size for count-gated caches
//   - mnemo.capacity (int): path cache capacity
//
// Lock pool sizes are fixed when a cache is built and are not reloadable.
func NewHotConfig(opts HotConfigOptions) (*HotConfig, error) {
	if opts.ConfigPath == "" {
		return nil, NewErrInvalidConfig("config_path", opts.ConfigPath)
	}

	if opts.PollInterval == 0 {
		opts.PollInterval = 1 * time.Second
	} else if opts.PollInterval < 100*time.Millisecond {
		opts.PollInterval = 100 * time.Millisecond
	}

	if opts.Logger == nil {
		opts.Logger = NoOpLogger{}
	}

	hc := &HotConfig{
		logger:   opts.Logger,
		config:   DefaultConfig(), // Start with defaults
		targets:  append([]Tunable(nil), opts.Targets...),
		OnReload: opts.OnReload,
	}

	// Create Argus config with specified PollInterval for fast file change detection
	argusConfig := argus.Config{
		PollInterval: opts.PollInterval,
	}

	watcher, err := argus.UniversalConfigWatcherWithConfig(opts.ConfigPath, hc.handleConfigChange, argusConfig)
	if err != nil {
		return nil, NewErrHotReloadFailed(opts.ConfigPath, err)
	}
	hc.watcher = watcher

	return hc, nil
}

// Start begins watching the configuration file for changes.
func (hc *HotConfig) Start() error {
	// Check if already running to avoid ARGUS_WATCHER_BUSY error
	if hc.watcher.IsRunning() {
		return nil
	}
	return hc.watcher.Start()
}

// Stop stops watching the configuration file.
func (hc *HotConfig) Stop() error {
	return hc.watcher.Stop()
}

// Register adds a target. Once the file has been loaded, the target
// immediately receives the keys it sets; before that it is left untouched.
func (hc *HotConfig) Register(t Tunable) {
	if t == nil {
		return
	}
	hc.mu.Lock()
	hc.targets = append(hc.targets, t)
	loaded, overrides := hc.loaded, hc.overrides
	hc.mu.Unlock()

	if loaded {
		t.ApplyConfig(overrides)
	}
}

// GetConfig returns the current configuration (thread-safe): defaults
// overlaid with every key loaded so far.
func (hc *HotConfig) GetConfig() Config {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.config
}

// LastReload returns the wall clock time of the last successful load, or
// the zero time if the file has not been loaded yet.
func (hc *HotConfig) LastReload() time.Time {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	if hc.lastReload == 0 {
		return time.Time{}
	}
	return time.Unix(0, hc.lastReload)
}

// handleConfigChange is called by Argus when configuration changes.
func (hc *HotConfig) handleConfigChange(configData map[string]interface{}) {
	overrides := hc.parseConfig(configData)

	hc.mu.Lock()
	oldConfig := hc.config
	newConfig := mergeConfig(oldConfig, overrides)
	hc.config = newConfig
	hc.overrides = overrides
	hc.loaded = true
	hc.lastReload = timecache.CachedTimeNano()
	targets := append([]Tunable(nil), hc.targets...)
	hc.mu.Unlock()

	hc.applyChanges(targets, overrides)
	hc.logger.Info("configuration reloaded",
		"rotation_period", overrides.RotationPeriod,
		"rotation_threshold", overrides.RotationThreshold,
		"capacity", overrides.Capacity,
		"targets", len(targets))

	// Trigger callback if set
	if hc.OnReload != nil {
		hc.OnReload(oldConfig, newConfig)
	}
}

// parsePositiveInt extracts a positive integer from interface{} value.
// Supports both int and float64 types (YAML/JSON may vary).
func parsePositiveInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		if v > 0 {
			return v, true
		}
	case int64:
		if v > 0 && v <= math.MaxInt32 {
			return int(v), true
		}
	case float64:
		if v >= 1 && v < math.MaxInt32 {
			return int(v), true
		}
	}
	return 0, false
}

// parseDuration extracts a positive time.Duration from a string value.
func parseDuration(value interface{}) (time.Duration, bool) {
	if str, ok := value.(string); ok {
		if d, err := time.ParseDuration(str); err == nil && d > 0 {
			return d, true
		}
	}
	return 0, false
}

// parseConfig extracts mnemo configuration from Argus config data.
// Only valid keys present in data are set; the rest stay zero.
func (hc *HotConfig) parseConfig(data map[string]interface{}) Config {
	var config Config

	// Argus might nest the section or provide it directly
	section, ok := data["mnemo"].(map[string]interface{})
	if !ok {
		section = data
	}

	if d, ok := parseDuration(section["rotation_period"]); ok {
		config.RotationPeriod = d
	} else if raw, present := section["rotation_period"]; present {
		hc.logger.Warn("ignoring invalid rotation_period", "value", raw)
	}

	if n, ok := parsePositiveInt(section["rotation_threshold"]); ok {
		config.RotationThreshold = n
	} else if raw, present := section["rotation_threshold"]; present {
		hc.logger.Warn("ignoring invalid rotation_threshold", "value", raw)
	}

	if n, ok := parsePositiveInt(section["capacity"]); ok {
		config.Capacity = n
	} else if raw, present := section["capacity"]; present {
		hc.logger.Warn("ignoring invalid capacity", "value", raw)
	}

	return config
}

// mergeConfig returns base with every non-zero reloadable field of
// overrides applied.
func mergeConfig(base, overrides Config) Config {
	if overrides.RotationPeriod > 0 {
		base.RotationPeriod = overrides.RotationPeriod
	}
	if overrides.RotationThreshold > 0 {
		base.RotationThreshold = overrides.RotationThreshold
	}
	if overrides.Capacity > 0 {
		base.Capacity = overrides.Capacity
	}
	return base
}

// applyChanges pushes the loaded keys to every target.
func (hc *HotConfig) applyChanges(targets []Tunable, cfg Config) {
	for _, t := range targets {
		t.ApplyConfig(cfg)
	}
}
