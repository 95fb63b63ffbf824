// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The deskctl Authors

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/deskctl/deskctl/pkg/desk"
)

// TuningConfig overrides the motion control constants. Zero values keep
// the defaults; these knobs exist for desks whose firmware behaves a
// little differently, not for everyday use.
type TuningConfig struct {
	CadenceMs       int `yaml:"cadence_ms"`
	SettleMs        int `yaml:"settle_ms"`
	StallWindowMs   int `yaml:"stall_window_ms"`
	SampleTimeoutMs int `yaml:"sample_timeout_ms"`
	RecallTimeoutMs int `yaml:"recall_timeout_ms"`
	DeadBandMM      int `yaml:"dead_band_mm"`
	StopUpMM        int `yaml:"stop_up_mm"`
	StopDownMM      int `yaml:"stop_down_mm"`
}

// Config is the optional YAML config file. Everything has a working
// default; an absent file is not an error.
type Config struct {
	DeskName       string       `yaml:"desk_name"`
	ScanTimeoutSec int          `yaml:"scan_timeout_sec"`
	ServeAddr      string       `yaml:"serve_addr"`
	Tuning         TuningConfig `yaml:"tuning"`
}

// DefaultConfigPath returns ~/.config/deskctl/config.yaml (or the
// platform equivalent).
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "deskctl", "config.yaml")
}

// LoadConfig reads the config file at path, or the default location
// when path is empty. A missing default file yields a zero Config; an
// explicitly named file must exist.
func LoadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
		if path == "" {
			return Config{}, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}

	if cfg.ScanTimeoutSec < 0 {
		return Config{}, fmt.Errorf("%s: scan_timeout_sec must not be negative", path)
	}
	return cfg, nil
}

// ScanTimeout returns the discovery timeout as a duration.
func (c Config) ScanTimeout() time.Duration {
	if c.ScanTimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.ScanTimeoutSec) * time.Second
}

// DeskTuning merges the file overrides into the default control
// constants.
func (c Config) DeskTuning() desk.Tuning {
	t := desk.DefaultTuning()
	if c.Tuning.CadenceMs > 0 {
		t.Cadence = time.Duration(c.Tuning.CadenceMs) * time.Millisecond
	}
	if c.Tuning.SettleMs > 0 {
		t.SettleDelay = time.Duration(c.Tuning.SettleMs) * time.Millisecond
	}
	if c.Tuning.StallWindowMs > 0 {
		t.StallWindow = time.Duration(c.Tuning.StallWindowMs) * time.Millisecond
	}
	if c.Tuning.SampleTimeoutMs > 0 {
		t.SampleTimeout = time.Duration(c.Tuning.SampleTimeoutMs) * time.Millisecond
	}
	if c.Tuning.RecallTimeoutMs > 0 {
		t.RecallTimeout = time.Duration(c.Tuning.RecallTimeoutMs) * time.Millisecond
	}
	if c.Tuning.DeadBandMM > 0 {
		t.DeadBandMM = c.Tuning.DeadBandMM
	}
	if c.Tuning.StopUpMM > 0 {
		t.StopDistanceUpMM = c.Tuning.StopUpMM
	}
	if c.Tuning.StopDownMM > 0 {
		t.StopDistanceDownMM = c.Tuning.StopDownMM
	}
	return t
}
