// Package config loads monitor configuration from an optional YAML file and
// UPSMON_-prefixed environment variables, with env taking precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Backend BackendConfig `koanf:"backend"`
	Monitor MonitorConfig `koanf:"monitor"`
	Log     LogConfig     `koanf:"log"`
	Start   StartConfig   `koanf:"start"`
}

type BackendConfig struct {
	BaseURL        string `koanf:"base_url"`
	PollIntervalMS int    `koanf:"poll_interval_ms"`
	ReopenDelayMS  int    `koanf:"reopen_delay_ms"`
}

type MonitorConfig struct {
	Port int `koanf:"port"`
}

type LogConfig struct {
	Capacity int `koanf:"capacity"`
}

// StartConfig holds the prefilled start parameters offered to the operator.
type StartConfig struct {
	DstIP   string `koanf:"dst_ip"`
	DstPort int    `koanf:"dst_port"`
	SrcPort int    `koanf:"src_port"`
	SiteID  string `koanf:"site_id"`
}

// PollInterval returns the status poll period.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Backend.PollIntervalMS) * time.Millisecond
}

// ReopenDelay returns the wait between stream reopen attempts.
func (c *Config) ReopenDelay() time.Duration {
	return time.Duration(c.Backend.ReopenDelayMS) * time.Millisecond
}

// Load reads configuration. The file is optional; a double underscore in an
// env key separates nesting levels, e.g. UPSMON_BACKEND__BASE_URL.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
		}
	}

	// Environment variables override the file
	if err := k.Load(env.Provider("UPSMON_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "UPSMON_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	// Default values
	defaults := map[string]any{
		"backend.base_url":         "http://localhost:8090",
		"backend.poll_interval_ms": 1000,
		"backend.reopen_delay_ms":  2000,
		"monitor.port":             8091,
		"log.capacity":             300,
		"start.dst_ip":             "172.30.1.123",
		"start.dst_port":           20000,
		"start.src_port":           40000,
		"start.site_id":            "1387787777",
	}
	for key, val := range defaults {
		if !k.Exists(key) {
			k.Set(key, val)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
