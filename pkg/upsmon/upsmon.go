// Package upsmon provides the public API for embedding the transmission
// monitor. This is the stable API for external consumers.
package upsmon

import (
	"github.com/lab-ups/upsmon/internal/config"
	"github.com/lab-ups/upsmon/internal/runtime"
)

// Monitor is the main entry point for running the transmission monitor.
// See internal/runtime.Monitor for full documentation.
type Monitor = runtime.Monitor

// Config is the monitor configuration.
type Config = config.Config

// Option is a functional option for configuring a Monitor.
type Option = runtime.Option

// LoadConfig reads configuration from an optional YAML file and
// UPSMON_-prefixed environment variables.
var LoadConfig = config.Load

// New wires a monitor from configuration.
// Example:
//
//	cfg, err := upsmon.LoadConfig("config.yaml")
//	mon, err := upsmon.New(cfg, upsmon.WithoutMonitorAPI())
var New = runtime.New

var (
	WithLogger        = runtime.WithLogger
	WithoutMonitorAPI = runtime.WithoutMonitorAPI
)
