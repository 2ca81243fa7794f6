// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/robfig/cron/v3"
)

// validLogLevels maps the accepted log level strings to slog levels.
var validLogLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// validNetworks lists the networks addresses may be derived for.
var validNetworks = map[string]bool{
	"mainnet":  true,
	"devnet":   true,
	"localnet": true,
}

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
func ValidateConfig(cfg Config) error {
	if cfg.DataDir == "" {
		return ErrEmptyDataDir
	}

	if !validNetworks[cfg.Network] {
		return ErrInvalidNetwork
	}

	if err := validateAddr(cfg.ListenAddr); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidListenAddr, err)
	}

	if _, ok := validLogLevels[strings.ToLower(cfg.LogLevel)]; !ok {
		return ErrInvalidLogLevel
	}

	if _, err := cron.ParseStandard(cfg.HarvestSchedule); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
	}

	return nil
}

// ParseLogLevel converts a configured log level to a slog level.
func ParseLogLevel(level string) (slog.Level, error) {
	l, ok := validLogLevels[strings.ToLower(level)]
	if !ok {
		return slog.LevelInfo, ErrInvalidLogLevel
	}
	return l, nil
}

// validateAddr checks that addr is a valid host:port address.
func validateAddr(addr string) error {
	_, _, err := net.SplitHostPort(addr)
	return err
}
