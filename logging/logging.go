// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package logging builds the process-wide zap logger.
package logging

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger modes
const (
	ModeAuto        = "auto"
	ModeProduction  = "production"
	ModeDevelopment = "development"
)

// New builds a logger for mode and installs it as the zap global.
// ModeAuto picks development output when stderr is a terminal.
func New(mode string) (*zap.Logger, error) {
	if mode == "" || mode == ModeAuto {
		mode = ModeProduction
		if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
			mode = ModeDevelopment
		}
	}

	var config zap.Config
	switch mode {
	case ModeProduction:
		config = zap.NewProductionConfig()
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	case ModeDevelopment:
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("unknown log mode %q", mode)
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}
