/*
Copyright 2025 The Lumos Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package logging configures the process-wide logr logger backed by zap.
package logging

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	ctrl "sigs.k8s.io/controller-runtime"
)

// Verbosity levels passed to logr.Logger.V
const (
	DEBUG = 1
	TRACE = 2
)

// Options selects the encoder and verbosity of the root logger.
type Options struct {
	// Level is one of "error", "info", "debug" or "trace".
	Level string
	// Development switches to a console encoder with caller info.
	Development bool
}

// ParseLevel maps a level name onto a zap level. logr verbosity V(n) is zap level -n.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	case "debug":
		return zapcore.Level(-DEBUG), nil
	case "trace":
		return zapcore.Level(-TRACE), nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// New builds a zap-backed logr.Logger.
func New(opts Options) (logr.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return logr.Discard(), err
	}
	cfg := zap.NewProductionConfig()
	if opts.Development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableStacktrace = true
	zl, err := cfg.Build()
	if err != nil {
		return logr.Discard(), fmt.Errorf("failed to build zap logger: %w", err)
	}
	return zapr.NewLogger(zl), nil
}

// Setup builds the logger and installs it as the controller-runtime root logger.
func Setup(opts Options) (logr.Logger, error) {
	logger, err := New(opts)
	if err != nil {
		return logger, err
	}
	ctrl.SetLogger(logger)
	return logger, nil
}

// NewTestLogger installs a development logger at trace verbosity for test suites.
func NewTestLogger() logr.Logger {
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	zc := zapcore.NewCore(enc, zapcore.Lock(os.Stderr), zap.NewAtomicLevelAt(zapcore.Level(-TRACE)))
	logger := zapr.NewLogger(zap.New(zc))
	ctrl.SetLogger(logger)
	return logger
}

// NewObservedLogger returns a trace verbosity logger whose entries are kept in
// memory for assertions. It does not replace the root logger.
func NewObservedLogger() (logr.Logger, *observer.ObservedLogs) {
	zc, logs := observer.New(zapcore.Level(-TRACE))
	return zapr.NewLogger(zap.New(zc)), logs
}
