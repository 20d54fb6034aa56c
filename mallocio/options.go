// File: mallocio/options.go
// Package mallocio defines functional options and config for streams.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package mallocio

import (
	"github.com/momentics/hioload-rawmem/api"
	"github.com/momentics/hioload-rawmem/control"
	"github.com/momentics/hioload-rawmem/pool"
	"go.uber.org/zap"
)

// DefaultCapacity is the block size used when none is given.
const DefaultCapacity = 64

// Config holds parameters for building a stream from configuration.
type Config struct {
	Capacity  int    // Block size in bytes
	Allocator string // pool.ByName key; empty selects the process-wide heap
	Finalizer bool   // Install the leak-reclaiming finalizer
}

// DefaultConfig returns default configuration values.
func DefaultConfig() *Config {
	return &Config{
		Capacity:  DefaultCapacity,
		Allocator: "",
		Finalizer: true,
	}
}

// Validate rejects configurations no stream can be built from.
func (c *Config) Validate() error {
	if c.Capacity < 0 {
		return api.NewError(api.ErrCodeInvalidArgument, "negative capacity").
			WithOp("Config.Validate").
			WithContext("capacity", c.Capacity)
	}
	return nil
}

// Options returns the functional options equivalent to c, resolving the
// allocator by name.
func (c *Config) Options() ([]Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	a, err := pool.ByName(c.Allocator)
	if err != nil {
		return nil, err
	}
	return []Option{WithAllocator(a), WithFinalizer(c.Finalizer)}, nil
}

type options struct {
	allocator api.Allocator
	logger    *zap.Logger
	tracker   *control.Tracker
	finalizer bool
}

func defaultOptions() options {
	return options{finalizer: true}
}

// Option customizes stream construction.
type Option func(*options)

// WithAllocator selects the allocator backing the stream.
func WithAllocator(a api.Allocator) Option {
	return func(o *options) {
		o.allocator = a
	}
}

// WithLogger overrides the package logger for one stream.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithTracker reports open/close events to t.
func WithTracker(t *control.Tracker) Option {
	return func(o *options) {
		o.tracker = t
	}
}

// WithFinalizer toggles the leak-reclaiming finalizer.
func WithFinalizer(enabled bool) Option {
	return func(o *options) {
		o.finalizer = enabled
	}
}
