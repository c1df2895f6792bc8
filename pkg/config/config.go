// Package config loads the engine settings from defaults, an optional
// YAML file and ALPHABETA_* environment variables, in increasing order of
// precedence. Explicit overrides win over everything.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/IlikeChooros/go-alphabeta/pkg/search"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const EnvPrefix = "alphabeta"

// Config keys
const (
	KeyMaxActions      = "max-actions"
	KeyInitialDepth    = "initial-depth"
	KeyMaxExplorations = "max-explorations"
	KeyDepth           = "depth"
	KeyMovetime        = "movetime"
	KeyNodes           = "nodes"
	KeyThreads         = "threads"
	KeyLogLevel        = "log-level"
)

var ErrInvalidSettings = errors.New("invalid settings")

type Settings struct {
	// Capacity of the results buffer
	MaxActions      int `mapstructure:"max-actions" yaml:"max-actions"`
	InitialDepth    int `mapstructure:"initial-depth" yaml:"initial-depth"`
	MaxExplorations int `mapstructure:"max-explorations" yaml:"max-explorations"`
	// 0 means no depth limit
	Depth int `mapstructure:"depth" yaml:"depth"`
	// In milliseconds, negative means no time limit
	Movetime int `mapstructure:"movetime" yaml:"movetime"`
	// 0 means no node limit
	Nodes    uint64 `mapstructure:"nodes" yaml:"nodes"`
	Threads  int    `mapstructure:"threads" yaml:"threads"`
	LogLevel string `mapstructure:"log-level" yaml:"log-level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyMaxActions, search.DefaultMaxActions)
	v.SetDefault(KeyInitialDepth, search.DefaultInitialDepth)
	v.SetDefault(KeyMaxExplorations, search.UnlimitedExplorations)
	v.SetDefault(KeyDepth, 0)
	v.SetDefault(KeyMovetime, search.DefaultMovetimeLimit)
	v.SetDefault(KeyNodes, 0)
	v.SetDefault(KeyThreads, 0)
	v.SetDefault(KeyLogLevel, "info")
}

type loader struct {
	defaults  map[string]any
	overrides map[string]any
}

type Option func(*loader)

// Replace the built-in defaults of the given keys, used by the applications
// with different needs (e.g. a bigger results buffer)
func WithDefaults(values map[string]any) Option {
	return func(l *loader) {
		l.defaults = values
	}
}

// Values taking precedence over the file and the environment, usually
// the command line flags
func WithOverrides(values map[string]any) Option {
	return func(l *loader) {
		l.overrides = values
	}
}

// Load the settings. 'path' may be empty, then only the defaults and the environment
// are used.
func Load(path string, opts ...Option) (*Settings, error) {
	l := &loader{}
	for _, opt := range opts {
		opt(l)
	}

	v := viper.New()
	setDefaults(v)
	for key, value := range l.defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %q: %w", path, err)
		}
	}

	for key, value := range l.overrides {
		v.Set(key, value)
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *Settings) Validate() error {
	if s.MaxActions <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidSettings, KeyMaxActions, s.MaxActions)
	}
	if s.InitialDepth < 1 {
		return fmt.Errorf("%w: %s must be at least 1, got %d", ErrInvalidSettings, KeyInitialDepth, s.InitialDepth)
	}
	if s.MaxExplorations < 0 || s.Depth < 0 || s.Threads < 0 {
		return fmt.Errorf("%w: negative %s, %s or %s", ErrInvalidSettings, KeyMaxExplorations, KeyDepth, KeyThreads)
	}
	if _, err := zerolog.ParseLevel(s.LogLevel); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidSettings, KeyLogLevel, err)
	}
	return nil
}

// Search limits described by these settings
func (s *Settings) Limits() *search.Limits {
	limits := search.DefaultLimits()
	if s.Depth > 0 {
		limits.SetDepth(s.Depth)
	}
	if s.Nodes > 0 {
		limits.SetNodes(s.Nodes)
	}
	if s.Movetime >= 0 {
		limits.SetMovetime(s.Movetime)
	}
	if s.Threads > 0 {
		limits.SetThreads(s.Threads)
	}
	return limits
}

// Set the global zerolog level
func (s *Settings) ConfigureLogging() error {
	level, err := zerolog.ParseLevel(s.LogLevel)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidSettings, KeyLogLevel, err)
	}
	zerolog.SetGlobalLevel(level)
	return nil
}

// Apply the limits and the deepening parameters to the search
func Apply[S search.State[A, S], A any, V any, F any, P any](s *Settings, engine *search.Search[S, A, V, F, P]) {
	engine.SetLimits(s.Limits())
	engine.SetInitialDepth(s.InitialDepth)
	engine.SetMaxExplorations(s.MaxExplorations)
}
