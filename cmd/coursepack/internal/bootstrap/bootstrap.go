package bootstrap

import (
	"fmt"
	"strings"

	coursepack "github.com/goliatone/go-coursepack"
	"github.com/goliatone/go-coursepack/internal/logging"
	"github.com/goliatone/go-coursepack/internal/logging/gologger"
	"github.com/goliatone/go-coursepack/pkg/interfaces"
)

// Options captures the CLI configuration for a build invocation.
type Options struct {
	Source    string
	BuildDir  string
	DistDir   string
	Strict    bool
	Epub      bool
	Mavenseed bool
	Workers   int
	LogLevel  string
	LogFormat string
}

// Module wraps the configured build service and its logger.
type Module struct {
	Service  *coursepack.Service
	Config   coursepack.Config
	Provider interfaces.LoggerProvider
	Logger   interfaces.Logger
}

// BuildModule assembles a build service from CLI options.
func BuildModule(opts Options) (*Module, error) {
	cfg := coursepack.DefaultConfig()
	cfg.SourceDir = strings.TrimSpace(opts.Source)
	if dir := strings.TrimSpace(opts.BuildDir); dir != "" {
		cfg.BuildDir = dir
	}
	if dir := strings.TrimSpace(opts.DistDir); dir != "" {
		cfg.DistDir = dir
	}
	cfg.Flags = coursepack.Flags{
		Strict:    opts.Strict,
		Epub:      opts.Epub,
		Mavenseed: opts.Mavenseed,
	}
	cfg.Workers = opts.Workers
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		cfg.Logging.Level = level
	}
	if format := strings.TrimSpace(opts.LogFormat); format != "" {
		cfg.Logging.Format = format
	}

	provider, err := gologger.NewProvider(gologger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("initialise logging: %w", err)
	}

	service, err := coursepack.New(cfg, coursepack.WithLoggerProvider(provider))
	if err != nil {
		return nil, err
	}

	return &Module{
		Service:  service,
		Config:   cfg,
		Provider: provider,
		Logger:   logging.ModuleLogger(provider, ""),
	}, nil
}
