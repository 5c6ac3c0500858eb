package coursepack

import "github.com/goliatone/go-coursepack/internal/runtimeconfig"

// Config is the immutable build configuration, assembled once per invocation.
type Config = runtimeconfig.Config

// Flags mirrors the build invocation switches.
type Flags = runtimeconfig.Flags

// PipelineConfig carries the transformation stage options.
type PipelineConfig = runtimeconfig.PipelineConfig

// LoggingConfig configures the logging provider.
type LoggingConfig = runtimeconfig.LoggingConfig

// DefaultConfig returns the baseline configuration.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
