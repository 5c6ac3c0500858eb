package runtimeconfig

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrSourceDirRequired indicates the build was configured without a source tree.
var ErrSourceDirRequired = errors.New("coursepack config: source directory is required")

// ErrBuildDirRequired indicates the staging directory is missing from the configuration.
var ErrBuildDirRequired = errors.New("coursepack config: build (staging) directory is required")

// ErrDistDirRequired indicates the distribution directory is missing from the configuration.
var ErrDistDirRequired = errors.New("coursepack config: distribution directory is required")

// ErrDirsOverlap indicates staging and distribution resolve to the same path.
var ErrDirsOverlap = errors.New("coursepack config: build and distribution directories must differ")

// ErrWorkersInvalid indicates a non-positive worker count.
var ErrWorkersInvalid = errors.New("coursepack config: workers must be zero or positive")

var ErrLoggingLevelInvalid = errors.New("coursepack config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("coursepack config: logging format is invalid")

// Config aggregates every option for one build invocation. It is constructed
// once at startup and passed by value to each component; no component reads
// ambient process-wide state.
type Config struct {
	// SourceDir is the root of the authored course; it must contain a
	// "content" folder to be buildable.
	SourceDir string
	// BuildDir is the staging directory that receives working copies and
	// converted artifacts before promotion.
	BuildDir string
	// DistDir receives the promoted final artifacts.
	DistDir string

	Flags    Flags
	Pipeline PipelineConfig
	Logging  LoggingConfig

	// Workers bounds build graph parallelism. Zero selects GOMAXPROCS.
	Workers int
}

// Flags mirrors the build invocation switches.
type Flags struct {
	// Strict enables the pre-build release tag validator.
	Strict bool
	// Epub produces an e-book bundle instead of an HTML tree.
	Epub bool
	// Mavenseed additionally produces learning-platform export bundles.
	Mavenseed bool
}

// PipelineConfig carries the transformation stage options.
type PipelineConfig struct {
	// IconDir is the path prefix written into icon image tags.
	IconDir string
	// HighlightStyle selects the chroma style used for fenced code blocks.
	HighlightStyle string
	// MaxIncludeDepth bounds nested include expansion before the pipeline
	// reports a cycle.
	MaxIncludeDepth int
}

// LoggingConfig configures the go-logger provider.
type LoggingConfig struct {
	Level  string
	Format string
}

// MediaExtensions lists the file suffixes classified as media content.
var MediaExtensions = []string{
	".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp",
	".mp4", ".webm", ".ogv", ".mp3", ".wav", ".ogg",
}

// ProjectDescriptorName is the fixed filename that marks a directory as an
// interactive project.
const ProjectDescriptorName = "project.godot"

// DefaultConfig returns the baseline configuration used when the host
// application does not override options.
func DefaultConfig() Config {
	return Config{
		BuildDir: "build",
		DistDir:  "dist",
		Pipeline: PipelineConfig{
			IconDir:         "icons",
			HighlightStyle:  "monokai",
			MaxIncludeDepth: 16,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.SourceDir) == "" {
		return ErrSourceDirRequired
	}
	if strings.TrimSpace(cfg.BuildDir) == "" {
		return ErrBuildDirRequired
	}
	if strings.TrimSpace(cfg.DistDir) == "" {
		return ErrDistDirRequired
	}
	if strings.TrimSpace(cfg.BuildDir) == strings.TrimSpace(cfg.DistDir) {
		return ErrDirsOverlap
	}
	if cfg.Workers < 0 {
		return ErrWorkersInvalid
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
		return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
	}
	return nil
}

// EffectiveWorkers resolves the worker count, defaulting to the number of CPUs.
func (cfg Config) EffectiveWorkers() int {
	if cfg.Workers > 0 {
		return cfg.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
