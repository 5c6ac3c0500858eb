// Package coursepack builds distributable course releases from an authored
// source tree: markdown lessons transform into standalone HTML pages (or an
// e-book), media installs alongside them, and interactive projects bundle
// into zip archives, all driven by an incremental dependency graph.
package coursepack

import (
	"context"
	"time"

	"github.com/goliatone/go-coursepack/internal/graph"
	"github.com/goliatone/go-coursepack/internal/introspect"
	"github.com/goliatone/go-coursepack/internal/logging"
	"github.com/goliatone/go-coursepack/internal/packager"
	"github.com/goliatone/go-coursepack/internal/pipeline"
	"github.com/goliatone/go-coursepack/internal/runtimeconfig"
	"github.com/goliatone/go-coursepack/internal/validator"
	"github.com/goliatone/go-coursepack/pkg/interfaces"
)

// Report summarizes one build invocation.
type Report struct {
	BuildID  string
	Executed int
	Skipped  int
	Failed   int
	Duration time.Duration
}

// Option configures the build service.
type Option func(*Service)

// WithLoggerProvider routes module loggers through the given provider.
// Without it the build runs silently.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(s *Service) {
		s.provider = provider
	}
}

// WithGitRunner overrides the git invocation used by strict validation.
func WithGitRunner(runner validator.GitRunner) Option {
	return func(s *Service) {
		if runner != nil {
			s.git = runner
		}
	}
}

// WithPandocRunner overrides the pandoc invocation used by epub assembly.
func WithPandocRunner(runner packager.CommandRunner) Option {
	return func(s *Service) {
		if runner != nil {
			s.pandoc = runner
		}
	}
}

// Service runs course builds for one validated configuration.
type Service struct {
	cfg      runtimeconfig.Config
	provider interfaces.LoggerProvider
	git      validator.GitRunner
	pandoc   packager.CommandRunner
}

// New validates the configuration and returns a build service.
func New(cfg runtimeconfig.Config, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Service{
		cfg:    cfg,
		git:    validator.ExecGitRunner{},
		pandoc: packager.ExecRunner{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Build runs a full course build: discover content, optionally verify release
// tags, derive the dependency graph, and execute every stale node. The report
// is returned alongside the error when some nodes completed before a failure.
func (s *Service) Build(ctx context.Context) (*Report, error) {
	logger := logging.ModuleLogger(s.provider, "")
	started := time.Now()

	inventory, err := s.scan(ctx)
	if err != nil {
		return nil, err
	}

	if s.cfg.Flags.Strict {
		strict := validator.New(runtimeconfig.ProjectDescriptorName,
			validator.WithGitRunner(s.git),
			validator.WithLogger(logging.ValidatorLogger(s.provider)),
		)
		if err := strict.Validate(ctx, s.cfg.SourceDir); err != nil {
			return nil, err
		}
	}

	buildGraph, runner, err := s.plan(inventory)
	if err != nil {
		return nil, err
	}

	executor := graph.NewExecutor(buildGraph, runner,
		graph.WithWorkers(s.cfg.EffectiveWorkers()),
		graph.WithExecutorLogger(logging.GraphLogger(s.provider)),
	)
	result, execErr := executor.Execute(ctx)
	if result == nil {
		return nil, execErr
	}

	report := &Report{
		BuildID:  result.BuildID.String(),
		Executed: len(result.Executed),
		Skipped:  len(result.Skipped),
		Failed:   len(result.Failed),
		Duration: time.Since(started),
	}
	logger.Info("build.complete",
		"build_id", report.BuildID,
		"executed", report.Executed,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"duration_ms", report.Duration.Milliseconds(),
	)
	return report, execErr
}

func (s *Service) scan(ctx context.Context) (*introspect.Inventory, error) {
	scanner := introspect.NewScanner(
		introspect.WithLogger(logging.IntrospectLogger(s.provider)),
		introspect.WithMediaExtensions(runtimeconfig.MediaExtensions),
		introspect.WithDescriptorName(runtimeconfig.ProjectDescriptorName),
	)
	return scanner.Scan(ctx, s.cfg.SourceDir)
}

// plan wires the graph and the node runner for this invocation. Epub and
// export adapters attach only when their flags are set, so misderived nodes
// fail loudly instead of silently producing artifacts.
func (s *Service) plan(inventory *introspect.Inventory) (*graph.Graph, graph.Runner, error) {
	layout := graph.Layout{
		SourceDir: s.cfg.SourceDir,
		BuildDir:  s.cfg.BuildDir,
		DistDir:   s.cfg.DistDir,
	}

	var epub *packager.EpubPackager
	if s.cfg.Flags.Epub {
		metadata, err := packager.LocateEpubMetadata(s.cfg.SourceDir)
		if err != nil {
			return nil, nil, err
		}
		layout.EpubName, err = packager.BookFileName(metadata.MetadataPath)
		if err != nil {
			return nil, nil, err
		}
		epub = packager.NewEpubPackager(metadata, s.cfg.BuildDir, s.pandoc, logging.PackagerLogger(s.provider))
	}

	builder := graph.NewBuilder(layout, s.cfg.Flags, packager.NewDescriptorParser(),
		graph.WithLogger(logging.GraphLogger(s.provider)))
	buildGraph, err := builder.Build(inventory)
	if err != nil {
		return nil, nil, err
	}

	pipe, err := pipeline.New(pipeline.Config{
		IncludeRoots:    inventory.Directories,
		IconDir:         s.cfg.Pipeline.IconDir,
		HighlightStyle:  s.cfg.Pipeline.HighlightStyle,
		MaxIncludeDepth: s.cfg.Pipeline.MaxIncludeDepth,
	}, pipeline.WithLogger(logging.PipelineLogger(s.provider)))
	if err != nil {
		return nil, nil, err
	}

	runnerOpts := []packager.RunnerOption{
		packager.WithRunnerLogger(logging.PackagerLogger(s.provider)),
	}
	if epub != nil {
		runnerOpts = append(runnerOpts, packager.WithEpubPackager(epub))
	}
	if s.cfg.Flags.Mavenseed {
		runnerOpts = append(runnerOpts, packager.WithExporter(
			packager.NewExporter(s.cfg.BuildDir, logging.PackagerLogger(s.provider))))
	}
	runner := packager.NewNodeRunner(pipe, packager.NewConverter(), runnerOpts...)

	return buildGraph, runner, nil
}

// Build is a convenience wrapper constructing a Service and running one build.
func Build(ctx context.Context, cfg runtimeconfig.Config, opts ...Option) (*Report, error) {
	service, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return service.Build(ctx)
}
