package pipeline

import (
	"context"
	"fmt"

	"github.com/goliatone/go-coursepack/internal/logging"
	"github.com/goliatone/go-coursepack/pkg/interfaces"
)

// Document is the unit of work flowing through the pipeline: one markdown
// file's full text plus the path it was read from. Stages rewrite Text in
// sequence; the source file itself is never touched.
type Document struct {
	Path string
	Text string
}

// Stage is one rewrite applied to a document. Implementations must be
// deterministic for a given (text, path) pair and, with the documented
// exception of include expansion, idempotent on their own output.
type Stage interface {
	Name() string
	Apply(ctx context.Context, doc *Document) error
}

// Config carries the stage options for one build invocation.
type Config struct {
	// IncludeRoots lists the directories searched when an include directive
	// references a file by bare name.
	IncludeRoots []string
	// IconDir is the path prefix written into icon image tags.
	IconDir string
	// IconClasses overrides the built-in class name allow-list when non-empty.
	IconClasses []string
	// HighlightStyle selects the chroma style for fenced code blocks.
	HighlightStyle string
	// MaxIncludeDepth bounds nested include expansion.
	MaxIncludeDepth int
}

// Pipeline applies the fixed transformation chain to markdown documents. The
// stage order is not configurable: include expansion must run before the TOC
// scan so included headings are listed, and highlighting must run last so no
// earlier stage sees generated HTML.
type Pipeline struct {
	stages []Stage
	logger interfaces.Logger
}

// Option mutates Pipeline construction.
type Option func(*Pipeline)

// WithLogger attaches a logger to the pipeline. Defaults to no-op.
func WithLogger(logger interfaces.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New constructs the five-stage pipeline. The snippet resolver scans the
// include roots once so repeated documents share the lookup table.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	resolver, err := NewSnippetResolver(cfg.IncludeRoots)
	if err != nil {
		return nil, err
	}

	depth := cfg.MaxIncludeDepth
	if depth <= 0 {
		depth = defaultMaxIncludeDepth
	}

	p := &Pipeline{
		stages: []Stage{
			&IncludeStage{Resolver: resolver, MaxDepth: depth},
			&LinkStage{},
			&TOCStage{},
			NewIconStage(cfg.IconDir, cfg.IconClasses),
			NewHighlightStage(cfg.HighlightStyle),
		},
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Stages exposes the ordered stage names, mostly for diagnostics.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, stage := range p.stages {
		names[i] = stage.Name()
	}
	return names
}

// Run transforms a single document and returns the rewritten text. The input
// document is not mutated; a failed stage surfaces its error annotated with
// the stage name and document path.
func (p *Pipeline) Run(ctx context.Context, doc Document) (Document, error) {
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return doc, err
		}
		if err := stage.Apply(ctx, &doc); err != nil {
			return doc, fmt.Errorf("pipeline stage %s on %s: %w", stage.Name(), doc.Path, err)
		}
		logging.WithDocumentContext(p.logger, doc.Path, stage.Name()).Trace("pipeline.stage.complete")
	}
	return doc, nil
}
