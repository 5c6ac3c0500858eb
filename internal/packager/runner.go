package packager

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goliatone/go-coursepack/internal/graph"
	"github.com/goliatone/go-coursepack/internal/logging"
	"github.com/goliatone/go-coursepack/internal/pipeline"
	"github.com/goliatone/go-coursepack/pkg/interfaces"
)

// NodeRunner dispatches graph nodes to the packager that knows how to build
// them. It is the single graph.Runner for a course build.
type NodeRunner struct {
	pipeline  *pipeline.Pipeline
	converter *Converter
	epub      *EpubPackager
	exporter  *Exporter
	logger    interfaces.Logger
}

// RunnerOption mutates NodeRunner construction.
type RunnerOption func(*NodeRunner)

// WithEpubPackager enables e-book nodes.
func WithEpubPackager(p *EpubPackager) RunnerOption {
	return func(r *NodeRunner) { r.epub = p }
}

// WithExporter enables learning-platform export nodes.
func WithExporter(e *Exporter) RunnerOption {
	return func(r *NodeRunner) { r.exporter = e }
}

// WithRunnerLogger attaches a logger. Defaults to no-op.
func WithRunnerLogger(logger interfaces.Logger) RunnerOption {
	return func(r *NodeRunner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewNodeRunner constructs a runner over the given transformation pipeline and
// HTML converter.
func NewNodeRunner(pipe *pipeline.Pipeline, converter *Converter, opts ...RunnerOption) *NodeRunner {
	r := &NodeRunner{
		pipeline:  pipe,
		converter: converter,
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ graph.Runner = (*NodeRunner)(nil)

// Run executes a single node.
func (r *NodeRunner) Run(ctx context.Context, node *graph.Node) error {
	switch node.Action {
	case graph.ActionInstall:
		return r.install(node)
	case graph.ActionTransform:
		return r.transform(ctx, node)
	case graph.ActionConvert:
		return r.convert(node)
	case graph.ActionPackage:
		return r.packageProject(node)
	case graph.ActionExport:
		if r.exporter == nil {
			return fmt.Errorf("packager: export node %s without an exporter", node.Target)
		}
		return r.exporter.Export(node)
	case graph.ActionEpub:
		if r.epub == nil {
			return fmt.Errorf("packager: epub node %s without an epub packager", node.Target)
		}
		return r.epub.Package(ctx, node)
	default:
		return fmt.Errorf("packager: unsupported action %s for %s", node.Action, node.Target)
	}
}

// transform runs the markdown pipeline over the authored document and writes
// the result to the staging working copy. The authored file is never touched.
// An empty source is a soft condition: a warning, then an empty working copy.
func (r *NodeRunner) transform(ctx context.Context, node *graph.Node) error {
	source := node.Sources[0]
	raw, err := os.ReadFile(source)
	if err != nil {
		return fmt.Errorf("packager: read document: %w", err)
	}
	if len(raw) == 0 {
		logging.WithDocumentContext(r.logger, source, "transform").Warn("packager.document.empty")
	}

	doc, err := r.pipeline.Run(ctx, pipeline.Document{Path: source, Text: string(raw)})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(node.Target), 0o755); err != nil {
		return fmt.Errorf("packager: staging dir: %w", err)
	}
	return os.WriteFile(node.Target, []byte(doc.Text), 0o644)
}

// convert renders the transformed working copy as a standalone HTML page.
func (r *NodeRunner) convert(node *graph.Node) error {
	source := node.Sources[0]
	text, err := os.ReadFile(source)
	if err != nil {
		return fmt.Errorf("packager: read working copy: %w", err)
	}

	page, err := r.converter.Convert(source, text)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(node.Target), 0o755); err != nil {
		return fmt.Errorf("packager: staging dir: %w", err)
	}
	return os.WriteFile(node.Target, page, 0o644)
}

// install copies the node's source file to its target.
func (r *NodeRunner) install(node *graph.Node) error {
	if err := os.MkdirAll(filepath.Dir(node.Target), 0o755); err != nil {
		return fmt.Errorf("packager: install dir: %w", err)
	}

	in, err := os.Open(node.Sources[0])
	if err != nil {
		return fmt.Errorf("packager: open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(node.Target)
	if err != nil {
		return fmt.Errorf("packager: create target: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("packager: install %s: %w", node.Target, err)
	}
	return out.Close()
}

// packageProject zips the directory containing the node's descriptor.
func (r *NodeRunner) packageProject(node *graph.Node) error {
	projectDir := filepath.Dir(node.Sources[0])
	r.logger.Info("packager.project.bundle", "project", projectDir, "target", node.Target)
	return ArchiveProject(projectDir, node.Target)
}
