package graph

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-coursepack/internal/introspect"
	"github.com/goliatone/go-coursepack/internal/logging"
	"github.com/goliatone/go-coursepack/internal/runtimeconfig"
	"github.com/goliatone/go-coursepack/pkg/interfaces"
)

// Layout describes where artifacts are read from and written to for one
// build invocation.
type Layout struct {
	// SourceDir is the course root containing the content folder.
	SourceDir string
	// BuildDir is the staging directory.
	BuildDir string
	// DistDir is the final distribution directory.
	DistDir string
	// EpubName is the resolved e-book file name, required when the epub flag
	// is set.
	EpubName string
}

// ExportSubdir is the distribution subdirectory receiving learning-platform
// export bundles.
const ExportSubdir = "mavenseed"

// DescriptorParser resolves an interactive project's name from its descriptor
// file. Implemented by the packager; injected so graph construction can fail
// fast on a nameless descriptor without knowing the descriptor format.
type DescriptorParser interface {
	ProjectName(path string) (string, error)
}

// Builder derives the build graph from a classified source inventory.
type Builder struct {
	layout      Layout
	flags       runtimeconfig.Flags
	descriptors DescriptorParser
	logger      interfaces.Logger
}

// BuilderOption mutates Builder construction.
type BuilderOption func(*Builder)

// WithLogger attaches a logger to the builder. Defaults to no-op.
func WithLogger(logger interfaces.Logger) BuilderOption {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBuilder constructs a graph builder.
func NewBuilder(layout Layout, flags runtimeconfig.Flags, descriptors DescriptorParser, opts ...BuilderOption) *Builder {
	b := &Builder{
		layout:      layout,
		flags:       flags,
		descriptors: descriptors,
		logger:      logging.NoOp(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build constructs the node set for the inventory:
//
//   - media files install into staging and promote to distribution,
//   - markdown documents transform into a staging working copy, convert to a
//     staging HTML page, then promote (HTML mode) or feed the epub node from
//     the working copies (epub mode), plus an export node per document when
//     the platform export flag is set,
//   - each project descriptor packages its directory into a named zip.
//
// Every transform node also receives the full media set as a coarse
// dependency: a document may reference any media file, so any media edit
// invalidates all documents. Export nodes receive the full staging HTML set
// the same way, because a lesson's cross-document links resolve against the
// other rendered pages. Tracking per-document references would tighten both
// but is out of scope.
func (b *Builder) Build(inv *introspect.Inventory) (*Graph, error) {
	g := New()

	for _, media := range inv.Media {
		staging, dist, err := b.targetPaths(media)
		if err != nil {
			return nil, err
		}
		if err := g.Add(&Node{Target: staging, Sources: []string{media}, Action: ActionInstall}); err != nil {
			return nil, err
		}
		if err := g.Add(&Node{Target: dist, Sources: []string{staging}, Action: ActionInstall}); err != nil {
			return nil, err
		}
	}

	var workingCopies, htmlTargets, exportTargets []string
	for _, doc := range inv.Documents {
		staging, dist, err := b.targetPaths(doc)
		if err != nil {
			return nil, err
		}
		htmlStaging := swapExtension(staging, ".html")
		htmlDist := swapExtension(dist, ".html")

		if err := g.Add(&Node{Target: staging, Sources: []string{doc}, Action: ActionTransform}); err != nil {
			return nil, err
		}
		workingCopies = append(workingCopies, staging)

		if err := g.Add(&Node{Target: htmlStaging, Sources: []string{staging}, Action: ActionConvert}); err != nil {
			return nil, err
		}
		htmlTargets = append(htmlTargets, htmlStaging)

		if !b.flags.Epub {
			if err := g.Add(&Node{Target: htmlDist, Sources: []string{htmlStaging}, Action: ActionInstall}); err != nil {
				return nil, err
			}
		}
		if b.flags.Mavenseed {
			rel, err := b.contentRelative(doc)
			if err != nil {
				return nil, err
			}
			export := filepath.Join(b.layout.DistDir, ExportSubdir, swapExtension(rel, ".html"))
			if err := g.Add(&Node{Target: export, Sources: []string{htmlStaging}, Action: ActionExport}); err != nil {
				return nil, err
			}
			exportTargets = append(exportTargets, export)
		}
	}

	// Coarse media dependency for every transform node.
	if len(inv.Media) > 0 {
		for _, target := range workingCopies {
			if err := g.DependOn(target, inv.Media...); err != nil {
				return nil, err
			}
		}
	}

	// Coarse page dependency for every export node: link rewriting reads the
	// other documents' rendered pages, so an export may not run before the
	// whole staging HTML set is current.
	for _, target := range exportTargets {
		if err := g.DependOn(target, htmlTargets...); err != nil {
			return nil, err
		}
	}

	if b.flags.Epub && len(workingCopies) > 0 {
		target := filepath.Join(b.layout.DistDir, b.layout.EpubName)
		if err := g.Add(&Node{Target: target, Sources: workingCopies, Action: ActionEpub}); err != nil {
			return nil, err
		}
	}

	for _, descriptor := range inv.Descriptors {
		name, err := b.descriptors.ProjectName(descriptor)
		if err != nil {
			return nil, fmt.Errorf("graph: descriptor %s: %w", descriptor, err)
		}
		sources, err := projectSources(descriptor)
		if err != nil {
			return nil, err
		}
		target := filepath.Join(b.layout.DistDir, name+".zip")
		if err := g.Add(&Node{Target: target, Sources: sources, Action: ActionPackage}); err != nil {
			return nil, err
		}
	}

	b.logger.Debug("graph.build.complete", "nodes", g.Len())
	return g, nil
}

// projectSources enumerates a package node's inputs: the descriptor first,
// then every other archivable file in the project directory, so editing any
// project file marks the zip stale.
func projectSources(descriptor string) ([]string, error) {
	files, err := introspect.ProjectFiles(filepath.Dir(descriptor))
	if err != nil {
		return nil, fmt.Errorf("graph: enumerate project %s: %w", filepath.Dir(descriptor), err)
	}
	sources := []string{descriptor}
	for _, file := range files {
		if file != descriptor {
			sources = append(sources, file)
		}
	}
	return sources, nil
}

// contentRelative rebases a source path onto the content folder.
func (b *Builder) contentRelative(path string) (string, error) {
	contentDir := filepath.Join(b.layout.SourceDir, introspect.ContentDirName)
	rel, err := filepath.Rel(contentDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("graph: %s is outside the content tree", path)
	}
	return rel, nil
}

func (b *Builder) targetPaths(source string) (staging string, dist string, err error) {
	rel, err := b.contentRelative(source)
	if err != nil {
		return "", "", err
	}
	return filepath.Join(b.layout.BuildDir, rel), filepath.Join(b.layout.DistDir, rel), nil
}

func swapExtension(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
