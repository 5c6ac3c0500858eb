package packager

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-coursepack/internal/graph"
	"github.com/goliatone/go-coursepack/internal/logging"
	"github.com/goliatone/go-coursepack/pkg/interfaces"
)

var (
	// ErrEpubMetadataMissing reports a missing epub_metadata/metadata.txt.
	ErrEpubMetadataMissing = errors.New("packager: epub_metadata/metadata.txt not found")
	// ErrEpubCoverMissing reports a missing epub_metadata/cover.png.
	ErrEpubCoverMissing = errors.New("packager: epub_metadata/cover.png not found")
	// ErrEpubTitleMissing reports a metadata file without a title entry.
	ErrEpubTitleMissing = errors.New("packager: epub metadata has no title entry")
)

const (
	epubMetadataDir  = "epub_metadata"
	epubMetadataFile = "metadata.txt"
	epubCoverFile    = "cover.png"
	epubTitlePrefix  = "title: "
)

// EpubMetadata locates the e-book settings shipped with a course.
type EpubMetadata struct {
	MetadataPath string
	CoverPath    string
}

// LocateEpubMetadata verifies the course ships the required e-book settings
// and returns their paths. Both files must exist under epub_metadata at the
// source root.
func LocateEpubMetadata(sourceDir string) (EpubMetadata, error) {
	metadata := filepath.Join(sourceDir, epubMetadataDir, epubMetadataFile)
	if _, err := os.Stat(metadata); err != nil {
		return EpubMetadata{}, fmt.Errorf("%w: %s", ErrEpubMetadataMissing, metadata)
	}
	cover := filepath.Join(sourceDir, epubMetadataDir, epubCoverFile)
	if _, err := os.Stat(cover); err != nil {
		return EpubMetadata{}, fmt.Errorf("%w: %s", ErrEpubCoverMissing, cover)
	}
	return EpubMetadata{MetadataPath: metadata, CoverPath: cover}, nil
}

// BookFileName reads the title from the metadata file and returns the e-book
// file name, keeping alphanumeric characters only.
func BookFileName(metadataPath string) (string, error) {
	file, err := os.Open(metadataPath)
	if err != nil {
		return "", fmt.Errorf("packager: open epub metadata: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, epubTitlePrefix) {
			continue
		}
		title := strings.TrimPrefix(line, epubTitlePrefix)
		var name strings.Builder
		for _, r := range title {
			if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
				name.WriteRune(r)
			}
		}
		if name.Len() == 0 {
			return "", ErrEpubTitleMissing
		}
		return name.String() + ".epub", nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("packager: read epub metadata: %w", err)
	}
	return "", ErrEpubTitleMissing
}

// EpubPackager assembles the course e-book by shelling out to pandoc over the
// transformed markdown working copies in staging.
type EpubPackager struct {
	metadata EpubMetadata
	buildDir string
	// Optional syntax definition and highlight theme files forwarded to
	// pandoc when set.
	SyntaxDefinition string
	HighlightTheme   string

	runner CommandRunner
	logger interfaces.Logger
}

// NewEpubPackager constructs an e-book packager rooted at buildDir.
func NewEpubPackager(metadata EpubMetadata, buildDir string, runner CommandRunner, logger interfaces.Logger) *EpubPackager {
	if runner == nil {
		runner = ExecRunner{}
	}
	if logger == nil {
		logger = logging.NoOp()
	}
	return &EpubPackager{
		metadata: metadata,
		buildDir: buildDir,
		runner:   runner,
		logger:   logger,
	}
}

// Package builds node.Target from the node's working-copy sources.
func (p *EpubPackager) Package(ctx context.Context, node *graph.Node) error {
	if err := os.MkdirAll(filepath.Dir(node.Target), 0o755); err != nil {
		return fmt.Errorf("packager: epub output dir: %w", err)
	}

	args := []string{"-o", node.Target, p.metadata.MetadataPath}
	for _, source := range node.Sources {
		rel, err := filepath.Rel(p.buildDir, source)
		if err != nil {
			rel = source
		}
		args = append(args, rel)
	}
	args = append(args, "--toc", "--epub-cover-image", p.metadata.CoverPath)
	if p.SyntaxDefinition != "" {
		args = append(args, "--syntax-definition", p.SyntaxDefinition)
	}
	if p.HighlightTheme != "" {
		args = append(args, "--highlight-style", p.HighlightTheme)
	}

	p.logger.Debug("packager.epub.start", "target", node.Target, "sources", len(node.Sources))
	if _, err := p.runner.Run(ctx, p.buildDir, "pandoc", args...); err != nil {
		return err
	}
	p.logger.Info("packager.epub.complete", "target", node.Target)
	return nil
}
