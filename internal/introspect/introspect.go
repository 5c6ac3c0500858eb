package introspect

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-coursepack/internal/logging"
	"github.com/goliatone/go-coursepack/internal/runtimeconfig"
	"github.com/goliatone/go-coursepack/pkg/interfaces"
)

// ErrContentDirMissing indicates the source tree has no content folder. This
// is a fatal precondition: no build node is scheduled when it is returned.
var ErrContentDirMissing = errors.New("introspect: source tree has no content directory")

// ContentDirName is the folder under the source root that owns all course material.
const ContentDirName = "content"

// Inventory holds the classified source files discovered under a content tree.
// The three slices are disjoint, deduplicated, and sorted lexically so callers
// can rely on a stable iteration order.
type Inventory struct {
	// Media lists image, video and audio files.
	Media []string
	// Documents lists markdown lesson files.
	Documents []string
	// Descriptors lists interactive project descriptor files, one per project.
	Descriptors []string
	// Directories lists the content directories the files were found in.
	Directories []string
}

// Scanner walks a source tree and classifies its files by category.
type Scanner struct {
	mediaExts  map[string]struct{}
	descriptor string
	logger     interfaces.Logger
}

// Option mutates Scanner construction.
type Option func(*Scanner)

// WithLogger attaches a logger to the scanner. Defaults to no-op.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMediaExtensions overrides the media extension allow-list.
func WithMediaExtensions(exts []string) Option {
	return func(s *Scanner) {
		if len(exts) == 0 {
			return
		}
		s.mediaExts = make(map[string]struct{}, len(exts))
		for _, ext := range exts {
			s.mediaExts[strings.ToLower(ext)] = struct{}{}
		}
	}
}

// WithDescriptorName overrides the fixed project descriptor filename.
func WithDescriptorName(name string) Option {
	return func(s *Scanner) {
		if strings.TrimSpace(name) != "" {
			s.descriptor = name
		}
	}
}

// NewScanner constructs a scanner with the default allow-lists.
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		mediaExts:  make(map[string]struct{}, len(runtimeconfig.MediaExtensions)),
		descriptor: runtimeconfig.ProjectDescriptorName,
		logger:     logging.NoOp(),
	}
	for _, ext := range runtimeconfig.MediaExtensions {
		s.mediaExts[ext] = struct{}{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan enumerates the content directories under root and classifies every
// regular file inside them. The traversal is read-only; a missing content
// folder surfaces ErrContentDirMissing to the caller.
func (s *Scanner) Scan(ctx context.Context, root string) (*Inventory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	contentDir := filepath.Join(root, ContentDirName)
	info, err := os.Stat(contentDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrContentDirMissing, contentDir)
	}

	entries, err := os.ReadDir(contentDir)
	if err != nil {
		return nil, fmt.Errorf("introspect: read content directory %s: %w", contentDir, err)
	}

	inv := &Inventory{}
	seen := map[string]struct{}{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(contentDir, entry.Name())
		inv.Directories = append(inv.Directories, dir)
		if err := s.scanDirectory(ctx, dir, inv, seen); err != nil {
			return nil, err
		}
	}

	sort.Strings(inv.Media)
	sort.Strings(inv.Documents)
	sort.Strings(inv.Descriptors)
	sort.Strings(inv.Directories)

	s.logger.Debug("introspect.scan.complete",
		"directories", len(inv.Directories),
		"media", len(inv.Media),
		"documents", len(inv.Documents),
		"projects", len(inv.Descriptors),
	)
	return inv, nil
}

func (s *Scanner) scanDirectory(ctx context.Context, dir string, inv *Inventory, seen map[string]struct{}) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("introspect: walk %s: %w", path, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		// Dangling symlinks stat to nothing; skip them rather than fail.
		if d.Type()&fs.ModeSymlink != 0 {
			if _, statErr := os.Stat(path); statErr != nil {
				s.logger.Warn("introspect.skip.dangling_symlink", "path", path)
				return nil
			}
		}
		if _, dup := seen[path]; dup {
			return nil
		}
		seen[path] = struct{}{}

		switch s.classify(path) {
		case categoryMedia:
			inv.Media = append(inv.Media, path)
		case categoryDocument:
			inv.Documents = append(inv.Documents, path)
		case categoryDescriptor:
			inv.Descriptors = append(inv.Descriptors, path)
		}
		return nil
	})
}

type category int

const (
	categoryNone category = iota
	categoryMedia
	categoryDocument
	categoryDescriptor
)

func (s *Scanner) classify(path string) category {
	name := filepath.Base(path)
	if name == s.descriptor {
		return categoryDescriptor
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".md" {
		return categoryDocument
	}
	if _, ok := s.mediaExts[ext]; ok {
		return categoryMedia
	}
	return categoryNone
}

// ProjectSkipDirs lists directories excluded from interactive-project
// handling: version control and engine caches carry no value for learners and
// churn on every editor launch.
var ProjectSkipDirs = map[string]struct{}{
	".git":    {},
	".import": {},
	".godot":  {},
}

// ProjectFiles enumerates the regular files of an interactive project
// directory, skipping ProjectSkipDirs, sorted lexically. The result is the
// archivable file set, which doubles as the staleness input for the project's
// zip artifact.
func ProjectFiles(projectDir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(projectDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("introspect: walk project %s: %w", path, err)
		}
		if d.IsDir() {
			if _, skip := ProjectSkipDirs[d.Name()]; skip {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// ContentDirectoryOf returns the content directory a file belongs to, given
// the source root, or an empty string when the file is outside the content tree.
func ContentDirectoryOf(root, path string) string {
	contentDir := filepath.Join(root, ContentDirName)
	rel, err := filepath.Rel(contentDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ""
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 {
		return ""
	}
	return filepath.Join(contentDir, parts[0])
}
