package validator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-coursepack/internal/logging"
	"github.com/goliatone/go-coursepack/pkg/interfaces"
)

// ErrTagMismatch reports that the course root and its project repositories
// sit on different release tags.
var ErrTagMismatch = errors.New("validator: release tags differ between repositories")

// GitRunner reports the current release tag of a repository directory.
// Injectable so validation is testable without real git repositories.
type GitRunner interface {
	DescribeTags(ctx context.Context, dir string) (string, error)
}

// ExecGitRunner shells out to git describe.
type ExecGitRunner struct{}

// DescribeTags satisfies GitRunner.
func (ExecGitRunner) DescribeTags(ctx context.Context, dir string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "describe", "--tags")
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("validator: git describe in %s: %w: %s", dir, err, strings.TrimSpace(string(out)))
	}
	return strings.TrimSpace(string(out)), nil
}

// StrictValidator verifies that every repository feeding a release build is
// tagged identically, so a course never ships content and projects from
// different versions. It runs before any graph node executes.
type StrictValidator struct {
	descriptorName string
	git            GitRunner
	logger         interfaces.Logger
}

// Option mutates StrictValidator construction.
type Option func(*StrictValidator)

// WithGitRunner overrides the git invocation.
func WithGitRunner(runner GitRunner) Option {
	return func(v *StrictValidator) {
		if runner != nil {
			v.git = runner
		}
	}
}

// WithLogger attaches a logger. Defaults to no-op.
func WithLogger(logger interfaces.Logger) Option {
	return func(v *StrictValidator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// New constructs a strict validator that recognizes project directories by
// the given descriptor file name.
func New(descriptorName string, opts ...Option) *StrictValidator {
	v := &StrictValidator{
		descriptorName: descriptorName,
		git:            ExecGitRunner{},
		logger:         logging.NoOp(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate collects the release tag of the source root and of every directory
// holding a project descriptor beneath it. All tags must match; the error
// lists every repository and its tag otherwise.
func (v *StrictValidator) Validate(ctx context.Context, sourceDir string) error {
	dirs, err := v.projectDirs(sourceDir)
	if err != nil {
		return err
	}
	dirs = append(dirs, sourceDir)
	sort.Strings(dirs)

	tags := make(map[string]string, len(dirs))
	distinct := map[string]struct{}{}
	for _, dir := range dirs {
		tag, err := v.git.DescribeTags(ctx, dir)
		if err != nil {
			return err
		}
		tags[dir] = tag
		distinct[tag] = struct{}{}
	}

	if len(distinct) <= 1 {
		v.logger.Debug("validator.tags.match", "repositories", len(dirs))
		return nil
	}

	var report strings.Builder
	for _, dir := range dirs {
		fmt.Fprintf(&report, "\n  %s: %s", dir, tags[dir])
	}
	return fmt.Errorf("%w:%s", ErrTagMismatch, report.String())
}

// projectDirs returns every directory under root containing a descriptor.
func (v *StrictValidator) projectDirs(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == v.descriptorName {
			dirs = append(dirs, filepath.Dir(path))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("validator: scan projects: %w", err)
	}
	return dirs, nil
}
