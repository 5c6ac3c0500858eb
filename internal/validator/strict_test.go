package validator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeGit struct {
	tags map[string]string
	err  error
}

func (f *fakeGit) DescribeTags(_ context.Context, dir string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if tag, ok := f.tags[dir]; ok {
		return tag, nil
	}
	return "", errors.New("fatal: no names found")
}

func scaffoldCourse(t *testing.T) (root string, projects []string) {
	t.Helper()
	root = t.TempDir()
	for _, rel := range []string{"content/intro/maze-project", "content/final/boss-project"} {
		dir := filepath.Join(root, rel)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "project.godot"), []byte("config/name=\"X\"\n"), 0o644); err != nil {
			t.Fatalf("write descriptor: %v", err)
		}
		projects = append(projects, dir)
	}
	return root, projects
}

func TestValidateMatchingTags(t *testing.T) {
	root, projects := scaffoldCourse(t)
	git := &fakeGit{tags: map[string]string{
		root:        "v1.2.0",
		projects[0]: "v1.2.0",
		projects[1]: "v1.2.0",
	}}

	v := New("project.godot", WithGitRunner(git))
	if err := v.Validate(context.Background(), root); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateMismatchedTagsListsRepositories(t *testing.T) {
	root, projects := scaffoldCourse(t)
	git := &fakeGit{tags: map[string]string{
		root:        "v1.2.0",
		projects[0]: "v1.2.0",
		projects[1]: "v1.1.0",
	}}

	err := New("project.godot", WithGitRunner(git)).Validate(context.Background(), root)
	if !errors.Is(err, ErrTagMismatch) {
		t.Fatalf("expected ErrTagMismatch, got %v", err)
	}
	for _, want := range []string{projects[1], "v1.1.0", "v1.2.0"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error report missing %q: %v", want, err)
		}
	}
}

func TestValidateGitFailureIsFatal(t *testing.T) {
	root, _ := scaffoldCourse(t)
	boom := errors.New("fatal: not a git repository")

	err := New("project.godot", WithGitRunner(&fakeGit{err: boom})).Validate(context.Background(), root)
	if !errors.Is(err, boom) {
		t.Fatalf("expected git failure, got %v", err)
	}
}

func TestValidateRootOnly(t *testing.T) {
	root := t.TempDir()
	git := &fakeGit{tags: map[string]string{root: "v2.0.0"}}

	if err := New("project.godot", WithGitRunner(git)).Validate(context.Background(), root); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
