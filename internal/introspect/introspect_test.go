package introspect

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func scaffoldCourse(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "content", "module-1", "01.intro.md"), "# Intro\n")
	writeFile(t, filepath.Join(root, "content", "module-1", "images", "scene.png"), "png")
	writeFile(t, filepath.Join(root, "content", "module-1", "demo", "project.godot"), "config/name=\"Demo\"\n")
	writeFile(t, filepath.Join(root, "content", "module-2", "02.lesson.md"), "# Lesson\n")
	writeFile(t, filepath.Join(root, "content", "module-2", "clip.mp4"), "mp4")
	writeFile(t, filepath.Join(root, "content", "module-2", "notes.txt"), "ignored")
	writeFile(t, filepath.Join(root, "README.md"), "outside content, ignored")
	return root
}

func TestScanClassifiesByCategory(t *testing.T) {
	root := scaffoldCourse(t)

	inv, err := NewScanner().Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if len(inv.Directories) != 2 {
		t.Fatalf("expected 2 content directories, got %d: %v", len(inv.Directories), inv.Directories)
	}
	if len(inv.Documents) != 2 {
		t.Fatalf("expected 2 markdown documents, got %v", inv.Documents)
	}
	if len(inv.Media) != 2 {
		t.Fatalf("expected 2 media files, got %v", inv.Media)
	}
	if len(inv.Descriptors) != 1 {
		t.Fatalf("expected 1 project descriptor, got %v", inv.Descriptors)
	}
	for _, doc := range inv.Documents {
		if filepath.Base(doc) == "README.md" {
			t.Fatalf("file outside content folder was classified: %s", doc)
		}
	}
}

func TestScanOrderIsStable(t *testing.T) {
	root := scaffoldCourse(t)
	scanner := NewScanner()

	first, err := scanner.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	second, err := scanner.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if !sort.StringsAreSorted(first.Documents) || !sort.StringsAreSorted(first.Media) {
		t.Fatalf("expected sorted sequences, got %v / %v", first.Documents, first.Media)
	}
	for i := range first.Documents {
		if first.Documents[i] != second.Documents[i] {
			t.Fatalf("document order changed between scans")
		}
	}
}

func TestScanFailsWithoutContentFolder(t *testing.T) {
	root := t.TempDir()

	_, err := NewScanner().Scan(context.Background(), root)
	if !errors.Is(err, ErrContentDirMissing) {
		t.Fatalf("expected ErrContentDirMissing, got %v", err)
	}
}

func TestScanSkipsDanglingSymlinks(t *testing.T) {
	root := scaffoldCourse(t)
	link := filepath.Join(root, "content", "module-1", "ghost.md")
	if err := os.Symlink(filepath.Join(root, "content", "missing.md"), link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	inv, err := NewScanner().Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	for _, doc := range inv.Documents {
		if filepath.Base(doc) == "ghost.md" {
			t.Fatalf("dangling symlink was classified: %s", doc)
		}
	}
}

func TestContentDirectoryOf(t *testing.T) {
	root := scaffoldCourse(t)
	doc := filepath.Join(root, "content", "module-1", "01.intro.md")

	got := ContentDirectoryOf(root, doc)
	want := filepath.Join(root, "content", "module-1")
	if got != want {
		t.Fatalf("ContentDirectoryOf = %q, want %q", got, want)
	}

	if got := ContentDirectoryOf(root, filepath.Join(root, "README.md")); got != "" {
		t.Fatalf("expected empty result outside content tree, got %q", got)
	}
}

func TestProjectFilesSkipsEngineCaches(t *testing.T) {
	project := t.TempDir()
	writeFile(t, filepath.Join(project, "project.godot"), "config/name=\"Demo\"\n")
	writeFile(t, filepath.Join(project, "main.gd"), "extends Node\n")
	writeFile(t, filepath.Join(project, "scenes", "main.tscn"), "[gd_scene]\n")
	writeFile(t, filepath.Join(project, ".git", "HEAD"), "ref: refs/heads/main\n")
	writeFile(t, filepath.Join(project, ".import", "cache.bin"), "cache")
	writeFile(t, filepath.Join(project, ".godot", "editor.cfg"), "editor")

	files, err := ProjectFiles(project)
	if err != nil {
		t.Fatalf("ProjectFiles: %v", err)
	}

	want := []string{
		filepath.Join(project, "main.gd"),
		filepath.Join(project, "project.godot"),
		filepath.Join(project, "scenes", "main.tscn"),
	}
	if len(files) != len(want) {
		t.Fatalf("expected %d files, got %v", len(want), files)
	}
	for i, path := range want {
		if files[i] != path {
			t.Fatalf("file %d: expected %s, got %s", i, path, files[i])
		}
	}
}
