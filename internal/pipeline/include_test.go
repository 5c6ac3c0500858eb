package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
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

func newIncludeStage(t *testing.T, roots ...string) *IncludeStage {
	t.Helper()
	resolver, err := NewSnippetResolver(roots)
	if err != nil {
		t.Fatalf("NewSnippetResolver: %v", err)
	}
	return &IncludeStage{Resolver: resolver}
}

func TestIncludeExpandsWholeFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Player.gd"), "extends Node2D\n\nfunc _ready():\n\tpass\n")
	doc := &Document{
		Path: filepath.Join(dir, "lesson.md"),
		Text: "Before\n\n{% include Player.gd %}\n\nAfter\n",
	}

	if err := newIncludeStage(t).Apply(context.Background(), doc); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !strings.Contains(doc.Text, "extends Node2D") {
		t.Fatalf("included file content missing:\n%s", doc.Text)
	}
	if strings.Contains(doc.Text, "{% include") {
		t.Fatalf("directive left behind:\n%s", doc.Text)
	}
}

func TestIncludeExpandsAnchorRegion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Player.gd"), strings.Join([]string{
		"extends Node2D",
		"# ANCHOR: movement",
		"func move(delta):",
		"\tposition += velocity * delta",
		"# END: movement",
		"func unrelated():",
		"\tpass",
	}, "\n"))
	doc := &Document{
		Path: filepath.Join(dir, "lesson.md"),
		Text: "{% include Player.gd movement %}\n",
	}

	if err := newIncludeStage(t).Apply(context.Background(), doc); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !strings.Contains(doc.Text, "func move(delta):") {
		t.Fatalf("anchored region missing:\n%s", doc.Text)
	}
	if strings.Contains(doc.Text, "unrelated") {
		t.Fatalf("content outside anchor leaked:\n%s", doc.Text)
	}
	if strings.Contains(doc.Text, "ANCHOR") {
		t.Fatalf("anchor markers leaked:\n%s", doc.Text)
	}
}

func TestIncludeResolvesFromSnippetIndex(t *testing.T) {
	project := t.TempDir()
	writeFile(t, filepath.Join(project, "scripts", "Enemy.gd"), "extends Area2D\n")
	docDir := t.TempDir()
	doc := &Document{
		Path: filepath.Join(docDir, "lesson.md"),
		Text: "{% include Enemy.gd %}\n",
	}

	if err := newIncludeStage(t, project).Apply(context.Background(), doc); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !strings.Contains(doc.Text, "extends Area2D") {
		t.Fatalf("indexed snippet not resolved:\n%s", doc.Text)
	}
}

func TestIncludeNestedDirectives(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "outer.md"), "Outer start\n{% include inner.md %}\nOuter end\n")
	writeFile(t, filepath.Join(dir, "inner.md"), "Innermost\n")
	doc := &Document{
		Path: filepath.Join(dir, "lesson.md"),
		Text: "{% include outer.md %}\n",
	}

	if err := newIncludeStage(t).Apply(context.Background(), doc); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !strings.Contains(doc.Text, "Innermost") {
		t.Fatalf("nested include not expanded:\n%s", doc.Text)
	}
}

func TestIncludeCycleFails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.md"), "{% include b.md %}\n")
	writeFile(t, filepath.Join(dir, "b.md"), "{% include a.md %}\n")
	doc := &Document{
		Path: filepath.Join(dir, "lesson.md"),
		Text: "{% include a.md %}\n",
	}

	err := newIncludeStage(t).Apply(context.Background(), doc)
	if !errors.Is(err, ErrIncludeCycle) {
		t.Fatalf("expected ErrIncludeCycle, got %v", err)
	}
}

func TestIncludeMissingFileFails(t *testing.T) {
	doc := &Document{
		Path: filepath.Join(t.TempDir(), "lesson.md"),
		Text: "{% include Ghost.gd %}\n",
	}

	err := newIncludeStage(t).Apply(context.Background(), doc)
	if !errors.Is(err, ErrIncludeNotFound) {
		t.Fatalf("expected ErrIncludeNotFound, got %v", err)
	}
}

func TestIncludeMissingAnchorFails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Player.gd"), "extends Node\n")
	doc := &Document{
		Path: filepath.Join(dir, "lesson.md"),
		Text: "{% include Player.gd missing %}\n",
	}

	err := newIncludeStage(t).Apply(context.Background(), doc)
	if !errors.Is(err, ErrAnchorNotFound) {
		t.Fatalf("expected ErrAnchorNotFound, got %v", err)
	}
}

func TestIncludeAmbiguousBareNameFails(t *testing.T) {
	project := t.TempDir()
	writeFile(t, filepath.Join(project, "one", "Player.gd"), "extends Node\n")
	writeFile(t, filepath.Join(project, "two", "Player.gd"), "extends Node2D\n")
	doc := &Document{
		Path: filepath.Join(t.TempDir(), "lesson.md"),
		Text: "{% include Player.gd %}\n",
	}

	err := newIncludeStage(t, project).Apply(context.Background(), doc)
	if !errors.Is(err, ErrIncludeAmbiguous) {
		t.Fatalf("expected ErrIncludeAmbiguous, got %v", err)
	}
}

func TestIncludeRelativePath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "snippets", "Player.gd"), "extends Node\n")
	doc := &Document{
		Path: filepath.Join(dir, "lesson.md"),
		Text: "{% include snippets/Player.gd %}\n",
	}

	if err := newIncludeStage(t).Apply(context.Background(), doc); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !strings.Contains(doc.Text, "extends Node") {
		t.Fatalf("relative include not expanded:\n%s", doc.Text)
	}
}
