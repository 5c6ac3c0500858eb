package packager

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-coursepack/internal/graph"
	"github.com/goliatone/go-coursepack/internal/pipeline"
)

func newTestRunner(t *testing.T, opts ...RunnerOption) *NodeRunner {
	t.Helper()
	pipe, err := pipeline.New(pipeline.Config{})
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}
	return NewNodeRunner(pipe, NewConverter(), opts...)
}

func TestRunTransformWritesWorkingCopy(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "content", "intro", "01.welcome.md")
	if err := os.MkdirAll(filepath.Dir(source), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	markdown := "# Welcome\n\n{% contents %}\n\n## First Steps\n\nSee [next lesson](02.scenes.md).\n"
	if err := os.WriteFile(source, []byte(markdown), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	target := filepath.Join(dir, "build", "intro", "01.welcome.md")
	node := &graph.Node{Target: target, Sources: []string{source}, Action: graph.ActionTransform}
	if err := newTestRunner(t).Run(context.Background(), node); err != nil {
		t.Fatalf("Run: %v", err)
	}

	out, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read working copy: %v", err)
	}
	text := string(out)
	if !strings.Contains(text, "[First Steps](#first-steps)") {
		t.Fatalf("table of contents entry missing:\n%s", text)
	}
	if !strings.Contains(text, "02.scenes.html") {
		t.Fatalf("markdown link not rewritten to html:\n%s", text)
	}
	if strings.Contains(text, "{% contents %}") {
		t.Fatalf("contents placeholder survived:\n%s", text)
	}

	authored, err := os.ReadFile(source)
	if err != nil {
		t.Fatalf("read source: %v", err)
	}
	if string(authored) != markdown {
		t.Fatalf("authored file was mutated:\n%s", authored)
	}
}

func TestRunConvertRendersPage(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "content", "intro", "01.welcome.md")
	if err := os.MkdirAll(filepath.Dir(source), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	markdown := "# Welcome\n\n{% contents %}\n\n## First Steps\n\nSee [next lesson](02.scenes.md).\n"
	if err := os.WriteFile(source, []byte(markdown), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	runner := newTestRunner(t)
	working := filepath.Join(dir, "build", "intro", "01.welcome.md")
	transform := &graph.Node{Target: working, Sources: []string{source}, Action: graph.ActionTransform}
	if err := runner.Run(context.Background(), transform); err != nil {
		t.Fatalf("transform: %v", err)
	}

	target := filepath.Join(dir, "build", "intro", "01.welcome.html")
	convert := &graph.Node{Target: target, Sources: []string{working}, Action: graph.ActionConvert}
	if err := runner.Run(context.Background(), convert); err != nil {
		t.Fatalf("convert: %v", err)
	}

	out, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read target: %v", err)
	}
	page := string(out)
	if !strings.Contains(page, `<h2 id="first-steps">`) {
		t.Fatalf("heading id missing:\n%s", page)
	}
	if !strings.Contains(page, `href="#first-steps"`) {
		t.Fatalf("table of contents link missing:\n%s", page)
	}
	if !strings.Contains(page, `02.scenes.html`) {
		t.Fatalf("markdown link not rewritten to html:\n%s", page)
	}
}

func TestRunTransformEmptySourceProducesEmptyCopy(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "empty.md")
	if err := os.WriteFile(source, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	target := filepath.Join(dir, "build", "empty.md")
	node := &graph.Node{Target: target, Sources: []string{source}, Action: graph.ActionTransform}
	if err := newTestRunner(t).Run(context.Background(), node); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("target not written: %v", err)
	}
}

func TestRunInstallCopiesFile(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "img.png")
	if err := os.WriteFile(source, []byte("png-bytes"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	target := filepath.Join(dir, "dist", "intro", "img.png")
	node := &graph.Node{Target: target, Sources: []string{source}, Action: graph.ActionInstall}
	if err := newTestRunner(t).Run(context.Background(), node); err != nil {
		t.Fatalf("Run: %v", err)
	}

	out, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read target: %v", err)
	}
	if string(out) != "png-bytes" {
		t.Fatalf("copy mismatch: %q", out)
	}
}

func TestRunPackageZipsProject(t *testing.T) {
	project := scaffoldProject(t)

	target := filepath.Join(t.TempDir(), "Demo.zip")
	node := &graph.Node{Target: target, Sources: []string{filepath.Join(project, "project.godot")}, Action: graph.ActionPackage}
	if err := newTestRunner(t).Run(context.Background(), node); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("archive not written: %v", err)
	}
}

func TestRunUnconfiguredAdaptersFail(t *testing.T) {
	runner := newTestRunner(t)

	export := &graph.Node{Target: "out.html", Sources: []string{"in.html"}, Action: graph.ActionExport}
	if err := runner.Run(context.Background(), export); err == nil {
		t.Fatal("expected an error for an export node without an exporter")
	}

	epub := &graph.Node{Target: "out.epub", Sources: []string{"in.html"}, Action: graph.ActionEpub}
	if err := runner.Run(context.Background(), epub); err == nil {
		t.Fatal("expected an error for an epub node without a packager")
	}
}
