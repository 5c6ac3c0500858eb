package packager

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-coursepack/internal/graph"
)

type recordingRunner struct {
	dir  string
	name string
	args []string
	err  error
}

func (r *recordingRunner) Run(_ context.Context, dir, name string, args ...string) ([]byte, error) {
	r.dir = dir
	r.name = name
	r.args = args
	return nil, r.err
}

func scaffoldEpubMetadata(t *testing.T, title string) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "epub_metadata")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "metadata.txt"), []byte("title: "+title+"\nauthor: GDQuest\n"), 0o644); err != nil {
		t.Fatalf("write metadata: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "cover.png"), []byte{0x89, 'P', 'N', 'G'}, 0o644); err != nil {
		t.Fatalf("write cover: %v", err)
	}
	return root
}

func TestLocateEpubMetadata(t *testing.T) {
	root := scaffoldEpubMetadata(t, "Learn Godot")

	meta, err := LocateEpubMetadata(root)
	if err != nil {
		t.Fatalf("LocateEpubMetadata: %v", err)
	}
	if meta.MetadataPath == "" || meta.CoverPath == "" {
		t.Fatalf("incomplete metadata: %+v", meta)
	}
}

func TestLocateEpubMetadataMissingFiles(t *testing.T) {
	root := t.TempDir()
	if _, err := LocateEpubMetadata(root); !errors.Is(err, ErrEpubMetadataMissing) {
		t.Fatalf("expected ErrEpubMetadataMissing, got %v", err)
	}

	if err := os.MkdirAll(filepath.Join(root, "epub_metadata"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "epub_metadata", "metadata.txt"), []byte("title: X\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LocateEpubMetadata(root); !errors.Is(err, ErrEpubCoverMissing) {
		t.Fatalf("expected ErrEpubCoverMissing, got %v", err)
	}
}

func TestBookFileNameKeepsAlphanumerics(t *testing.T) {
	root := scaffoldEpubMetadata(t, "Learn to Code: From Zero!")

	name, err := BookFileName(filepath.Join(root, "epub_metadata", "metadata.txt"))
	if err != nil {
		t.Fatalf("BookFileName: %v", err)
	}
	if name != "LearntoCodeFromZero.epub" {
		t.Fatalf("got %q", name)
	}
}

func TestBookFileNameMissingTitle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.txt")
	if err := os.WriteFile(path, []byte("author: GDQuest\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := BookFileName(path); !errors.Is(err, ErrEpubTitleMissing) {
		t.Fatalf("expected ErrEpubTitleMissing, got %v", err)
	}
}

func TestEpubPackageInvokesPandoc(t *testing.T) {
	root := scaffoldEpubMetadata(t, "Learn Godot")
	meta, err := LocateEpubMetadata(root)
	if err != nil {
		t.Fatalf("LocateEpubMetadata: %v", err)
	}

	buildDir := filepath.Join(root, "build")
	runner := &recordingRunner{}
	packager := NewEpubPackager(meta, buildDir, runner, nil)

	node := &graph.Node{
		Target: filepath.Join(root, "dist", "LearnGodot.epub"),
		Sources: []string{
			filepath.Join(buildDir, "intro", "01.welcome.html"),
			filepath.Join(buildDir, "intro", "02.scenes.html"),
		},
		Action: graph.ActionEpub,
	}
	if err := packager.Package(context.Background(), node); err != nil {
		t.Fatalf("Package: %v", err)
	}

	if runner.name != "pandoc" {
		t.Fatalf("expected pandoc invocation, got %q", runner.name)
	}
	if runner.dir != buildDir {
		t.Fatalf("expected pandoc to run in %s, got %s", buildDir, runner.dir)
	}

	joined := map[string]bool{}
	for _, arg := range runner.args {
		joined[arg] = true
	}
	for _, want := range []string{
		node.Target,
		meta.MetadataPath,
		filepath.Join("intro", "01.welcome.html"),
		filepath.Join("intro", "02.scenes.html"),
		"--toc",
		"--epub-cover-image",
	} {
		if !joined[want] {
			t.Fatalf("missing pandoc argument %q in %v", want, runner.args)
		}
	}
}

func TestEpubPackagePropagatesFailure(t *testing.T) {
	root := scaffoldEpubMetadata(t, "Learn Godot")
	meta, _ := LocateEpubMetadata(root)

	boom := errors.New("pandoc: not found")
	packager := NewEpubPackager(meta, root, &recordingRunner{err: boom}, nil)

	node := &graph.Node{Target: filepath.Join(root, "dist", "x.epub"), Sources: []string{filepath.Join(root, "a.html")}, Action: graph.ActionEpub}
	if err := packager.Package(context.Background(), node); !errors.Is(err, boom) {
		t.Fatalf("expected pandoc failure, got %v", err)
	}
}
