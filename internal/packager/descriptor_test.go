package packager

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeDescriptor(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "project.godot")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write descriptor: %v", err)
	}
	return path
}

func TestProjectNameStripsQuotesAndSpaces(t *testing.T) {
	path := writeDescriptor(t, "[application]\n\nconfig/name=\"Maze Runner Demo\"\nconfig/icon=\"res://icon.png\"\n")

	parser := NewDescriptorParser()
	name, err := parser.ProjectName(path)
	if err != nil {
		t.Fatalf("ProjectName: %v", err)
	}
	if name != "Maze_Runner_Demo" {
		t.Fatalf("expected Maze_Runner_Demo, got %q", name)
	}
}

func TestProjectNameMissingEntry(t *testing.T) {
	path := writeDescriptor(t, "[application]\nconfig/icon=\"res://icon.png\"\n")

	if _, err := NewDescriptorParser().ProjectName(path); !errors.Is(err, ErrProjectNameMissing) {
		t.Fatalf("expected ErrProjectNameMissing, got %v", err)
	}
}

func TestProjectNameUnreadableFile(t *testing.T) {
	if _, err := NewDescriptorParser().ProjectName(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("expected an error for a missing descriptor")
	}
}
