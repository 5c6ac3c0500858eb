package pipeline

import (
	"context"
	"strings"
	"testing"
)

func applyIcons(t *testing.T, text string) string {
	t.Helper()
	doc := &Document{Path: "lesson.md", Text: text}
	if err := NewIconStage("icons", nil).Apply(context.Background(), doc); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	return doc.Text
}

func TestIconAnnotationPrefixesRecognizedClasses(t *testing.T) {
	got := applyIcons(t, "Add a `Node2D` to the scene.")
	want := `<img src="icons/icon_node_2d.svg" class="node-icon"/>` + "`Node2D`"
	if !strings.Contains(got, want) {
		t.Fatalf("missing icon markup:\n%s", got)
	}
}

func TestIconAnnotationLeavesUnknownTokens(t *testing.T) {
	text := "The `Frobnicator` class is custom."
	if got := applyIcons(t, text); got != text {
		t.Fatalf("unknown token was modified: %q", got)
	}
}

func TestIconAnnotationSkipsCodeFences(t *testing.T) {
	text := "```gdscript\nvar node = Node2D.new() # `Node2D`\n```\n"
	if got := applyIcons(t, text); got != text {
		t.Fatalf("code fence content was modified:\n%s", got)
	}
}

func TestIconAnnotationIsIdempotent(t *testing.T) {
	once := applyIcons(t, "Use a `Camera2D` here.")
	twice := applyIcons(t, once)
	if once != twice {
		t.Fatalf("second application changed output:\n%q\n%q", once, twice)
	}
}

func TestPascalToSnake(t *testing.T) {
	cases := map[string]string{
		"Node":                "node",
		"Node2D":              "node_2d",
		"AnimatedSprite":      "animated_sprite",
		"AudioStreamPlayer2D": "audio_stream_player_2d",
		"HBoxContainer":       "h_box_container",
	}
	for in, want := range cases {
		if got := pascalToSnake(in); got != want {
			t.Fatalf("pascalToSnake(%q) = %q, want %q", in, got, want)
		}
	}
}
