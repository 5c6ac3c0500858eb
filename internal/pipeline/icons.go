package pipeline

import (
	"context"
	"regexp"
	"strings"
	"unicode"
)

// defaultIconClasses lists the engine class names that ship with a built-in
// icon glyph. Backtick-quoted occurrences outside code fences are annotated;
// anything not on the list passes through untouched.
var defaultIconClasses = []string{
	"AnimatedSprite", "AnimationPlayer", "Area2D", "AudioStreamPlayer",
	"AudioStreamPlayer2D", "Button", "Camera2D", "Camera3D", "CanvasLayer",
	"CharacterBody2D", "CharacterBody3D", "CollisionPolygon2D",
	"CollisionShape2D", "CollisionShape3D", "Control", "Curve2D",
	"DirectionalLight3D", "GridContainer", "HBoxContainer", "HSlider",
	"KinematicBody2D", "Label", "Line2D", "LineEdit", "MarginContainer",
	"MeshInstance3D", "Node", "Node2D", "Node3D", "PackedScene", "Panel",
	"PanelContainer", "Particles2D", "Path2D", "PathFollow2D", "Polygon2D",
	"Position2D", "ProgressBar", "RayCast2D", "RayCast3D", "ReferenceRect",
	"RemoteTransform2D", "RichTextLabel", "RigidBody2D", "RigidBody3D",
	"ScrollContainer", "Skeleton2D", "Sprite", "Sprite2D", "Sprite3D",
	"StaticBody2D", "StaticBody3D", "TextEdit", "TextureButton",
	"TextureProgress", "TextureRect", "TileMap", "Timer", "Tween",
	"VBoxContainer", "VSlider", "Viewport", "VisibilityNotifier2D",
	"YSort",
}

// IconStage prefixes recognized backtick-quoted class names with the markup
// for their built-in icon. Tokens inside code fences are left alone, and an
// already annotated token is not annotated twice, keeping the stage
// idempotent.
type IconStage struct {
	iconDir string
	pattern *regexp.Regexp
}

// NewIconStage builds the stage for the given icon path prefix. An empty
// class list selects the built-in default.
func NewIconStage(iconDir string, classes []string) *IconStage {
	if len(classes) == 0 {
		classes = defaultIconClasses
	}
	quoted := make([]string, len(classes))
	for i, class := range classes {
		quoted[i] = regexp.QuoteMeta(class)
	}
	// Group 1 captures a preceding icon tag when present so the replacement
	// can detect tokens annotated by an earlier run.
	pattern := regexp.MustCompile(
		`(<img src="[^"]*" class="node-icon"/>)?` + "`(" + strings.Join(quoted, "|") + ")`",
	)
	return &IconStage{iconDir: strings.TrimRight(iconDir, "/"), pattern: pattern}
}

// Name implements Stage.
func (s *IconStage) Name() string { return "icons" }

// Apply implements Stage.
func (s *IconStage) Apply(_ context.Context, doc *Document) error {
	segments := splitAroundFences(doc.Text)
	var b strings.Builder
	for _, segment := range segments {
		if strings.HasPrefix(segment, "```") {
			b.WriteString(segment)
			continue
		}
		b.WriteString(s.annotate(segment))
	}
	doc.Text = b.String()
	return nil
}

func (s *IconStage) annotate(text string) string {
	return s.pattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := s.pattern.FindStringSubmatch(match)
		if groups[1] != "" {
			return match
		}
		class := groups[2]
		icon := s.iconDir + "/icon_" + pascalToSnake(class) + ".svg"
		return "<img src=\"" + icon + "\" class=\"node-icon\"/>`" + class + "`"
	})
}

// fencePattern matches a closed fenced code block; the icon stage uses it to
// leave quoted class names inside fences unannotated.
var fencePattern = regexp.MustCompile("(?s)(```[a-zA-Z0-9_+-]*\n.*?```)")

// splitAroundFences partitions text into alternating prose and fenced code
// segments, preserving all content.
func splitAroundFences(text string) []string {
	indexes := fencePattern.FindAllStringIndex(text, -1)
	if len(indexes) == 0 {
		return []string{text}
	}
	var out []string
	last := 0
	for _, span := range indexes {
		if span[0] > last {
			out = append(out, text[last:span[0]])
		}
		out = append(out, text[span[0]:span[1]])
		last = span[1]
	}
	if last < len(text) {
		out = append(out, text[last:])
	}
	return out
}

// pascalToSnake converts an engine class name to its icon file spelling,
// e.g. "AnimatedSprite" -> "animated_sprite", "Area2D" -> "area_2d".
func pascalToSnake(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if i > 0 && (unicode.IsUpper(r) || unicode.IsDigit(r)) {
			prev := runes[i-1]
			if unicode.IsLower(prev) || (unicode.IsUpper(r) && i+1 < len(runes) && unicode.IsLower(runes[i+1])) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
