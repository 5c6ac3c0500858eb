package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// TOCPlaceholder is the reserved token a document uses to request a generated
// table of contents. It must stand alone on its own line.
const TOCPlaceholder = "{% contents %}"

// headingPattern matches H2 through H4 headings; H1 is the document title and
// never listed.
var headingPattern = regexp.MustCompile(`^(#{2,4})\s+(.+?)\s*$`)

// Heading is one table-of-contents entry.
type Heading struct {
	Title  string
	Anchor string
	Level  int
}

// TOCStage substitutes the contents placeholder with a list generated from
// the document's heading structure. The scan runs on the post-include text so
// included sub-sections are listed. The first placeholder wins; later
// occurrences are removed. Without a placeholder the stage is a no-op.
type TOCStage struct{}

// Name implements Stage.
func (s *TOCStage) Name() string { return "toc" }

// Apply implements Stage.
func (s *TOCStage) Apply(_ context.Context, doc *Document) error {
	if !strings.Contains(doc.Text, TOCPlaceholder) {
		return nil
	}

	headings := FindHeadings(doc.Text)
	toc := renderTOC(headings)

	lines := strings.Split(doc.Text, "\n")
	out := make([]string, 0, len(lines)+len(headings))
	substituted := false
	for _, line := range lines {
		if strings.TrimSpace(line) == TOCPlaceholder {
			if !substituted {
				out = append(out, toc...)
				substituted = true
			}
			continue
		}
		out = append(out, line)
	}
	doc.Text = strings.Join(out, "\n")
	return nil
}

// FindHeadings scans markdown text for H2–H4 headings outside code fences,
// in document order, assigning each its rendered anchor. The scan tracks
// fence state line by line, so a fence left open at end of document still
// suppresses the heading-like lines inside it.
func FindHeadings(text string) []Heading {
	anchors := NewAnchorSet()
	var out []Heading
	inFence := false
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		match := headingPattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		title := strings.TrimSpace(match[2])
		out = append(out, Heading{
			Title:  title,
			Anchor: anchors.Anchor(title),
			Level:  len(match[1]),
		})
	}
	return out
}

func renderTOC(headings []Heading) []string {
	out := []string{"Contents:", ""}
	for _, h := range headings {
		indent := strings.Repeat("  ", h.Level-2)
		out = append(out, fmt.Sprintf("%s- [%s](#%s)", indent, h.Title, h.Anchor))
	}
	return out
}
