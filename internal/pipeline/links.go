package pipeline

import (
	"context"
	"regexp"
	"strings"
)

// markdownLinkPattern captures the destination of inline links and images.
// Group 1 is the destination without the closing parenthesis.
var markdownLinkPattern = regexp.MustCompile(`\]\(([^()\s]+)\)`)

// LinkStage rewrites internal cross-references so they stay valid in the
// output layout: links targeting other content documents swap their .md
// extension for .html. External links, bare anchors and mail links pass
// through untouched. Rewriting an already rewritten document is a no-op.
type LinkStage struct{}

// Name implements Stage.
func (s *LinkStage) Name() string { return "links" }

// Apply implements Stage.
func (s *LinkStage) Apply(_ context.Context, doc *Document) error {
	doc.Text = markdownLinkPattern.ReplaceAllStringFunc(doc.Text, func(match string) string {
		groups := markdownLinkPattern.FindStringSubmatch(match)
		dest := groups[1]
		if isExternalLink(dest) {
			return match
		}

		target, fragment := dest, ""
		if i := strings.IndexByte(dest, '#'); i >= 0 {
			target, fragment = dest[:i], dest[i:]
		}
		if !strings.HasSuffix(strings.ToLower(target), ".md") {
			return match
		}
		return "](" + target[:len(target)-3] + ".html" + fragment + ")"
	})
	return nil
}

func isExternalLink(dest string) bool {
	lower := strings.ToLower(dest)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "//") ||
		strings.HasPrefix(lower, "mailto:") ||
		strings.HasPrefix(lower, "#")
}
