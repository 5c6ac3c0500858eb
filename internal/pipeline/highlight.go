package pipeline

import (
	"context"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// highlightFencePattern captures the language tag and body of a fenced code
// block. Only fences opened with a tag are candidates for highlighting.
var highlightFencePattern = regexp.MustCompile("(?s)```([a-zA-Z0-9_+-]*)\n(.*?)```")

const defaultHighlightStyle = "monokai"

// HighlightStage replaces fenced code blocks with chroma-rendered HTML using
// inline styles, so the converted page needs no stylesheet. Blocks with a
// missing or unrecognized language tag pass through unhighlighted. Because
// the replacement contains no fence markers the stage is idempotent.
type HighlightStage struct {
	style     *chroma.Style
	formatter *html.Formatter
}

// NewHighlightStage builds the stage for the named chroma style, falling back
// to monokai when the style is unknown or empty.
func NewHighlightStage(styleName string) *HighlightStage {
	if strings.TrimSpace(styleName) == "" {
		styleName = defaultHighlightStyle
	}
	style := styles.Get(styleName)
	if style == nil {
		style = styles.Get(defaultHighlightStyle)
	}
	return &HighlightStage{
		style: style,
		formatter: html.New(html.WithLineNumbers(true)),
	}
}

// Name implements Stage.
func (s *HighlightStage) Name() string { return "highlight" }

// Apply implements Stage.
func (s *HighlightStage) Apply(_ context.Context, doc *Document) error {
	doc.Text = highlightFencePattern.ReplaceAllStringFunc(doc.Text, func(match string) string {
		groups := highlightFencePattern.FindStringSubmatch(match)
		lang, code := groups[1], groups[2]
		if lang == "" {
			return match
		}

		lexer := lexers.Get(lang)
		if lexer == nil {
			return match
		}
		lexer = chroma.Coalesce(lexer)

		iterator, err := lexer.Tokenise(nil, code)
		if err != nil {
			return match
		}
		var b strings.Builder
		if err := s.formatter.Format(&b, s.style, iterator); err != nil {
			return match
		}
		return b.String()
	})
	return nil
}
