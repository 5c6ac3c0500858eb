package packager

import (
	"bytes"
	"fmt"
	stdhtml "html"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/goliatone/go-coursepack/internal/pipeline"
)

var (
	leadingIndexPattern = regexp.MustCompile(`^\d*\.`)
	wordSeparators      = regexp.MustCompile(`[-_/\\]`)
	figcaptionPattern   = regexp.MustCompile(`<figcaption>.+?</figcaption>`)
)

// documentMeta is the front matter subset the converter cares about. Any other
// keys are ignored.
type documentMeta struct {
	Title string `yaml:"title"`
}

// Converter renders transformed markdown into standalone HTML pages. Heading
// IDs use the same slug rules as table-of-contents anchors so in-page links
// resolve.
type Converter struct{}

// NewConverter returns an HTML converter.
func NewConverter() *Converter {
	return &Converter{}
}

// Convert renders source markdown into a full HTML page. The page title comes
// from a front matter title key when present, otherwise it is derived from the
// file name. Front matter is stripped before rendering.
func (c *Converter) Convert(sourcePath string, source []byte) ([]byte, error) {
	var meta documentMeta
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return nil, fmt.Errorf("packager: parse frontmatter: %w", err)
	}

	title := meta.Title
	if title == "" {
		title = TitleFromPath(sourcePath)
	}

	engine := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	ctx := parser.NewContext(parser.WithIDs(newHeadingIDs()))

	var rendered bytes.Buffer
	if err := engine.Convert(body, &rendered, parser.WithContext(ctx)); err != nil {
		return nil, fmt.Errorf("packager: convert %s: %w", sourcePath, err)
	}

	page := figcaptionPattern.ReplaceAll(rendered.Bytes(), nil)
	return wrapPage(title, page), nil
}

// TitleFromPath derives a human readable document title from a file name:
// the extension and any leading chapter index digits are dropped, and word
// separators become spaces.
func TitleFromPath(path string) string {
	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	title = leadingIndexPattern.ReplaceAllString(title, "")
	title = wordSeparators.ReplaceAllString(title, " ")
	return strings.TrimSpace(title)
}

func wrapPage(title string, body []byte) []byte {
	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\"/>\n<title>")
	page.WriteString(stdhtml.EscapeString(title))
	page.WriteString("</title>\n</head>\n<body>\n")
	page.Write(body)
	page.WriteString("</body>\n</html>\n")
	return page.Bytes()
}

// headingIDs adapts the pipeline anchor generator to goldmark's ID interface
// so rendered heading IDs match generated table-of-contents links.
type headingIDs struct {
	anchors *pipeline.AnchorSet
}

func newHeadingIDs() *headingIDs {
	return &headingIDs{anchors: pipeline.NewAnchorSet()}
}

func (h *headingIDs) Generate(value []byte, _ ast.NodeKind) []byte {
	return []byte(h.anchors.Anchor(string(value)))
}

func (h *headingIDs) Put(_ []byte) {}
