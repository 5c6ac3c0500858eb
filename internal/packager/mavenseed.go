package packager

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/goliatone/go-coursepack/internal/graph"
	"github.com/goliatone/go-coursepack/internal/logging"
	"github.com/goliatone/go-coursepack/pkg/interfaces"
)

// ErrNoBody reports an HTML document without a body element.
var ErrNoBody = errors.New("packager: html document has no body element")

var (
	hrefPattern      = regexp.MustCompile(`href="([^"]+)"`)
	headingIDPattern = regexp.MustCompile(`<h1 id="([^"]+)"`)
)

// Exporter prepares lessons for the learning platform: it extracts the body
// of a rendered page and rewrites relative links into the target lesson's
// heading anchor, which matches the lesson slug on the platform.
type Exporter struct {
	pagesDir string
	logger   interfaces.Logger
}

// NewExporter constructs an exporter that resolves cross-document links by
// scanning the rendered pages under pagesDir. The convert level produces the
// full page set in staging before any export runs, so pagesDir is the staging
// directory; it also holds in epub mode, where no page is promoted to dist.
func NewExporter(pagesDir string, logger interfaces.Logger) *Exporter {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Exporter{pagesDir: pagesDir, logger: logger}
}

// Export writes the platform-ready lesson for node.Target from the rendered
// page in node.Sources[0].
func (e *Exporter) Export(node *graph.Node) error {
	page, err := os.ReadFile(node.Sources[0])
	if err != nil {
		return fmt.Errorf("packager: read page: %w", err)
	}

	body, err := ExtractBody(string(page))
	if err != nil {
		return fmt.Errorf("%w: %s", err, node.Sources[0])
	}
	body = e.rewriteLinks(body)

	if err := os.MkdirAll(filepath.Dir(node.Target), 0o755); err != nil {
		return fmt.Errorf("packager: export dir: %w", err)
	}
	if err := os.WriteFile(node.Target, []byte(body), 0o644); err != nil {
		return fmt.Errorf("packager: write export: %w", err)
	}
	return nil
}

// ExtractBody returns the content between the body tags of an HTML page.
func ExtractBody(page string) (string, error) {
	start := strings.Index(page, "<body>")
	end := strings.Index(page, "</body>")
	if start < 0 || end < 0 || end < start {
		return "", ErrNoBody
	}
	return page[start+len("<body>") : end], nil
}

// rewriteLinks replaces each relative href with the target document's heading
// anchor. External links, protocol-relative links, and in-page fragments stay
// untouched, as do links whose target page cannot be found.
func (e *Exporter) rewriteLinks(body string) string {
	return hrefPattern.ReplaceAllStringFunc(body, func(match string) string {
		link := hrefPattern.FindStringSubmatch(match)[1]
		if strings.HasPrefix(link, "http") || strings.HasPrefix(link, "//") || strings.HasPrefix(link, "#") {
			return match
		}
		name := filepath.Base(link)
		if fragment := strings.Index(name, "#"); fragment >= 0 {
			name = name[:fragment]
		}
		if !strings.HasSuffix(name, ".html") {
			name += ".html"
		}
		id := e.documentHeadingID(name)
		if id == "" {
			return match
		}
		return `href="` + id + `"`
	})
}

// documentHeadingID locates a rendered page by file name anywhere under the
// pages directory and returns its first h1 id.
func (e *Exporter) documentHeadingID(fileName string) string {
	var found string
	_ = filepath.WalkDir(e.pagesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if filepath.Base(path) == fileName {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if found == "" {
		e.logger.Warn("packager.export.link_target_missing", "file", fileName)
		return ""
	}

	page, err := os.ReadFile(found)
	if err != nil {
		return ""
	}
	match := headingIDPattern.FindSubmatch(page)
	if match == nil {
		return ""
	}
	return string(match[1])
}
