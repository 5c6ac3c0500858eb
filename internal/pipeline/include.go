package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const defaultMaxIncludeDepth = 16

// includePattern matches directives of the form:
//
//	{% include FileName.gd %}
//	{% include FileName.gd anchor_name %}
//	{% include path/to/FileName.gd anchor_name %}
//
// The directive must occupy a whole line. File names may be quoted.
var includePattern = regexp.MustCompile(`(?m)^\{%\s*include\s+["']?([^"'\s]+?\.[a-zA-Z0-9]+)["']?(?:\s+["']?(\w+)["']?)?\s*%\}\s*$`)

// snippetExtensions lists the file types indexed for bare-name include lookup.
var snippetExtensions = map[string]struct{}{
	".gd":     {},
	".shader": {},
	".gdshader": {},
}

// anchorOpenPattern finds ANCHOR markers inside a snippet so a directive can
// include a named region instead of the whole file. GDScript and shader
// comments are both supported.
var (
	anchorOpenPattern   = regexp.MustCompile(`(?m)^\s*(?:#|//) ?ANCHOR: ?(\w+)\s*$`)
	anchorMarkerPattern = regexp.MustCompile(`(?m)^\s*(?:#|//) ?(?:ANCHOR|END): ?\w+\s*\n?`)
)

// SnippetResolver maps include references to file paths. Bare file names are
// resolved through a basename index built once over the include roots;
// references containing a path separator resolve relative to the including
// document.
type SnippetResolver struct {
	byName map[string]string
	dups   map[string]struct{}
}

// NewSnippetResolver indexes every snippet file below the given roots.
// Hidden directories are skipped. Duplicate basenames stay listed so lookups
// can fail loudly instead of picking an arbitrary file.
func NewSnippetResolver(roots []string) (*SnippetResolver, error) {
	r := &SnippetResolver{
		byName: map[string]string{},
		dups:   map[string]struct{}{},
	}
	for _, root := range roots {
		if strings.TrimSpace(root) == "" {
			continue
		}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return fmt.Errorf("pipeline: index include root %s: %w", root, err)
			}
			if d.IsDir() {
				if strings.HasPrefix(d.Name(), ".") && path != root {
					return filepath.SkipDir
				}
				return nil
			}
			if _, ok := snippetExtensions[strings.ToLower(filepath.Ext(d.Name()))]; !ok {
				return nil
			}
			name := d.Name()
			if _, exists := r.byName[name]; exists {
				r.dups[name] = struct{}{}
				return nil
			}
			r.byName[name] = path
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Resolve returns the absolute path for an include reference made from docDir.
func (r *SnippetResolver) Resolve(docDir, ref string) (string, error) {
	if strings.ContainsAny(ref, `/\`) {
		path := ref
		if !filepath.IsAbs(path) {
			path = filepath.Join(docDir, filepath.FromSlash(ref))
		}
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%w: %s", ErrIncludeNotFound, ref)
		}
		return path, nil
	}

	// Bare name: prefer a sibling of the document, then the snippet index.
	sibling := filepath.Join(docDir, ref)
	if _, err := os.Stat(sibling); err == nil {
		return sibling, nil
	}
	if _, dup := r.dups[ref]; dup {
		return "", fmt.Errorf("%w: %s", ErrIncludeAmbiguous, ref)
	}
	if path, ok := r.byName[ref]; ok {
		return path, nil
	}
	return "", fmt.Errorf("%w: %s", ErrIncludeNotFound, ref)
}

// IncludeStage expands include directives, splicing referenced files (or
// anchor-delimited regions of them) into the document. Nested includes are
// followed; revisiting a file already on the expansion path is a cycle and
// fails the document.
type IncludeStage struct {
	Resolver *SnippetResolver
	MaxDepth int
}

// Name implements Stage.
func (s *IncludeStage) Name() string { return "include" }

// Apply implements Stage.
func (s *IncludeStage) Apply(ctx context.Context, doc *Document) error {
	depth := s.MaxDepth
	if depth <= 0 {
		depth = defaultMaxIncludeDepth
	}
	expanded, err := s.expand(ctx, doc.Text, filepath.Dir(doc.Path), map[string]struct{}{}, depth)
	if err != nil {
		return err
	}
	doc.Text = expanded
	return nil
}

func (s *IncludeStage) expand(ctx context.Context, text, docDir string, visiting map[string]struct{}, depth int) (string, error) {
	if depth <= 0 {
		return "", ErrIncludeDepth
	}

	var firstErr error
	out := includePattern.ReplaceAllStringFunc(text, func(match string) string {
		if firstErr != nil {
			return match
		}
		groups := includePattern.FindStringSubmatch(match)
		ref, anchor := groups[1], groups[2]

		path, err := s.Resolver.Resolve(docDir, ref)
		if err != nil {
			firstErr = err
			return match
		}
		key, err := filepath.Abs(path)
		if err != nil {
			key = path
		}
		if _, active := visiting[key]; active {
			firstErr = fmt.Errorf("%w: %s", ErrIncludeCycle, ref)
			return match
		}

		data, err := os.ReadFile(path)
		if err != nil {
			firstErr = fmt.Errorf("pipeline: read include %s: %w", path, err)
			return match
		}
		content := string(data)

		if anchor != "" {
			content, err = extractAnchor(content, anchor)
			if err != nil {
				firstErr = fmt.Errorf("%w (file %s)", err, ref)
				return match
			}
		}

		visiting[key] = struct{}{}
		nested, err := s.expand(ctx, content, filepath.Dir(path), visiting, depth-1)
		delete(visiting, key)
		if err != nil {
			firstErr = err
			return match
		}
		return strings.TrimRight(nested, "\n")
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

// extractAnchor returns the region delimited by "# ANCHOR: name" and
// "# END: name", with any marker lines stripped so nested anchors do not leak
// into the output.
func extractAnchor(content, anchor string) (string, error) {
	found := false
	for _, m := range anchorOpenPattern.FindAllStringSubmatch(content, -1) {
		if m[1] == anchor {
			found = true
			break
		}
	}
	if !found {
		return "", fmt.Errorf("%w: %s", ErrAnchorNotFound, anchor)
	}

	region := regexp.MustCompile(
		`(?ms)^\s*(?:#|//) ?ANCHOR: ?` + regexp.QuoteMeta(anchor) + `\s*\n(.*?)\n\s*(?:#|//) ?END: ?` + regexp.QuoteMeta(anchor),
	)
	match := region.FindStringSubmatch(content)
	if match == nil {
		return "", fmt.Errorf("%w: %s", ErrAnchorMalformed, anchor)
	}
	return anchorMarkerPattern.ReplaceAllString(match[1], ""), nil
}
