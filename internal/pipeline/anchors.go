package pipeline

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-slug"
)

// AnchorSet produces heading anchors with the same slug rules the HTML
// converter uses for heading IDs, so table-of-contents links always resolve.
// Repeated titles receive a numeric suffix, matching auto heading ID
// deduplication.
type AnchorSet struct {
	used map[string]int
}

// NewAnchorSet returns an empty anchor generator.
func NewAnchorSet() *AnchorSet {
	return &AnchorSet{used: map[string]int{}}
}

// Anchor returns the unique anchor for the given heading title.
func (a *AnchorSet) Anchor(title string) string {
	base := SlugifyHeading(title)
	n := a.used[base]
	a.used[base] = n + 1
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, n)
}

// SlugifyHeading converts a heading title into its anchor form.
func SlugifyHeading(title string) string {
	normalized, err := slug.Normalize(strings.TrimSpace(title))
	if err == nil && normalized != "" {
		return normalized
	}
	// Fallback for titles go-slug rejects outright: lowercase, collapse
	// non-alphanumerics to single dashes.
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
