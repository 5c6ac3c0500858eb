package graph

import "os"

// IsStale reports whether a node's target must be (re)built: the target is
// missing, or at least one source is newer than it. The check is a pure
// filesystem query with no side effects, so callers may probe it repeatedly;
// a missing source counts as stale and lets execution surface the real error.
func IsStale(node *Node) bool {
	targetInfo, err := os.Stat(node.Target)
	if err != nil {
		return true
	}
	targetTime := targetInfo.ModTime()
	for _, src := range node.Sources {
		srcInfo, err := os.Stat(src)
		if err != nil {
			return true
		}
		if srcInfo.ModTime().After(targetTime) {
			return true
		}
	}
	return false
}
