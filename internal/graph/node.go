package graph

// Action enumerates the closed set of build node kinds. Execution dispatches
// on this tag with an explicit switch; there is no runtime registry of
// builders.
type Action int

const (
	// ActionInstall copies a file to its target path.
	ActionInstall Action = iota + 1
	// ActionTransform runs the document pipeline and writes the transformed
	// markdown working copy to staging.
	ActionTransform
	// ActionConvert renders a transformed working copy into a standalone
	// HTML page.
	ActionConvert
	// ActionPackage archives an interactive project directory into a zip.
	ActionPackage
	// ActionExport produces a learning-platform export bundle from an HTML
	// artifact.
	ActionExport
	// ActionEpub renders the e-book bundle from the transformed working
	// copy set.
	ActionEpub
)

// String returns the action's wire-friendly name.
func (a Action) String() string {
	switch a {
	case ActionInstall:
		return "install"
	case ActionTransform:
		return "transform"
	case ActionConvert:
		return "convert"
	case ActionPackage:
		return "package"
	case ActionExport:
		return "export"
	case ActionEpub:
		return "epub"
	default:
		return "unknown"
	}
}

// Node is one derived-artifact production step: an action reading the ordered
// source paths and writing exactly one target path. Targets are unique across
// a graph, which is what guarantees one writer per output file.
type Node struct {
	Target  string
	Sources []string
	Action  Action
}

// DependsOnPath reports whether the node lists the given path as a source.
func (n *Node) DependsOnPath(path string) bool {
	for _, src := range n.Sources {
		if src == path {
			return true
		}
	}
	return false
}
