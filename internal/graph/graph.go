package graph

import (
	"errors"
	"fmt"
	"sort"
)

// ErrDuplicateTarget indicates two nodes claim the same output path.
var ErrDuplicateTarget = errors.New("graph: duplicate target path")

// ErrUnknownTarget indicates a dependency registration referenced a target no
// node produces.
var ErrUnknownTarget = errors.New("graph: unknown target path")

// ErrCycle indicates the dependency relation is not a partial order. The
// builder generates graphs top-down from non-overlapping categories, so this
// is unreachable in practice, but the ordering code still detects it rather
// than looping.
var ErrCycle = errors.New("graph: dependency cycle")

// Graph holds the build nodes for one invocation, indexed by target path.
type Graph struct {
	nodes    []*Node
	byTarget map[string]*Node
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{byTarget: map[string]*Node{}}
}

// Add inserts a node, enforcing target uniqueness.
func (g *Graph) Add(node *Node) error {
	if _, exists := g.byTarget[node.Target]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTarget, node.Target)
	}
	g.nodes = append(g.nodes, node)
	g.byTarget[node.Target] = node
	return nil
}

// Node returns the node producing the given target, or nil.
func (g *Graph) Node(target string) *Node {
	return g.byTarget[target]
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	return append([]*Node(nil), g.nodes...)
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// DependOn registers extra source paths on an existing node. This is how the
// coarse media dependency is expressed: every HTML node gains the full media
// set as sources, so any media edit invalidates every document.
func (g *Graph) DependOn(target string, sources ...string) error {
	node, ok := g.byTarget[target]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTarget, target)
	}
	for _, src := range sources {
		if !node.DependsOnPath(src) {
			node.Sources = append(node.Sources, src)
		}
	}
	return nil
}

// dependencies returns the nodes whose targets feed the given node.
func (g *Graph) dependencies(node *Node) []*Node {
	var deps []*Node
	for _, src := range node.Sources {
		if dep, ok := g.byTarget[src]; ok {
			deps = append(deps, dep)
		}
	}
	return deps
}

// Levels partitions the graph into topological layers: every node's
// dependencies live in strictly earlier layers, so nodes within one layer are
// mutually independent and may run concurrently. Node order inside a layer is
// sorted by target for determinism.
func (g *Graph) Levels() ([][]*Node, error) {
	depth := map[*Node]int{}
	remaining := map[*Node]int{}
	dependents := map[*Node][]*Node{}

	for _, node := range g.nodes {
		deps := g.dependencies(node)
		remaining[node] = len(deps)
		for _, dep := range deps {
			dependents[dep] = append(dependents[dep], node)
		}
	}

	queue := make([]*Node, 0, len(g.nodes))
	for _, node := range g.nodes {
		if remaining[node] == 0 {
			queue = append(queue, node)
			depth[node] = 0
		}
	}

	resolved := 0
	maxDepth := 0
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		resolved++
		if depth[node] > maxDepth {
			maxDepth = depth[node]
		}
		for _, next := range dependents[node] {
			remaining[next]--
			if d := depth[node] + 1; d > depth[next] {
				depth[next] = d
			}
			if remaining[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	if resolved != len(g.nodes) {
		return nil, ErrCycle
	}

	levels := make([][]*Node, maxDepth+1)
	for _, node := range g.nodes {
		levels[depth[node]] = append(levels[depth[node]], node)
	}
	for _, level := range levels {
		sort.Slice(level, func(i, j int) bool { return level[i].Target < level[j].Target })
	}
	return levels, nil
}
