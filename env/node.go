package env

import "sync"

// Node is a handle to something the build graph can reference: a file,
// a directory, or an abstract entry.
type Node interface {
	String() string
}

// DependencyNode is a Node that can record explicit dependencies.
type DependencyNode interface {
	Node
	AddDependency(deps ...Node)
}

// NodeFactory creates the nodes an environment hands to builders,
// flag classification, and dependency parsing.
type NodeFactory interface {
	// File returns the node for a file path.
	File(name string) Node

	// Dir returns the node for a directory path.
	Dir(name string) Node

	// Entry returns the node for a path not yet known to be a file or
	// a directory.
	Entry(name string) Node

	// Alias returns the node for a named phony target that exists only
	// in the build graph.
	Alias(name string) Node
}

// PathFactory is the default NodeFactory. It creates [PathNode] values
// that carry a path and explicit dependencies but no build state.
// Nodes intern by path, so asking for the same path twice returns the
// same node and equality checks see one handle per path.
type PathFactory struct {
	mu    sync.Mutex
	nodes map[string]*PathNode
}

func (f *PathFactory) node(name string) Node {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.nodes == nil {
		f.nodes = make(map[string]*PathNode)
	}

	n, ok := f.nodes[name]
	if !ok {
		n = newPathNode(name)
		f.nodes[name] = n
	}

	return n
}

// File implements NodeFactory.
func (f *PathFactory) File(name string) Node { return f.node(name) }

// Dir implements NodeFactory.
func (f *PathFactory) Dir(name string) Node { return f.node(name) }

// Entry implements NodeFactory.
func (f *PathFactory) Entry(name string) Node { return f.node(name) }

// Alias implements NodeFactory. Aliases intern in the same namespace
// as paths, so an alias and a file with the same name are one node.
func (f *PathFactory) Alias(name string) Node { return f.node(name) }

// PathNode is a minimal dependency-tracking node identified by path.
type PathNode struct {
	name string
	deps []Node
	mu   sync.Mutex
}

func newPathNode(name string) *PathNode {
	return &PathNode{name: name}
}

// String returns the node's path.
func (n *PathNode) String() string { return n.name }

// AddDependency records nodes this one depends on.
func (n *PathNode) AddDependency(deps ...Node) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.deps = append(n.deps, deps...)
}

// Dependencies returns the recorded dependencies in insertion order.
func (n *PathNode) Dependencies() []Node {
	n.mu.Lock()
	defer n.mu.Unlock()

	deps := make([]Node, len(n.deps))
	copy(deps, n.deps)

	return deps
}
