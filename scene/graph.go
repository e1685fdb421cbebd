package scene

// Graph owns the world root. Everything reachable from Root is part of the
// rendered scene.
type Graph struct {
	Root *Node
}

// NewGraph creates an empty graph with a world root node.
func NewGraph() *Graph {
	return &Graph{Root: NewNode("world")}
}

// Len returns the number of live nodes including the root.
func (g *Graph) Len() int {
	n := 0
	g.Root.Walk(func(*Node) bool {
		n++
		return true
	})
	return n
}

// Find returns the first node with the given name in depth-first order.
func (g *Graph) Find(name string) *Node {
	var found *Node
	g.Root.Walk(func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.Name == name {
			found = n
			return false
		}
		return true
	})
	return found
}

// Contains reports whether n is owned, directly or not, by the root.
func (g *Graph) Contains(n *Node) bool {
	return n != nil && !n.destroyed && n.Root() == g.Root
}
