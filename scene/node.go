// Package scene is the ownership graph of the orrery: a tree of nodes where
// every node has at most one parent and its world pose is the composition
// of its local pose with all of its ancestors' local poses.
package scene

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrCycle is returned when a node would become its own ancestor.
	ErrCycle = errors.New("scene: node cannot own one of its ancestors")
	// ErrNilNode is returned when a nil node is attached.
	ErrNilNode = errors.New("scene: nil node")
)

// Node is a single element of the scene graph. Its exported pose fields
// are local to its parent.
type Node struct {
	Name string

	Position r3.Vec
	Rotation Euler

	// Geometry and Material are nil for pure ownership nodes (pivots,
	// groups, the root).
	Geometry Geometry
	Material *Material
	Light    *PointLight

	parent    *Node
	children  []*Node
	destroyed bool
}

// NewNode creates a detached node with the given name.
func NewNode(name string) *Node {
	return &Node{Name: name}
}

// NewMesh creates a detached node carrying geometry and a material.
func NewMesh(name string, geom Geometry, mat *Material) *Node {
	return &Node{Name: name, Geometry: geom, Material: mat}
}

// Parent returns the owning node, or nil for a root or detached node.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a snapshot of the nodes owned by n.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Destroyed reports whether the node was removed with Destroy.
func (n *Node) Destroyed() bool { return n.destroyed }

// AddChild transfers exclusive ownership of child to n. A child that is
// already owned elsewhere is detached from its previous parent first.
func (n *Node) AddChild(child *Node) error {
	if child == nil {
		return ErrNilNode
	}
	for p := n; p != nil; p = p.parent {
		if p == child {
			return fmt.Errorf("add %q under %q: %w", child.Name, n.Name, ErrCycle)
		}
	}
	child.Detach()
	child.parent = n
	child.destroyed = false
	n.children = append(n.children, child)
	return nil
}

// MustAddChild is AddChild for construction code where a failure is a
// programming error.
func (n *Node) MustAddChild(child *Node) *Node {
	if err := n.AddChild(child); err != nil {
		panic(err)
	}
	return child
}

// Detach removes n from its parent, keeping its own subtree intact.
func (n *Node) Detach() {
	p := n.parent
	if p == nil {
		return
	}
	for i, c := range p.children {
		if c == n {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	n.parent = nil
}

// Destroy detaches n and marks its whole subtree destroyed. Destroying a
// host destroys everything it owns.
func (n *Node) Destroy() {
	n.Detach()
	n.Walk(func(d *Node) bool {
		d.destroyed = true
		return true
	})
}

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the visited node's subtree.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// Local returns the node's pose relative to its parent.
func (n *Node) Local() Transform {
	return Transform{Rotation: n.Rotation.Rotation(), Translation: n.Position}
}

// World composes the local poses from the root down to n.
func (n *Node) World() Transform {
	t := n.Local()
	for p := n.parent; p != nil; p = p.parent {
		t = p.Local().Compose(t)
	}
	return t
}

// WorldPosition is the world-space origin of the node.
func (n *Node) WorldPosition() r3.Vec {
	return n.World().Translation
}

// Root returns the topmost ancestor of n.
func (n *Node) Root() *Node {
	r := n
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Depth is the number of ancestors above n.
func (n *Node) Depth() int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}
