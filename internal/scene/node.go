package scene

import (
	"fmt"

	"github.com/jinzhu/copier"

	"toycar/internal/vec"
)

// Node is one element of the scene graph: a group, a mesh, or both. Transform fields
// are local to the parent. Children are kept in insertion order.
type Node struct {
	Name     string
	Position vec.Vec3
	Rotation vec.Vec3 // Euler radians, XYZ
	Scale    vec.Vec3
	Visible  bool

	Mesh     *Mesh
	Material *Material

	parent   *Node
	children []*Node
}

// New returns the scene root.
func New() *Node {
	return NewGroup("scene")
}

// NewGroup returns an empty node with identity transform.
func NewGroup(name string) *Node {
	return &Node{Name: name, Scale: vec.One, Visible: true}
}

// NewMesh returns a node drawing mesh with material.
func NewMesh(name string, mesh *Mesh, material *Material) *Node {
	n := NewGroup(name)
	n.Mesh = mesh
	n.Material = material
	return n
}

// Add attaches child as the last child of n, detaching it from any previous parent.
func (n *Node) Add(child *Node) {
	if child == nil || child == n {
		return
	}
	if child.parent != nil {
		child.parent.Remove(child)
	}
	child.parent = n
	n.children = append(n.children, child)
}

// Remove detaches child. It reports false when child is not a direct child of n.
func (n *Node) Remove(child *Node) bool {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			child.parent = nil
			return true
		}
	}
	return false
}

// Parent returns the node n is attached to, or nil.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Len returns the number of direct children.
func (n *Node) Len() int { return len(n.children) }

// Traverse visits n and its descendants depth-first, parents before children.
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.Traverse(fn)
	}
}

// FindByName returns the first node named name in depth-first order, n included.
func (n *Node) FindByName(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, c := range n.children {
		if found := c.FindByName(name); found != nil {
			return found
		}
	}
	return nil
}

// ResetTransform puts n at its parent's origin with no rotation and unit scale.
func (n *Node) ResetTransform() {
	n.Position = vec.Vec3{}
	n.Rotation = vec.Vec3{}
	n.Scale = vec.One
}

// Clone returns a detached deep copy of n and its subtree. Meshes and materials are
// copied, never shared, so a clone can be decorated without touching the source asset.
func (n *Node) Clone() (*Node, error) {
	dup := &Node{}
	if err := copier.CopyWithOption(dup, n, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("scene: clone %q: %w", n.Name, err)
	}
	dup.parent = nil
	if n.Mesh != nil {
		dup.Mesh = &Mesh{
			Vertices: append([]vec.Vec3(nil), n.Mesh.Vertices...),
			Indices:  append([]uint32(nil), n.Mesh.Indices...),
		}
	}
	if n.Material != nil && dup.Material != nil {
		dup.Material.Texture = n.Material.Texture
	}
	dup.children = make([]*Node, 0, len(n.children))
	for _, c := range n.children {
		cc, err := c.Clone()
		if err != nil {
			return nil, err
		}
		cc.parent = dup
		dup.children = append(dup.children, cc)
	}
	return dup, nil
}

// Orientation returns the local rotation as a quaternion.
func (n *Node) Orientation() vec.Quat {
	return vec.QuatFromEuler(n.Rotation.X, n.Rotation.Y, n.Rotation.Z)
}

// apply maps a point from n's local space into its parent's space.
func (n *Node) apply(p vec.Vec3) vec.Vec3 {
	return n.Orientation().Rotate(p.Mul(n.Scale)).Add(n.Position)
}

// WorldPosition returns n's origin in scene coordinates.
func (n *Node) WorldPosition() vec.Vec3 {
	p := n.Position
	for a := n.parent; a != nil; a = a.parent {
		p = a.apply(p)
	}
	return p
}

// LocalToWorld maps a point in n's local space to scene coordinates.
func (n *Node) LocalToWorld(p vec.Vec3) vec.Vec3 {
	for a := n; a != nil; a = a.parent {
		p = a.apply(p)
	}
	return p
}
