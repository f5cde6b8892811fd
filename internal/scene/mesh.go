package scene

import (
	"image"

	"toycar/internal/vec"
)

// Mesh is an indexed triangle list in the owning node's local space.
type Mesh struct {
	Vertices []vec.Vec3
	Indices  []uint32
}

// BoxMesh returns a cube of the given size centered on the origin.
func BoxMesh(size vec.Vec3) *Mesh {
	h := size.Scale(0.5)
	v := []vec.Vec3{
		{X: -h.X, Y: -h.Y, Z: -h.Z}, {X: h.X, Y: -h.Y, Z: -h.Z}, {X: h.X, Y: h.Y, Z: -h.Z}, {X: -h.X, Y: h.Y, Z: -h.Z},
		{X: -h.X, Y: -h.Y, Z: h.Z}, {X: h.X, Y: -h.Y, Z: h.Z}, {X: h.X, Y: h.Y, Z: h.Z}, {X: -h.X, Y: h.Y, Z: h.Z},
	}
	idx := []uint32{
		0, 2, 1, 0, 3, 2, // back
		4, 5, 6, 4, 6, 7, // front
		0, 1, 5, 0, 5, 4, // bottom
		3, 6, 2, 3, 7, 6, // top
		0, 4, 7, 0, 7, 3, // left
		1, 2, 6, 1, 6, 5, // right
	}
	return &Mesh{Vertices: v, Indices: idx}
}

// Triangles returns the number of complete triangles.
func (m *Mesh) Triangles() int {
	if m == nil {
		return 0
	}
	return len(m.Indices) / 3
}

// Wrap is a texture addressing mode.
type Wrap int

const (
	WrapRepeat Wrap = iota
	WrapClampToEdge
	WrapMirroredRepeat
)

// Texture is a decoded image bound to a material. Textures are immutable once built
// and may be shared between materials.
type Texture struct {
	Name  string
	Image image.Image
}

// Material is the surface description the renderer consumes.
type Material struct {
	Color      [4]uint8
	Texture    *Texture `copier:"-"`
	WrapS      Wrap
	WrapT      Wrap
	Anisotropy int
	DoubleSide bool
}

// Geometry collects every mesh of n's subtree into one triangle list expressed in
// n's local space (n's own transform is not applied).
func (n *Node) Geometry() *Mesh {
	out := &Mesh{}
	n.collect(out, func(p vec.Vec3) vec.Vec3 { return p })
	return out
}

func (n *Node) collect(out *Mesh, toRoot func(vec.Vec3) vec.Vec3) {
	if n.Mesh != nil && len(n.Mesh.Vertices) > 0 {
		base := uint32(len(out.Vertices))
		for _, v := range n.Mesh.Vertices {
			out.Vertices = append(out.Vertices, toRoot(v))
		}
		for i := 0; i+2 < len(n.Mesh.Indices); i += 3 {
			a, b, c := n.Mesh.Indices[i], n.Mesh.Indices[i+1], n.Mesh.Indices[i+2]
			if int(a) >= len(n.Mesh.Vertices) || int(b) >= len(n.Mesh.Vertices) || int(c) >= len(n.Mesh.Vertices) {
				continue
			}
			out.Indices = append(out.Indices, base+a, base+b, base+c)
		}
	}
	for _, c := range n.children {
		child := c
		child.collect(out, func(p vec.Vec3) vec.Vec3 { return toRoot(child.apply(p)) })
	}
}

// LocalBounds returns the bounding box of n's subtree in n's local space.
func (n *Node) LocalBounds() vec.Box {
	b := vec.EmptyBox()
	for _, v := range n.Geometry().Vertices {
		b = b.Extend(v)
	}
	return b
}

// WorldBounds returns the bounding box of n's subtree in scene coordinates.
func (n *Node) WorldBounds() vec.Box {
	b := vec.EmptyBox()
	for _, v := range n.Geometry().Vertices {
		b = b.Extend(n.LocalToWorld(v))
	}
	return b
}
