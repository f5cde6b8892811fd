package physics

import "toycar/internal/vec"

// ShapeKind names a collision shape strategy.
type ShapeKind string

const (
	ShapeBox     ShapeKind = "box"
	ShapeTrimesh ShapeKind = "trimesh"
)

// Shape is collision geometry in body-local space.
type Shape interface {
	Kind() ShapeKind
	// Bounds is the local axis-aligned box used by the broad phase.
	Bounds() vec.Box
}

// Box approximates a model by its bounding box.
type Box struct {
	HalfExtents vec.Vec3
	Offset      vec.Vec3 // box center relative to the body origin
}

func (b *Box) Kind() ShapeKind { return ShapeBox }

func (b *Box) Bounds() vec.Box {
	return vec.Box{Min: b.Offset.Sub(b.HalfExtents), Max: b.Offset.Add(b.HalfExtents)}
}

// Trimesh is an exact triangle mesh, for non-convex pieces such as ramps and roads.
type Trimesh struct {
	Vertices []vec.Vec3
	Indices  []uint32
}

func (t *Trimesh) Kind() ShapeKind { return ShapeTrimesh }

func (t *Trimesh) Bounds() vec.Box {
	b := vec.EmptyBox()
	for _, v := range t.Vertices {
		b = b.Extend(v)
	}
	return b
}

// Triangles returns the number of triangles.
func (t *Trimesh) Triangles() int { return len(t.Indices) / 3 }
