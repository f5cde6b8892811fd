package level

import (
	"toycar/internal/assets"
	"toycar/internal/physics"
	"toycar/internal/scene"
	"toycar/internal/vec"
)

// fallbackHalfExtent sizes the box used for models without usable geometry.
const fallbackHalfExtent = 0.1

// ShapeResolver picks a collision shape per asset from a static name→strategy table.
type ShapeResolver struct {
	strategies map[string]physics.ShapeKind
}

// NewShapeResolver takes the strategy table from the catalog.
func NewShapeResolver(reg *assets.Registry) *ShapeResolver {
	r := &ShapeResolver{strategies: make(map[string]physics.ShapeKind)}
	if reg != nil {
		for _, name := range reg.Names() {
			e, _ := reg.Lookup(name)
			r.strategies[name] = e.Shape
		}
	}
	return r
}

// Strategy returns the configured strategy for key, box when none is set.
func (r *ShapeResolver) Strategy(key string) physics.ShapeKind {
	if k, ok := r.strategies[key]; ok && k != "" {
		return k
	}
	return physics.ShapeBox
}

// Resolve builds the shape for model in its local space. Degenerate geometry falls
// back to a small box instead of failing.
func (r *ShapeResolver) Resolve(key string, model *scene.Node) physics.Shape {
	if model == nil {
		return fallbackBox()
	}
	switch r.Strategy(key) {
	case physics.ShapeTrimesh:
		geom := model.Geometry()
		if geom.Triangles() == 0 || degenerate(model.LocalBounds()) {
			return fallbackBox()
		}
		return &physics.Trimesh{Vertices: geom.Vertices, Indices: geom.Indices}
	default:
		b := model.LocalBounds()
		if degenerate(b) {
			return fallbackBox()
		}
		return &physics.Box{HalfExtents: b.Size().Scale(0.5), Offset: b.Center()}
	}
}

func degenerate(b vec.Box) bool {
	if b.IsEmpty() || !b.Min.IsFinite() || !b.Max.IsFinite() {
		return true
	}
	return b.Size() == vec.Vec3{}
}

func fallbackBox() *physics.Box {
	return &physics.Box{HalfExtents: vec.New(fallbackHalfExtent, fallbackHalfExtent, fallbackHalfExtent)}
}
