package physics

import (
	"github.com/google/uuid"

	"toycar/internal/vec"
)

// Body is a 3D rigid body with position, velocity, orientation and a collision shape.
// Static bodies do not move and are not affected by gravity; a body with zero mass is static.
type Body struct {
	ID          uuid.UUID
	Name        string
	Position    vec.Vec3
	Velocity    vec.Vec3
	Orientation vec.Quat
	Shape       Shape
	Mass        float32
	Static      bool
	// Material names the contact material (e.g. "obstacle"), resolved by the solver.
	Material string
}

// BodyOptions configures NewBody.
type BodyOptions struct {
	Name        string
	Position    vec.Vec3
	Orientation vec.Quat
	Shape       Shape
	Mass        float32
	Material    string
}

// NewBody returns a body at rest. A zero orientation becomes the identity and a nil
// shape a unit box; mass <= 0 makes the body static.
func NewBody(opts BodyOptions) *Body {
	q := opts.Orientation
	if q == (vec.Quat{}) {
		q = vec.Identity
	}
	shape := opts.Shape
	if shape == nil {
		shape = &Box{HalfExtents: vec.New(0.5, 0.5, 0.5)}
	}
	mass := opts.Mass
	if mass < 0 {
		mass = 0
	}
	return &Body{
		ID:          uuid.New(),
		Name:        opts.Name,
		Position:    opts.Position,
		Orientation: q,
		Shape:       shape,
		Mass:        mass,
		Static:      mass == 0,
		Material:    opts.Material,
	}
}

// Speed returns the magnitude of the body's velocity.
func (b *Body) Speed() float32 {
	return b.Velocity.Len()
}

// AABB returns the world-space broad-phase box (orientation is ignored).
func (b *Body) AABB() vec.Box {
	local := b.Shape.Bounds()
	if local.IsEmpty() {
		return vec.Box{Min: b.Position, Max: b.Position}
	}
	return vec.Box{Min: local.Min.Add(b.Position), Max: local.Max.Add(b.Position)}
}

// ApplyImpulse changes velocity by impulse/mass. Static bodies ignore impulses.
func (b *Body) ApplyImpulse(impulse vec.Vec3) {
	if b.Static || b.Mass == 0 {
		return
	}
	b.Velocity = b.Velocity.Add(impulse.Scale(1 / b.Mass))
}
