package physics

import "toycar/internal/vec"

// World holds a set of bodies and runs a simple 3D step: gravity, integration, AABB separation.
// It stands in for a full solver; only the body registry and velocities matter to gameplay.
type World struct {
	Gravity vec.Vec3
	bodies  []*Body
}

// NewWorld returns a world with gravity (0, -9.82, 0).
func NewWorld() *World {
	return &World{Gravity: vec.New(0, -9.82, 0)}
}

// AddBody registers b. Order is preserved; adding the same body twice is a no-op.
func (w *World) AddBody(b *Body) {
	for _, existing := range w.bodies {
		if existing == b {
			return
		}
	}
	w.bodies = append(w.bodies, b)
}

// RemoveBody unregisters b and reports whether it was registered.
func (w *World) RemoveBody(b *Body) bool {
	for i, existing := range w.bodies {
		if existing == b {
			copy(w.bodies[i:], w.bodies[i+1:])
			w.bodies[len(w.bodies)-1] = nil
			w.bodies = w.bodies[:len(w.bodies)-1]
			return true
		}
	}
	return false
}

// Bodies returns a copy of the registered bodies.
func (w *World) Bodies() []*Body {
	out := make([]*Body, len(w.bodies))
	copy(out, w.bodies)
	return out
}

// Len returns the number of registered bodies.
func (w *World) Len() int { return len(w.bodies) }

// penetrationAxis returns the overlap depth and axis (0=X, 1=Y, 2=Z) of minimum penetration,
// or (0, -1) when the boxes do not overlap.
func penetrationAxis(a, b vec.Box) (depth float32, axis int) {
	overlap := a.Max.Min(b.Max).Sub(a.Min.Max(b.Min))
	if overlap.X <= 0 || overlap.Y <= 0 || overlap.Z <= 0 {
		return 0, -1
	}
	depth, axis = overlap.X, 0
	if overlap.Y < depth {
		depth, axis = overlap.Y, 1
	}
	if overlap.Z < depth {
		depth, axis = overlap.Z, 2
	}
	return depth, axis
}

// Step advances the simulation by dt seconds: gravity and integration for dynamic bodies,
// then pairwise AABB separation along the axis of minimum penetration.
func (w *World) Step(dt float32) {
	for _, b := range w.bodies {
		if b.Static {
			continue
		}
		b.Velocity = b.Velocity.Add(w.Gravity.Scale(dt))
		b.Position = b.Position.Add(b.Velocity.Scale(dt))
	}

	for i := 0; i < len(w.bodies); i++ {
		bi := w.bodies[i]
		for j := i + 1; j < len(w.bodies); j++ {
			bj := w.bodies[j]
			if bi.Static && bj.Static {
				continue
			}
			depth, axis := penetrationAxis(bi.AABB(), bj.AABB())
			if axis < 0 {
				continue
			}
			// Push apart along axis; the lower body moves down, the upper one up.
			sign := float32(1)
			if axisOf(bi.Position, axis) > axisOf(bj.Position, axis) {
				sign = -1
			}
			var moveI, moveJ float32
			switch {
			case bi.Static:
				moveJ = depth
			case bj.Static:
				moveI = -depth
			default:
				total := bi.Mass + bj.Mass
				moveI = -depth * (bj.Mass / total)
				moveJ = depth * (bi.Mass / total)
			}
			bi.Position = setAxis(bi.Position, axis, axisOf(bi.Position, axis)+sign*moveI)
			bj.Position = setAxis(bj.Position, axis, axisOf(bj.Position, axis)+sign*moveJ)
			if !bi.Static {
				bi.Velocity = setAxis(bi.Velocity, axis, 0)
			}
			if !bj.Static {
				bj.Velocity = setAxis(bj.Velocity, axis, 0)
			}
		}
	}
}

func axisOf(v vec.Vec3, axis int) float32 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func setAxis(v vec.Vec3, axis int, x float32) vec.Vec3 {
	switch axis {
	case 0:
		v.X = x
	case 1:
		v.Y = x
	default:
		v.Z = x
	}
	return v
}
