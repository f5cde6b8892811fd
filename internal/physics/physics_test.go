package physics

import (
	"testing"

	"toycar/internal/vec"
)

func TestNewBodyDefaults(t *testing.T) {
	b := NewBody(BodyOptions{Name: "block001"})
	if !b.Static {
		t.Fatal("zero-mass body should be static")
	}
	if b.Orientation != vec.Identity {
		t.Fatalf("orientation = %+v, want identity", b.Orientation)
	}
	if b.Shape.Kind() != ShapeBox {
		t.Fatalf("default shape = %s", b.Shape.Kind())
	}
	if b.ID == NewBody(BodyOptions{}).ID {
		t.Fatal("body IDs should be unique")
	}
}

func TestAddRemoveBody(t *testing.T) {
	w := NewWorld()
	a := NewBody(BodyOptions{Name: "a"})
	b := NewBody(BodyOptions{Name: "b"})
	w.AddBody(a)
	w.AddBody(b)
	w.AddBody(a)
	if w.Len() != 2 {
		t.Fatalf("Len = %d, want 2", w.Len())
	}
	if !w.RemoveBody(a) {
		t.Fatal("RemoveBody(a) = false")
	}
	if w.RemoveBody(a) {
		t.Fatal("second RemoveBody(a) = true")
	}
	if got := w.Bodies(); len(got) != 1 || got[0] != b {
		t.Fatalf("Bodies = %v", got)
	}
}

func TestStepRestsOnStaticGround(t *testing.T) {
	w := NewWorld()
	ground := NewBody(BodyOptions{
		Name:  "ground",
		Shape: &Box{HalfExtents: vec.New(50, 0.5, 50)},
		// top face at y=0
		Position: vec.New(0, -0.5, 0),
	})
	car := NewBody(BodyOptions{
		Name:     "car",
		Mass:     1,
		Shape:    &Box{HalfExtents: vec.New(0.5, 0.25, 0.5)},
		Position: vec.New(0, 1, 0),
	})
	w.AddBody(ground)
	w.AddBody(car)
	for i := 0; i < 240; i++ {
		w.Step(1.0 / 60)
	}
	if car.Position.Y < 0.2 || car.Position.Y > 0.3 {
		t.Fatalf("car y = %v, want resting near 0.25", car.Position.Y)
	}
	if ground.Position != vec.New(0, -0.5, 0) {
		t.Fatalf("static ground moved to %+v", ground.Position)
	}
}

func TestSpeed(t *testing.T) {
	b := NewBody(BodyOptions{Mass: 2})
	b.ApplyImpulse(vec.New(0, 0, 2))
	if got := b.Speed(); got != 1 {
		t.Fatalf("Speed = %v, want 1", got)
	}
	s := NewBody(BodyOptions{})
	s.ApplyImpulse(vec.New(1, 0, 0))
	if s.Speed() != 0 {
		t.Fatal("static body should ignore impulses")
	}
}

func TestTrimeshBounds(t *testing.T) {
	tm := &Trimesh{
		Vertices: []vec.Vec3{vec.New(-1, 0, 0), vec.New(1, 2, 0), vec.New(0, 0, 3)},
		Indices:  []uint32{0, 1, 2},
	}
	b := tm.Bounds()
	if b.Min != vec.New(-1, 0, 0) || b.Max != vec.New(1, 2, 3) {
		t.Fatalf("bounds = %+v", b)
	}
	if tm.Triangles() != 1 {
		t.Fatalf("Triangles = %d", tm.Triangles())
	}
}
