package prize

import (
	"testing"

	"toycar/internal/audio"
	"toycar/internal/narrate"
	"toycar/internal/scene"
	"toycar/internal/vec"
)

func coinModel() *scene.Node {
	model := scene.NewGroup("coin001")
	coin := scene.NewMesh("Coin", scene.BoxMesh(vec.New(0.6, 0.6, 0.1)), &scene.Material{})
	coin.Position = vec.New(5, 5, 5)
	model.Add(coin)
	return model
}

func TestNewAttachesResetClone(t *testing.T) {
	root := scene.New()
	model := coinModel()
	p, err := New(Options{Model: model, Position: vec.New(1, 0, 1), Scene: root})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Pivot().Parent() != root {
		t.Fatal("pivot not attached to scene")
	}
	if got := p.Position(); got != vec.New(1, 0, 1) {
		t.Fatalf("Position = %+v", got)
	}
	visual := p.Pivot().Children()[0]
	if visual == model.Children()[0] {
		t.Fatal("visual must be a clone")
	}
	if visual.Position != (vec.Vec3{}) {
		t.Fatalf("clone transform not reset: %+v", visual.Position)
	}
	if model.Children()[0].Position != vec.New(5, 5, 5) {
		t.Fatal("template was mutated")
	}
}

func TestUpdateSpins(t *testing.T) {
	p, _ := New(Options{Model: coinModel()})
	p.Update(2)
	if got := p.Pivot().Rotation.Y; got != 3 {
		t.Fatalf("yaw = %v, want 3", got)
	}
	p.Collect()
	p.Update(2)
	if got := p.Pivot().Rotation.Y; got != 3 {
		t.Fatalf("collected prize spun to %v", got)
	}
}

func TestCollectIdempotent(t *testing.T) {
	root := scene.New()
	var sounds audio.Recorder
	var voice narrate.Recorder
	p, _ := New(Options{Model: coinModel(), Scene: root, Audio: &sounds, Narrator: &voice})

	p.Collect()
	p.Collect()

	if !p.Collected() {
		t.Fatal("Collected = false")
	}
	if root.Len() != 0 {
		t.Fatalf("scene still has %d children", root.Len())
	}
	if n := sounds.Count(audio.CuePrize); n != 1 {
		t.Fatalf("prize cue played %d times", n)
	}
	if got := voice.Texts(); len(got) != 1 || got[0] != "Premio recogido." {
		t.Fatalf("narration = %q", got)
	}
}

func TestNewRequiresModel(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestRegistrySnapshot(t *testing.T) {
	var r Registry
	a, _ := New(Options{Model: coinModel()})
	b, _ := New(Options{Model: coinModel()})
	c, _ := New(Options{Model: coinModel()})
	r.Add(a)
	r.Add(b)
	r.Add(c)

	visited := 0
	for _, p := range r.Snapshot() {
		visited++
		r.Remove(p)
	}
	if visited != 3 || r.Len() != 0 {
		t.Fatalf("visited %d, left %d", visited, r.Len())
	}
	if r.Remove(a) {
		t.Fatal("Remove of absent prize = true")
	}
}
