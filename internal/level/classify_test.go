package level

import (
	"errors"
	"testing"

	"toycar/internal/physics"
	"toycar/internal/scene"
	"toycar/internal/vec"
)

func strPtr(s string) *string { return &s }

func TestClassify(t *testing.T) {
	c := &Classifier{Assets: testRegistry(t), CollectiblePrefix: "coin"}
	tests := []struct {
		name    string
		rec     Record
		want    Category
		wantErr any
	}{
		{"collectible", Record{Name: strPtr("coin001")}, Collectible, nil},
		{"obstacle", Record{Name: strPtr("block001")}, Obstacle, nil},
		{"signage", Record{Name: strPtr("sign001")}, Signage, nil},
		{"unknown", Record{Name: strPtr("coin999")}, Unknown, &UnknownModelError{}},
		{"nameless", Record{X: 1}, Unknown, &MissingNameError{}},
		{"empty name", Record{Name: strPtr(""), X: 1}, Unknown, &MissingNameError{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Classify(tt.rec)
			if got.Category != tt.want {
				t.Fatalf("Category = %s, want %s", got.Category, tt.want)
			}
			switch tt.wantErr.(type) {
			case nil:
				if err != nil {
					t.Fatalf("err = %v", err)
				}
			case *UnknownModelError:
				var e *UnknownModelError
				if !errors.As(err, &e) || e.Name != "coin999" {
					t.Fatalf("err = %v", err)
				}
			case *MissingNameError:
				var e *MissingNameError
				if !errors.As(err, &e) || e.Record.X != 1 {
					t.Fatalf("err = %v", err)
				}
			}
		})
	}
}

func TestResolveShapes(t *testing.T) {
	r := NewShapeResolver(testRegistry(t))
	if r.Strategy("block001") != physics.ShapeTrimesh || r.Strategy("wall001") != physics.ShapeBox {
		t.Fatal("wrong strategy table")
	}
	if r.Strategy("missing") != physics.ShapeBox {
		t.Fatal("unmapped names default to box")
	}

	wall := scene.NewGroup("wall001")
	wall.Add(scene.NewMesh("Wall", scene.BoxMesh(vec.New(1, 2, 0.5)), nil))
	box, ok := r.Resolve("wall001", wall).(*physics.Box)
	if !ok || box.HalfExtents != vec.New(0.5, 1, 0.25) {
		t.Fatalf("box = %+v", box)
	}

	road := scene.NewGroup("block001")
	road.Add(scene.NewMesh("Road", scene.BoxMesh(vec.New(2, 0.2, 2)), nil))
	tm, ok := r.Resolve("block001", road).(*physics.Trimesh)
	if !ok || tm.Triangles() != 12 {
		t.Fatalf("trimesh = %+v", tm)
	}
}

func TestResolveDegenerateFallsBack(t *testing.T) {
	r := NewShapeResolver(testRegistry(t))
	flat := scene.NewGroup("block001")
	flat.Add(scene.NewMesh("Point", &scene.Mesh{
		Vertices: []vec.Vec3{{}, {}, {}},
		Indices:  []uint32{0, 1, 2},
	}, nil))

	for _, tt := range []struct {
		key   string
		model *scene.Node
	}{
		{"block001", scene.NewGroup("empty")},
		{"block001", flat},
		{"wall001", scene.NewGroup("empty")},
		{"wall001", nil},
	} {
		box, ok := r.Resolve(tt.key, tt.model).(*physics.Box)
		if !ok || box.HalfExtents != vec.New(0.1, 0.1, 0.1) {
			t.Fatalf("Resolve(%s) = %+v, want fallback box", tt.key, box)
		}
	}
}

func TestDecodePayloads(t *testing.T) {
	recs, err := DecodePlacements([]byte(`[{"name":"a","x":1,"y":2,"z":3,"_id":"x"},{"name":null,"x":0,"y":0,"z":0}]`))
	if err != nil || len(recs) != 2 || recs[0].NameOrEmpty() != "a" || recs[1].Name != nil {
		t.Fatalf("DecodePlacements = %+v, %v", recs, err)
	}
	for _, bad := range []string{`{}`, `[{"name":5}]`, `[{"x":"1"}]`, `not json`} {
		if _, err := DecodePlacements([]byte(bad)); err == nil {
			t.Errorf("DecodePlacements(%s) should fail", bad)
		}
	}
	set, err := DecodeExclusions([]byte(`["coin001","coin002"]`))
	if err != nil || !set["coin002"] || len(set) != 2 {
		t.Fatalf("DecodeExclusions = %v, %v", set, err)
	}
	if _, err := DecodeExclusions([]byte(`[1]`)); err == nil {
		t.Fatal("numeric exclusion should fail")
	}
}
