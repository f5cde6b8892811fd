package assets

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"toycar/internal/physics"
	"toycar/internal/scene"
	"toycar/internal/vec"
)

// CatalogPath is the default asset catalog, relative to the working directory.
const CatalogPath = "assets/catalog.yaml"

// Catalog is the YAML form of assets/catalog.yaml: every model a level may place, keyed by
// the name used in placement records.
type Catalog struct {
	Models map[string]ModelDef `yaml:"models"`
}

// ModelDef describes one placeable model.
type ModelDef struct {
	// Shape selects the collision strategy: "box" (default) or "trimesh".
	Shape   physics.ShapeKind `yaml:"shape,omitempty"`
	Signage bool              `yaml:"signage,omitempty"`
	Nodes   []NodeDef         `yaml:"nodes"`
}

// NodeDef is a mesh part of a model. Either Box (a cube of that size) or explicit
// Vertices/Indices give its geometry; a node with neither is an empty group.
type NodeDef struct {
	Name     string       `yaml:"name"`
	Box      [3]float32   `yaml:"box,omitempty"`
	Vertices [][3]float32 `yaml:"vertices,omitempty"`
	Indices  []uint32     `yaml:"indices,omitempty"`
	Position [3]float32   `yaml:"position,omitempty"`
	Rotation [3]float32   `yaml:"rotation,omitempty"`
	Color    string       `yaml:"color,omitempty"`
}

// ParseCatalog decodes catalog YAML.
func ParseCatalog(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("assets: %w", err)
	}
	for name, m := range c.Models {
		switch m.Shape {
		case "", physics.ShapeBox, physics.ShapeTrimesh:
		default:
			return Catalog{}, fmt.Errorf("assets: model %q: unknown shape %q", name, m.Shape)
		}
	}
	return c, nil
}

// LoadRegistry reads and builds the catalog at path (CatalogPath when empty).
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		path = CatalogPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("assets: %w", err)
	}
	c, err := ParseCatalog(data)
	if err != nil {
		return nil, err
	}
	return c.Build()
}

// Build turns every model definition into a scene subtree and registers it.
func (c Catalog) Build() (*Registry, error) {
	r := NewRegistry()
	names := make([]string, 0, len(c.Models))
	for name := range c.Models {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		def := c.Models[name]
		model := scene.NewGroup(name)
		for _, nd := range def.Nodes {
			n, err := nd.build()
			if err != nil {
				return nil, fmt.Errorf("assets: model %q: %w", name, err)
			}
			model.Add(n)
		}
		shape := def.Shape
		if shape == "" {
			shape = physics.ShapeBox
		}
		r.Add(Entry{Name: name, Model: model, Shape: shape, Signage: def.Signage})
	}
	return r, nil
}

func (nd NodeDef) build() (*scene.Node, error) {
	var mesh *scene.Mesh
	switch {
	case len(nd.Vertices) > 0:
		mesh = &scene.Mesh{Indices: nd.Indices}
		for _, v := range nd.Vertices {
			mesh.Vertices = append(mesh.Vertices, vec.FromArray(v))
		}
		for _, i := range nd.Indices {
			if int(i) >= len(mesh.Vertices) {
				return nil, fmt.Errorf("node %q: index %d out of range", nd.Name, i)
			}
		}
	case nd.Box != [3]float32{}:
		mesh = scene.BoxMesh(vec.FromArray(nd.Box))
	}
	var n *scene.Node
	if mesh == nil {
		n = scene.NewGroup(nd.Name)
	} else {
		color, err := parseColor(nd.Color)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", nd.Name, err)
		}
		n = scene.NewMesh(nd.Name, mesh, &scene.Material{Color: color})
	}
	n.Position = vec.FromArray(nd.Position)
	n.Rotation = vec.FromArray(nd.Rotation)
	return n, nil
}

var defaultColor = [4]uint8{128, 128, 128, 255}

// parseColor accepts "#rrggbb" or "#rrggbbaa"; empty means the default grey.
func parseColor(s string) ([4]uint8, error) {
	if s == "" {
		return defaultColor, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return [4]uint8{}, fmt.Errorf("bad color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return [4]uint8{}, fmt.Errorf("bad color %q", s)
	}
	return [4]uint8{uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
}
