package graphics

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"toycar/internal/scene"
	"toycar/internal/vec"
)

// Renderer draws a scene graph. Vertices are transformed on the CPU each frame; the
// scenes here are a few thousand triangles. Textures are uploaded on first use and
// cached by pointer, so a decal shared by many signs is uploaded once.
type Renderer struct {
	textures map[*scene.Texture]rl.Texture2D
}

// NewRenderer returns a renderer with an empty texture cache.
func NewRenderer() *Renderer {
	return &Renderer{textures: make(map[*scene.Texture]rl.Texture2D)}
}

// Draw renders every visible mesh under root. Call between BeginMode3D and EndMode3D.
func (r *Renderer) Draw(root *scene.Node) {
	if root == nil || !root.Visible {
		return
	}
	if root.Mesh != nil && root.Mesh.Triangles() > 0 {
		r.drawMesh(root)
	}
	for _, c := range root.Children() {
		r.Draw(c)
	}
}

// Unload frees every cached GPU texture.
func (r *Renderer) Unload() {
	for key, tex := range r.textures {
		rl.UnloadTexture(tex)
		delete(r.textures, key)
	}
}

func (r *Renderer) drawMesh(n *scene.Node) {
	mat := n.Material
	if mat == nil {
		mat = &scene.Material{Color: [4]uint8{200, 200, 200, 255}}
	}
	if mat.DoubleSide {
		rl.DisableBackfaceCulling()
		defer rl.EnableBackfaceCulling()
	}
	if mat.Texture != nil && mat.Texture.Image != nil {
		r.drawTextured(n, mat)
		return
	}
	col := rl.NewColor(mat.Color[0], mat.Color[1], mat.Color[2], mat.Color[3])
	m := n.Mesh
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c, ok := triangle(m, i)
		if !ok {
			continue
		}
		rl.DrawTriangle3D(toRL(n.LocalToWorld(a)), toRL(n.LocalToWorld(b)), toRL(n.LocalToWorld(c)), col)
	}
}

// drawTextured projects the texture onto the mesh along its thinnest local axis, which
// is how a flat sign face reads.
func (r *Renderer) drawTextured(n *scene.Node, mat *scene.Material) {
	tex := r.texture(mat)
	m := n.Mesh
	bounds := vec.EmptyBox()
	for _, v := range m.Vertices {
		bounds = bounds.Extend(v)
	}
	uv := planarUV(bounds)

	rl.SetTexture(tex.ID)
	rl.Begin(rl.Triangles)
	rl.Color4ub(mat.Color[0], mat.Color[1], mat.Color[2], mat.Color[3])
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c, ok := triangle(m, i)
		if !ok {
			continue
		}
		for _, p := range [3]vec.Vec3{a, b, c} {
			u, v := uv(p)
			w := n.LocalToWorld(p)
			rl.TexCoord2f(u, v)
			rl.Vertex3f(w.X, w.Y, w.Z)
		}
	}
	rl.End()
	rl.SetTexture(0)
}

func triangle(m *scene.Mesh, i int) (a, b, c vec.Vec3, ok bool) {
	ia, ib, ic := int(m.Indices[i]), int(m.Indices[i+1]), int(m.Indices[i+2])
	if ia >= len(m.Vertices) || ib >= len(m.Vertices) || ic >= len(m.Vertices) {
		return a, b, c, false
	}
	return m.Vertices[ia], m.Vertices[ib], m.Vertices[ic], true
}

// planarUV maps points of bounds to [0,1]^2 on the two widest axes.
func planarUV(bounds vec.Box) func(vec.Vec3) (float32, float32) {
	size := bounds.Size()
	axes := [3]float32{size.X, size.Y, size.Z}
	thin := 0
	for i := 1; i < 3; i++ {
		if axes[i] < axes[thin] {
			thin = i
		}
	}
	var uAxis, vAxis int
	switch thin {
	case 0:
		uAxis, vAxis = 2, 1
	case 1:
		uAxis, vAxis = 0, 2
	default:
		uAxis, vAxis = 0, 1
	}
	minA := bounds.Min.Array()
	return func(p vec.Vec3) (float32, float32) {
		a := p.Array()
		u := (a[uAxis] - minA[uAxis]) / nonZero(axes[uAxis])
		v := (a[vAxis] - minA[vAxis]) / nonZero(axes[vAxis])
		return u, 1 - v
	}
}

func nonZero(f float32) float32 {
	if f == 0 {
		return 1
	}
	return f
}

func (r *Renderer) texture(mat *scene.Material) rl.Texture2D {
	if tex, ok := r.textures[mat.Texture]; ok {
		return tex
	}
	img := rl.NewImageFromImage(mat.Texture.Image)
	tex := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)

	filter := rl.FilterBilinear
	if mat.Anisotropy > 1 {
		rl.GenTextureMipmaps(&tex)
		switch {
		case mat.Anisotropy >= 16:
			filter = rl.FilterAnisotropic16x
		case mat.Anisotropy >= 8:
			filter = rl.FilterAnisotropic8x
		default:
			filter = rl.FilterAnisotropic4x
		}
	}
	rl.SetTextureFilter(tex, filter)
	rl.SetTextureWrap(tex, wrapMode(mat.WrapS))
	r.textures[mat.Texture] = tex
	return tex
}

func wrapMode(w scene.Wrap) rl.TextureWrapMode {
	switch w {
	case scene.WrapClampToEdge:
		return rl.WrapClamp
	case scene.WrapMirroredRepeat:
		return rl.WrapMirrorRepeat
	}
	return rl.WrapRepeat
}
