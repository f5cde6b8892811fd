package level

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/hackpadfs/mem"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"toycar/internal/assets"
	"toycar/internal/fetch"
	"toycar/internal/gameconfig"
	"toycar/internal/physics"
	"toycar/internal/prize"
	"toycar/internal/scene"
	"toycar/internal/vec"
)

const testCatalog = `
models:
  block001:
    shape: trimesh
    nodes:
      - name: Road
        box: [2, 0.2, 2]
  wall001:
    nodes:
      - name: Wall
        box: [1, 2, 0.5]
  coin001:
    nodes:
      - name: Coin
        box: [0.6, 0.6, 0.1]
  sign001:
    signage: true
    nodes:
      - name: Post
        box: [0.2, 2, 0.2]
      - name: Cube
        box: [2, 1, 0.1]
        position: [0, 2.5, 0]
`

type testEnv struct {
	loader *Loader
	scene  *scene.Node
	world  *physics.World
	prizes *prize.Registry
	logs   *observer.ObservedLogs
	local  hackpadfs.FS
}

func testRegistry(t *testing.T) *assets.Registry {
	t.Helper()
	c, err := assets.ParseCatalog([]byte(testCatalog))
	if err != nil {
		t.Fatalf("ParseCatalog: %v", err)
	}
	r, err := c.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return r
}

func memFS(t *testing.T, files map[string][]byte) hackpadfs.FS {
	t.Helper()
	fsys, err := mem.NewFS()
	if err != nil {
		t.Fatalf("mem.NewFS: %v", err)
	}
	for _, dir := range []string{"data", "textures/signage"} {
		if err := hackpadfs.MkdirAll(fsys, dir, 0755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
	}
	for name, data := range files {
		if err := hackpadfs.WriteFullFile(fsys, name, data, 0644); err != nil {
			t.Fatalf("WriteFullFile %s: %v", name, err)
		}
	}
	return fsys
}

// routes maps a remote path to its body; missing paths answer 503.
func newEnv(t *testing.T, routes map[string]string, local map[string][]byte, mutate func(*Config)) *testEnv {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	core, logs := observer.New(zapcore.DebugLevel)
	fsys := memFS(t, local)
	env := &testEnv{
		scene:  scene.New(),
		world:  physics.NewWorld(),
		prizes: &prize.Registry{},
		logs:   logs,
		local:  fsys,
	}
	cfg := Config{
		Remote: fetch.NewHTTPSource(srv.URL),
		Local:  &fetch.FSSource{FS: fsys},
		Assets: testRegistry(t),
		Scene:  env.scene,
		World:  env.world,
		Prizes: env.prizes,
		Tuning: gameconfig.Default(),
		Log:    zap.New(core),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	env.loader = NewLoader(cfg)
	return env
}

func (e *testEnv) warned(snippet string) int {
	return e.logs.FilterLevelExact(zapcore.WarnLevel).FilterMessageSnippet(snippet).Len()
}

func TestBlockFallsBackToLocalFile(t *testing.T) {
	env := newEnv(t,
		map[string]string{"/api/obstacles/excluded": `["block001"]`},
		map[string][]byte{PlacementFile: []byte(`[{"name":"block001","x":1,"y":2,"z":3}]`)},
		nil)

	if err := env.loader.LoadFromAPI(context.Background()); err != nil {
		t.Fatalf("LoadFromAPI: %v", err)
	}
	if env.warned("cannot reach API") != 1 {
		t.Fatalf("want one fallback warning, got %d", env.warned("cannot reach API"))
	}
	bodies := env.world.Bodies()
	if len(bodies) != 1 {
		t.Fatalf("bodies = %d, want 1 (exclusion only applies to prizes)", len(bodies))
	}
	b := bodies[0]
	if b.Shape.Kind() != physics.ShapeTrimesh {
		t.Fatalf("shape = %s, want trimesh", b.Shape.Kind())
	}
	if b.Position != vec.New(1, 2, 3) || !b.Static || b.Material != "obstacle" {
		t.Fatalf("body = %+v", b)
	}
	if env.scene.FindByName("block001") == nil {
		t.Fatal("model not attached to scene")
	}
}

func TestCoinCreatesPrizeWithoutBody(t *testing.T) {
	env := newEnv(t, map[string]string{
		"/api/obstacles/excluded": `[]`,
		"/api/blocks":             `[{"name":"coin001","x":1,"y":0,"z":1}]`,
	}, nil, nil)

	if err := env.loader.LoadFromAPI(context.Background()); err != nil {
		t.Fatalf("LoadFromAPI: %v", err)
	}
	if env.world.Len() != 0 {
		t.Fatalf("bodies = %d, want 0", env.world.Len())
	}
	ps := env.loader.Prizes().Snapshot()
	if len(ps) != 1 {
		t.Fatalf("prizes = %d, want 1", len(ps))
	}
	if got := ps[0].Position(); got != vec.New(1, 0, 1) {
		t.Fatalf("prize at %+v", got)
	}
	if ps[0].Pivot().Parent() != env.scene {
		t.Fatal("prize pivot not in scene")
	}
}

func TestExcludedCoinIsSkipped(t *testing.T) {
	env := newEnv(t, map[string]string{
		"/api/obstacles/excluded": `["coin001"]`,
		"/api/blocks":             `[{"name":"coin001","x":1,"y":0,"z":1},{"name":"wall001","x":0,"y":0,"z":0}]`,
	}, nil, nil)

	if err := env.loader.LoadFromAPI(context.Background()); err != nil {
		t.Fatalf("LoadFromAPI: %v", err)
	}
	if env.prizes.Len() != 0 {
		t.Fatalf("prizes = %d, want 0", env.prizes.Len())
	}
	if env.world.Len() != 1 {
		t.Fatalf("bodies = %d, want 1", env.world.Len())
	}
	if env.world.Bodies()[0].Shape.Kind() != physics.ShapeBox {
		t.Fatal("wall001 should use the default box strategy")
	}
}

func TestSkipsInvalidRecords(t *testing.T) {
	env := newEnv(t, map[string]string{
		"/api/obstacles/excluded": `[]`,
		"/api/blocks":             `[{"x":1,"y":2,"z":3},{"name":"","x":5,"y":5,"z":5},{"name":"modeloInexistente","x":1,"y":2,"z":3},{"name":"wall001","x":4,"y":0,"z":0}]`,
	}, nil, nil)

	if err := env.loader.LoadFromAPI(context.Background()); err != nil {
		t.Fatalf("LoadFromAPI: %v", err)
	}
	nameless := env.logs.FilterMessage("block without name").All()
	if len(nameless) != 2 {
		t.Fatalf("block without name entries = %d", len(nameless))
	}
	rec, ok := nameless[0].ContextMap()["record"].(Record)
	if !ok || rec.Position() != vec.New(1, 2, 3) {
		t.Fatalf("diagnostic record = %#v", nameless[0].ContextMap()["record"])
	}
	missing := env.logs.FilterMessage("model not found").All()
	if len(missing) != 1 || missing[0].ContextMap()["name"] != "modeloInexistente" {
		t.Fatalf("model not found entries = %v", missing)
	}
	if env.world.Len() != 1 || env.prizes.Len() != 0 {
		t.Fatalf("bodies=%d prizes=%d, want 1 and 0", env.world.Len(), env.prizes.Len())
	}
}

func TestBothSourcesFail(t *testing.T) {
	env := newEnv(t, nil, nil, nil)

	err := env.loader.LoadFromAPI(context.Background())
	if !errors.Is(err, ErrLoadFailure) {
		t.Fatalf("err = %v, want ErrLoadFailure", err)
	}
	if !errors.Is(err, ErrNetworkUnavailable) {
		t.Fatalf("err = %v, should keep the network cause", err)
	}
	if env.warned("cannot reach API") != 2 {
		t.Fatalf("fallback warnings = %d, want 2 (exclusions then blocks)", env.warned("cannot reach API"))
	}
	if env.logs.FilterMessage("cannot load blocks").Len() != 1 {
		t.Fatal("missing cannot load blocks entry")
	}
	if env.world.Len() != 0 || env.prizes.Len() != 0 || env.scene.Len() != 0 {
		t.Fatal("nothing should be placed")
	}
}

func TestFallbackOrderAndExclusionDefault(t *testing.T) {
	env := newEnv(t, nil, map[string][]byte{
		PlacementFile: []byte(`[{"name":"coin001","x":0,"y":0,"z":0}]`),
	}, nil)

	m, err := env.loader.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(m.Excluded) != 0 || len(m.Records) != 1 {
		t.Fatalf("manifest = %+v", m)
	}
	entries := env.logs.FilterMessageSnippet("cannot reach API").All()
	if len(entries) != 2 ||
		entries[0].ContextMap()["resource"] != ExclusionFile ||
		entries[1].ContextMap()["resource"] != PlacementFile {
		t.Fatalf("fallback order = %v", entries)
	}
	if env.logs.FilterMessage("cannot load excluded obstacles").Len() != 1 {
		t.Fatal("missing exclusion failure entry")
	}
}

func TestInvalidRemotePayloadFallsBack(t *testing.T) {
	env := newEnv(t,
		map[string]string{
			"/api/obstacles/excluded": `[]`,
			"/api/blocks":             `{"blocks": "nope"}`,
		},
		map[string][]byte{PlacementFile: []byte(`[{"name":"wall001","x":0,"y":0,"z":0}]`)},
		nil)

	if err := env.loader.LoadFromAPI(context.Background()); err != nil {
		t.Fatalf("LoadFromAPI: %v", err)
	}
	if env.world.Len() != 1 {
		t.Fatalf("bodies = %d, want 1 from the local file", env.world.Len())
	}
}

func TestUndecodableRemoteCoordinateFallsBack(t *testing.T) {
	env := newEnv(t,
		map[string]string{
			"/api/obstacles/excluded": `[]`,
			"/api/blocks":             `[{"name":"wall001","x":1e39,"y":0,"z":0},{"name":"block001","x":0,"y":0,"z":0}]`,
		},
		map[string][]byte{PlacementFile: []byte(`[{"name":"wall001","x":2,"y":0,"z":0}]`)},
		nil)

	if err := env.loader.LoadFromAPI(context.Background()); err != nil {
		t.Fatalf("LoadFromAPI: %v", err)
	}
	if env.warned("cannot reach API") != 1 {
		t.Fatalf("fallback warnings = %d, want 1", env.warned("cannot reach API"))
	}
	if env.world.Len() != 1 || env.world.Bodies()[0].Position != vec.New(2, 0, 0) {
		t.Fatalf("bodies = %d, want the single wall from the local file", env.world.Len())
	}
}

func TestPanicIsRecovered(t *testing.T) {
	env := newEnv(t, map[string]string{
		"/api/obstacles/excluded": `[]`,
		"/api/blocks":             `[{"name":"wall001","x":0,"y":0,"z":0}]`,
	}, nil, func(c *Config) { c.Assets = nil })

	err := env.loader.LoadFromAPI(context.Background())
	var ue *UnexpectedError
	if !errors.As(err, &ue) {
		t.Fatalf("err = %v, want *UnexpectedError", err)
	}
	if env.logs.FilterMessage("error loading blocks").Len() != 1 {
		t.Fatal("missing error loading blocks entry")
	}
}

func TestSignageGetsDecal(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	posted := make(chan func(), 1)
	var decals *Decals
	env := newEnv(t, map[string]string{
		"/api/obstacles/excluded": `[]`,
		"/api/blocks":             `[{"name":"sign001","x":0,"y":0,"z":5}]`,
	}, map[string][]byte{"textures/signage/decal.png": buf.Bytes()}, func(c *Config) {
		decals = &Decals{
			Source:   c.Local,
			Settings: c.Tuning.Signage,
			Post:     func(fn func()) { posted <- fn },
		}
		c.Decals = decals
	})

	if err := env.loader.LoadFromAPI(context.Background()); err != nil {
		t.Fatalf("LoadFromAPI: %v", err)
	}
	if env.world.Len() != 1 {
		t.Fatalf("signage should have a body, got %d", env.world.Len())
	}
	surface := env.scene.FindByName("sign001").FindByName("Cube")
	if surface.Material.Texture != nil {
		t.Fatal("decal must not be applied before the game goroutine runs it")
	}

	select {
	case fn := <-posted:
		fn()
	case <-time.After(5 * time.Second):
		t.Fatal("decal never posted")
	}
	m := surface.Material
	if m.Texture == nil || m.Texture.Image.Bounds().Dx() != 4 {
		t.Fatalf("material = %+v", m)
	}
	if m.WrapS != scene.WrapClampToEdge || m.WrapT != scene.WrapClampToEdge || !m.DoubleSide || m.Anisotropy != 16 {
		t.Fatalf("material settings = %+v", m)
	}
}

func TestSignageWithoutSurface(t *testing.T) {
	env := newEnv(t, map[string]string{
		"/api/obstacles/excluded": `[]`,
		"/api/blocks":             `[{"name":"sign001","x":0,"y":0,"z":5}]`,
	}, nil, func(c *Config) { c.Tuning.Signage.Surface = "Screen" })

	if err := env.loader.LoadFromAPI(context.Background()); err != nil {
		t.Fatalf("LoadFromAPI: %v", err)
	}
	if env.world.Len() != 1 {
		t.Fatal("signage without surface still gets its body")
	}
}
