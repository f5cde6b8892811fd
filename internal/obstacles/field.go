// Package obstacles manages the removable obstacles that fall onto the track in waves
// and thin out each time the player picks up a prize.
package obstacles

import (
	"math"
	"math/rand/v2"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"toycar/internal/physics"
	"toycar/internal/scene"
	"toycar/internal/vec"
)

// Obstacle is a scene node paired with its physics body.
type Obstacle struct {
	ID   uuid.UUID
	Node *scene.Node
	Body *physics.Body
}

// WaveOptions controls SpawnWave.
type WaveOptions struct {
	Size int
	// Extent is the half width of the square area obstacles land in, centered on the origin.
	Extent float32
	// Height is the drop height.
	Height float32
	Seed   int64
}

const (
	waveFrequency = 0.35
	waveOctaves   = 3
	obstacleSize  = 0.8
	obstacleMass  = 2
)

// Field owns the live obstacles. It is not safe for concurrent use; the game goroutine
// drives it.
type Field struct {
	world *physics.World
	root  *scene.Node
	rng   *rand.Rand
	log   *zap.Logger

	obstacles []*Obstacle
	waves     int
}

// NewField returns an empty field adding nodes under root and bodies to world.
// A nil rng gets a random seed.
func NewField(world *physics.World, root *scene.Node, rng *rand.Rand, log *zap.Logger) *Field {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Field{world: world, root: root, rng: rng, log: log.Named("obstacles")}
}

// Add registers an obstacle. Either part may be nil.
func (f *Field) Add(node *scene.Node, body *physics.Body) *Obstacle {
	o := &Obstacle{ID: uuid.New(), Node: node, Body: body}
	if node != nil && f.root != nil {
		f.root.Add(node)
	}
	if body != nil && f.world != nil {
		f.world.AddBody(body)
	}
	f.obstacles = append(f.obstacles, o)
	return o
}

// Len returns the number of live obstacles.
func (f *Field) Len() int { return len(f.obstacles) }

// Obstacles returns a copy of the live obstacles.
func (f *Field) Obstacles() []*Obstacle { return append([]*Obstacle(nil), f.obstacles...) }

func (f *Field) detach(o *Obstacle) {
	if o.Node != nil {
		if p := o.Node.Parent(); p != nil {
			p.Remove(o.Node)
		}
	}
	if o.Body != nil && f.world != nil {
		f.world.RemoveBody(o.Body)
	}
}

// RemoveRandom removes floor(Len*fraction) obstacles chosen uniformly at random and
// returns how many were removed. fraction is clamped to [0,1].
func (f *Field) RemoveRandom(fraction float64) int {
	fraction = math.Max(0, math.Min(1, fraction))
	n := int(math.Floor(float64(len(f.obstacles)) * fraction))
	if n == 0 {
		return 0
	}
	f.rng.Shuffle(len(f.obstacles), func(i, j int) {
		f.obstacles[i], f.obstacles[j] = f.obstacles[j], f.obstacles[i]
	})
	for _, o := range f.obstacles[:n] {
		f.detach(o)
	}
	f.obstacles = append([]*Obstacle(nil), f.obstacles[n:]...)
	f.log.Debug("obstacles removed", zap.Int("removed", n), zap.Int("left", len(f.obstacles)))
	return n
}

// RemoveAll clears the field and returns how many obstacles were removed.
func (f *Field) RemoveAll() int {
	n := len(f.obstacles)
	for _, o := range f.obstacles {
		f.detach(o)
	}
	f.obstacles = nil
	return n
}

// SpawnWave drops opts.Size box obstacles at value-noise positions inside the extent.
// The same seed places the same wave.
func (f *Field) SpawnWave(opts WaveOptions) int {
	if opts.Size <= 0 {
		return 0
	}
	if opts.Extent <= 0 {
		opts.Extent = 20
	}
	if opts.Height <= 0 {
		opts.Height = 8
	}
	f.waves++
	for i := 0; i < opts.Size; i++ {
		t := float32(i) * 1.7
		nx := fractalValueNoise2D(t*waveFrequency, 0.5, opts.Seed, waveOctaves, 2, 0.5)
		nz := fractalValueNoise2D(0.5, t*waveFrequency, opts.Seed+1, waveOctaves, 2, 0.5)
		pos := vec.New((nx*2-1)*opts.Extent, opts.Height, (nz*2-1)*opts.Extent)

		size := vec.New(obstacleSize, obstacleSize, obstacleSize)
		node := scene.NewMesh("obstacle", scene.BoxMesh(size), &scene.Material{Color: [4]uint8{200, 60, 40, 255}})
		node.Position = pos
		body := physics.NewBody(physics.BodyOptions{
			Name:     "obstacle",
			Position: pos,
			Shape:    &physics.Box{HalfExtents: size.Scale(0.5)},
			Mass:     obstacleMass,
			Material: "obstacle",
		})
		f.Add(node, body)
	}
	f.log.Info("obstacle wave", zap.Int("wave", f.waves), zap.Int("size", opts.Size), zap.Int("total", len(f.obstacles)))
	return opts.Size
}

// Sync copies body positions onto their nodes after a physics step.
func (f *Field) Sync() {
	for _, o := range f.obstacles {
		if o.Node != nil && o.Body != nil {
			o.Node.Position = o.Body.Position
		}
	}
}
