// Package prize implements collectible prizes: a spinning model that disappears with a
// sound and a spoken confirmation when the player drives through it.
package prize

import (
	"fmt"

	"github.com/google/uuid"

	"toycar/internal/audio"
	"toycar/internal/narrate"
	"toycar/internal/scene"
	"toycar/internal/vec"
)

// DefaultSpinRate is the idle yaw speed in radians per second.
const DefaultSpinRate = 1.5

// Options configures New.
type Options struct {
	// Model is the template; its first child (or the model itself when it has none)
	// is cloned and attached to the prize pivot.
	Model    *scene.Node
	Position vec.Vec3
	Scene    *scene.Node
	Audio    audio.Player
	Narrator narrate.Narrator
	// SpinRate defaults to DefaultSpinRate when zero.
	SpinRate float32
}

// Prize is one collectible in the level.
type Prize struct {
	ID   uuid.UUID
	Name string

	pivot     *scene.Node
	scene     *scene.Node
	audio     audio.Player
	narrator  narrate.Narrator
	spinRate  float32
	collected bool
}

// New builds the pivot at opts.Position, attaches a reset-transform clone of the model
// and adds the pivot to opts.Scene.
func New(opts Options) (*Prize, error) {
	if opts.Model == nil {
		return nil, fmt.Errorf("prize: nil model")
	}
	src := opts.Model
	if kids := src.Children(); len(kids) > 0 {
		src = kids[0]
	}
	visual, err := src.Clone()
	if err != nil {
		return nil, fmt.Errorf("prize: %w", err)
	}
	visual.ResetTransform()

	pivot := scene.NewGroup("prize:" + opts.Model.Name)
	pivot.Position = opts.Position
	pivot.Add(visual)
	if opts.Scene != nil {
		opts.Scene.Add(pivot)
	}

	p := &Prize{
		ID:       uuid.New(),
		Name:     opts.Model.Name,
		pivot:    pivot,
		scene:    opts.Scene,
		audio:    opts.Audio,
		narrator: opts.Narrator,
		spinRate: opts.SpinRate,
	}
	if p.spinRate == 0 {
		p.spinRate = DefaultSpinRate
	}
	if p.audio == nil {
		p.audio = audio.Nop{}
	}
	if p.narrator == nil {
		p.narrator = narrate.Nop{}
	}
	return p, nil
}

// Update spins the prize. Collected prizes do not animate.
func (p *Prize) Update(dt float32) {
	if p.collected {
		return
	}
	p.pivot.Rotation.Y += p.spinRate * dt
}

// Collect removes the prize from the scene, plays the prize cue and narrates the pickup.
// Calling it again has no effect.
func (p *Prize) Collect() {
	if p.collected {
		return
	}
	p.collected = true
	if parent := p.pivot.Parent(); parent != nil {
		parent.Remove(p.pivot)
	}
	p.audio.Play(audio.CuePrize)
	narrate.Say(p.narrator, narrate.MsgPrizeCollected)
}

// Collected reports whether Collect has run.
func (p *Prize) Collected() bool { return p.collected }

// Pivot returns the group node that carries the visual.
func (p *Prize) Pivot() *scene.Node { return p.pivot }

// Position returns the pivot's world position, used for proximity tests.
func (p *Prize) Position() vec.Vec3 { return p.pivot.WorldPosition() }
