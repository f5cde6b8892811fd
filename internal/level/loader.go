// Package level turns the level API's placement list into scene nodes, physics bodies
// and prizes.
package level

import (
	"context"
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"

	"toycar/internal/assets"
	"toycar/internal/audio"
	"toycar/internal/fetch"
	"toycar/internal/gameconfig"
	"toycar/internal/narrate"
	"toycar/internal/physics"
	"toycar/internal/prize"
	"toycar/internal/scene"
	"toycar/internal/vec"
)

// Remote endpoints and their static fallbacks.
const (
	ExclusionPath = "api/obstacles/excluded"
	ExclusionFile = "data/obstacles_excluded.json"
	PlacementPath = "api/blocks"
	PlacementFile = "data/threejs_blocks.blocks.json"
)

// obstacleMaterial is the contact material of every placed block.
const obstacleMaterial = "obstacle"

// Manifest is everything Fetch read: the exclusion set and the placement list.
type Manifest struct {
	Excluded map[string]bool
	Records  []Record
}

// Config wires a Loader. Remote and Local are required; Decals may be nil.
type Config struct {
	Remote   fetch.Source
	Local    fetch.Source
	Assets   *assets.Registry
	Scene    *scene.Node
	World    *physics.World
	Prizes   *prize.Registry
	Audio    audio.Player
	Narrator narrate.Narrator
	Decals   *Decals
	Tuning   gameconfig.Tuning
	Log      *zap.Logger
}

// Loader places level content. Fetch is safe on any goroutine; Apply and LoadFromAPI
// mutate the scene, world and registry and must run on the game goroutine.
type Loader struct {
	cfg         Config
	log         *zap.Logger
	classifier  *Classifier
	shapes      *ShapeResolver
	orientation vec.Quat
}

// NewLoader returns a loader for cfg.
func NewLoader(cfg Config) *Loader {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Prizes == nil {
		cfg.Prizes = &prize.Registry{}
	}
	e := cfg.Tuning.BodyEuler
	return &Loader{
		cfg:         cfg,
		log:         log.Named("level"),
		classifier:  &Classifier{Assets: cfg.Assets, CollectiblePrefix: cfg.Tuning.CollectiblePrefix},
		shapes:      NewShapeResolver(cfg.Assets),
		orientation: vec.QuatFromEuler(e[0], e[1], e[2]),
	}
}

// Prizes returns the registry prizes are appended to.
func (l *Loader) Prizes() *prize.Registry { return l.cfg.Prizes }

// LoadFromAPI fetches and applies the level. Failures are logged and returned; a panic is
// recovered as *UnexpectedError and whatever was placed before it stays in the scene.
func (l *Loader) LoadFromAPI(ctx context.Context) (err error) {
	defer l.recoverInto(&err)
	m, err := l.Fetch(ctx)
	if err != nil {
		return err
	}
	return l.Apply(m)
}

func (l *Loader) recoverInto(err *error) {
	if r := recover(); r != nil {
		ue := &UnexpectedError{Value: r, Stack: debug.Stack()}
		l.log.Error("error loading blocks", zap.Any("panic", r), zap.ByteString("stack", ue.Stack))
		*err = ue
	}
}

// Fetch reads the exclusion manifest, then the placement list, each remote first with a
// single fallback to the static file. A missing exclusion manifest is not fatal.
func (l *Loader) Fetch(ctx context.Context) (m Manifest, err error) {
	defer l.recoverInto(&err)

	onFallback := func(name string) func(error) {
		return func(err error) {
			l.log.Warn("cannot reach API, using local file", zap.String("resource", name), zap.Error(err))
		}
	}

	// Each source is decoded inside Validate, so a payload that passes the schema but
	// cannot be decoded still falls back to the static file.
	ex := &fetch.Fallback{
		Primary:   l.cfg.Remote,
		Secondary: l.cfg.Local,
		Validate: func(data []byte) (err error) {
			m.Excluded, err = DecodeExclusions(data)
			return err
		},
		OnFallback: onFallback(ExclusionFile),
	}
	if _, err := ex.Fetch(ctx, ExclusionPath, ExclusionFile); err != nil {
		l.log.Warn("cannot load excluded obstacles", zap.Error(err))
		m.Excluded = map[string]bool{}
	}

	pl := &fetch.Fallback{
		Primary:   l.cfg.Remote,
		Secondary: l.cfg.Local,
		Validate: func(data []byte) (err error) {
			m.Records, err = DecodePlacements(data)
			return err
		},
		OnFallback: onFallback(PlacementFile),
	}
	if _, err := pl.Fetch(ctx, PlacementPath, PlacementFile); err != nil {
		l.log.Error("cannot load blocks", zap.Error(err))
		return Manifest{}, fmt.Errorf("%w: %w", ErrLoadFailure, err)
	}
	return m, nil
}

// Apply places every record in list order. Skipped records are logged, not returned.
func (l *Loader) Apply(m Manifest) (err error) {
	defer l.recoverInto(&err)
	var placed, prizes, skipped int
	for _, rec := range m.Records {
		cat, err := l.place(rec, m.Excluded)
		switch {
		case err != nil:
			skipped++
			l.logSkip(rec, err)
		case cat == Collectible:
			prizes++
		case cat != Unknown:
			placed++
		}
	}
	l.log.Info("level loaded", zap.Int("bodies", placed), zap.Int("prizes", prizes), zap.Int("skipped", skipped))
	return nil
}

func (l *Loader) logSkip(rec Record, err error) {
	switch e := err.(type) {
	case *MissingNameError:
		l.log.Warn("block without name", zap.Any("record", e.Record))
	case *UnknownModelError:
		l.log.Warn("model not found", zap.String("name", e.Name))
	default:
		l.log.Warn("cannot place block", zap.String("name", rec.NameOrEmpty()), zap.Error(err))
	}
}

// place returns Unknown with a nil error for an excluded collectible.
func (l *Loader) place(rec Record, excluded map[string]bool) (Category, error) {
	cl, err := l.classifier.Classify(rec)
	if err != nil {
		return cl.Category, err
	}
	pos := rec.Position()

	if cl.Category == Collectible {
		if excluded[cl.Name] {
			l.log.Debug("prize excluded", zap.String("name", cl.Name))
			return Unknown, nil
		}
		p, err := prize.New(prize.Options{
			Model:    cl.Entry.Model,
			Position: pos,
			Scene:    l.cfg.Scene,
			Audio:    l.cfg.Audio,
			Narrator: l.cfg.Narrator,
			SpinRate: l.cfg.Tuning.Pickup.SpinRate,
		})
		if err != nil {
			return Unknown, err
		}
		l.cfg.Prizes.Add(p)
		return Collectible, nil
	}

	model, err := cl.Entry.Model.Clone()
	if err != nil {
		return Unknown, err
	}
	model.ResetTransform()
	body := physics.NewBody(physics.BodyOptions{
		Name:        cl.Name,
		Position:    pos,
		Orientation: l.orientation,
		Shape:       l.shapes.Resolve(cl.Name, model),
		Material:    obstacleMaterial,
	})
	if l.cfg.World != nil {
		l.cfg.World.AddBody(body)
	}
	model.Position = pos
	model.Rotation = vec.FromArray(l.cfg.Tuning.BodyEuler)
	if l.cfg.Scene != nil {
		l.cfg.Scene.Add(model)
	}

	if cl.Category == Signage {
		l.decorate(model)
	}
	return cl.Category, nil
}

func (l *Loader) decorate(model *scene.Node) {
	surface := model.FindByName(l.cfg.Tuning.Signage.Surface)
	if surface == nil || l.cfg.Decals == nil {
		return
	}
	l.cfg.Decals.Apply(context.Background(), surface)
}
