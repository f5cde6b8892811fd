// Package world drives per-frame progression: the pickup gate, proximity pickups,
// scoring, difficulty relief, obstacle waves and the single win transition.
package world

import (
	"math/rand/v2"

	"go.uber.org/zap"

	"toycar/internal/audio"
	"toycar/internal/gameconfig"
	"toycar/internal/narrate"
	"toycar/internal/obstacles"
	"toycar/internal/physics"
	"toycar/internal/prize"
	"toycar/internal/sched"
	"toycar/internal/tracker"
	"toycar/internal/vec"
)

// State is the controller phase.
type State int

const (
	Loading State = iota
	Active
	Won
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Active:
		return "active"
	case Won:
		return "won"
	}
	return "unknown"
}

// ProgressState is the score and the two one-way flags.
type ProgressState struct {
	Points        int
	PickupEnabled bool
	WinTriggered  bool
}

// Player is what proximity pickups need from the vehicle.
type Player interface {
	Position() vec.Vec3
	Speed() float32
}

type bodyPlayer struct{ b *physics.Body }

func (p bodyPlayer) Position() vec.Vec3 { return p.b.Position }
func (p bodyPlayer) Speed() float32     { return p.b.Speed() }

// FollowBody uses a physics body as the player.
func FollowBody(b *physics.Body) Player { return bodyPlayer{b} }

// Config wires a Controller. Scheduler, Prizes and Player are required.
type Config struct {
	Scheduler *sched.Scheduler
	Prizes    *prize.Registry
	Player    Player
	Obstacles *obstacles.Field
	Tracker   *tracker.Tracker
	Notifier  tracker.Notifier
	Audio     audio.Player
	Ambient   audio.Ambient
	Narrator  narrate.Narrator
	Sinks     []Sink
	Tuning    gameconfig.Tuning
	Rand      *rand.Rand
	Log       *zap.Logger
}

// Controller owns the progress state. All methods run on the game goroutine.
type Controller struct {
	cfg   Config
	log   *zap.Logger
	rng   *rand.Rand
	state State
	prog  ProgressState

	gate          *sched.Handle
	wave          *sched.Handle
	wavesDisabled bool
	lastRun       tracker.Run
	ambientOn     bool
}

// NewController starts in Loading and schedules the gate to open after the configured
// delay, whether or not the level has finished loading.
func NewController(cfg Config) *Controller {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Audio == nil {
		cfg.Audio = audio.Nop{}
	}
	if cfg.Ambient == nil {
		cfg.Ambient = audio.Nop{}
	}
	if cfg.Narrator == nil {
		cfg.Narrator = narrate.Nop{}
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	c := &Controller{cfg: cfg, log: log.Named("world"), rng: rng, state: Loading}
	c.gate = cfg.Scheduler.After(cfg.Tuning.Pickup.GateDelay, c.openGate)
	c.ambientOn = true
	cfg.Ambient.SetPlaying(true)
	return c
}

// ToggleAudio pauses or resumes the ambient loop and returns whether it is now playing.
// One-shot cues are not affected.
func (c *Controller) ToggleAudio() bool {
	c.ambientOn = !c.ambientOn
	c.cfg.Ambient.SetPlaying(c.ambientOn)
	c.log.Debug("ambient audio toggled", zap.Bool("playing", c.ambientOn))
	return c.ambientOn
}

// AudioOn reports whether the ambient loop is playing.
func (c *Controller) AudioOn() bool { return c.ambientOn }

// State returns the current phase.
func (c *Controller) State() State { return c.state }

// Progress returns a copy of the progress state.
func (c *Controller) Progress() ProgressState { return c.prog }

// WavePending reports whether an obstacle wave is scheduled.
func (c *Controller) WavePending() bool { return c.wave.Pending() }

// LastRun returns the run recorded at the win, zero before it.
func (c *Controller) LastRun() tracker.Run { return c.lastRun }

func (c *Controller) openGate() {
	if c.state != Loading {
		return
	}
	c.state = Active
	c.prog.PickupEnabled = true
	if c.cfg.Tracker != nil {
		c.cfg.Tracker.Start()
	}
	narrate.Say(c.cfg.Narrator, narrate.MsgWelcome)
	c.publishStatus()
	c.scheduleWave()
	c.log.Info("pickups enabled")
}

func (c *Controller) scheduleWave() {
	if c.wavesDisabled || c.cfg.Obstacles == nil || c.cfg.Tuning.Obstacles.WaveInterval <= 0 {
		return
	}
	c.wave = c.cfg.Scheduler.After(c.cfg.Tuning.Obstacles.WaveInterval, c.spawnWave)
}

func (c *Controller) spawnWave() {
	if c.wavesDisabled {
		return
	}
	o := c.cfg.Tuning.Obstacles
	c.cfg.Obstacles.SpawnWave(obstacles.WaveOptions{Size: o.WaveSize, Extent: o.WaveExtent, Seed: c.rng.Int64()})
	c.scheduleWave()
}

// Update runs due timers and posted work, spins every live prize and, while Active,
// collects prizes the player drives through fast enough.
func (c *Controller) Update(dt float32) {
	c.cfg.Scheduler.Advance()

	live := c.cfg.Prizes.Snapshot()
	for _, p := range live {
		p.Update(dt)
	}
	if c.state != Active || !c.prog.PickupEnabled {
		return
	}

	t := c.cfg.Tuning.Pickup
	speed := c.cfg.Player.Speed()
	if speed <= t.SpeedThreshold {
		return
	}
	pos := c.cfg.Player.Position()
	for _, p := range live {
		if p.Collected() {
			continue
		}
		if pos.Dist(p.Position()) >= t.Radius {
			continue
		}
		c.pickup(p)
		if c.state == Won {
			return
		}
	}
}

func (c *Controller) pickup(p *prize.Prize) {
	p.Collect()
	c.cfg.Prizes.Remove(p)
	c.prog.Points++
	c.cfg.Audio.Play(audio.CueCoin)
	narrate.Say(c.cfg.Narrator, narrate.MsgPickup, c.prog.Points)
	c.publish(Event{Kind: EventPickup, Points: c.prog.Points, Prize: p.Name})
	c.publishStatus()

	removed := 0
	if c.cfg.Obstacles != nil {
		o := c.cfg.Tuning.Obstacles
		removed = c.cfg.Obstacles.RemoveRandom(o.ReductionMin + c.rng.Float64()*(o.ReductionMax-o.ReductionMin))
	}
	c.log.Info("prize picked up", zap.String("prize", p.Name), zap.Int("points", c.prog.Points), zap.Int("obstacles_removed", removed))

	if c.prog.Points >= c.cfg.Tuning.Pickup.WinPoints && !c.prog.WinTriggered {
		c.win()
	}
}

func (c *Controller) win() {
	c.prog.WinTriggered = true
	c.prog.PickupEnabled = false
	c.state = Won

	if c.cfg.Tracker != nil {
		c.lastRun = c.cfg.Tracker.SaveTime(c.prog.Points)
	}
	if c.cfg.Notifier != nil {
		c.cfg.Notifier.ShowEndGame(c.lastRun)
	}
	c.wavesDisabled = true
	c.wave.Cancel()
	if c.cfg.Obstacles != nil {
		c.cfg.Obstacles.RemoveAll()
	}
	c.cfg.Audio.Play(audio.CueWinner)
	c.publish(Event{Kind: EventWon, Points: c.prog.Points, Elapsed: c.lastRun.Elapsed})
	c.log.Info("game won", zap.Int("points", c.prog.Points), zap.Duration("elapsed", c.lastRun.Elapsed))
}

func (c *Controller) publishStatus() {
	c.publish(Event{Kind: EventStatus, Points: c.prog.Points, Text: narrate.Text(narrate.MsgStatus, c.prog.Points)})
}

func (c *Controller) publish(e Event) {
	for _, s := range c.cfg.Sinks {
		s.Publish(e)
	}
}
