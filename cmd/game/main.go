package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"toycar/internal/assets"
	"toycar/internal/fetch"
	"toycar/internal/gameconfig"
	"toycar/internal/graphics"
	"toycar/internal/level"
	"toycar/internal/logger"
	"toycar/internal/narrate"
	"toycar/internal/obstacles"
	"toycar/internal/physics"
	"toycar/internal/prize"
	"toycar/internal/scene"
	"toycar/internal/sched"
	"toycar/internal/tracker"
	"toycar/internal/transport/observer"
	"toycar/internal/vec"
	"toycar/internal/world"
)

const (
	driveSpeed = 6
	carMass    = 1
)

func main() {
	env, err := gameconfig.LoadEnv(".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(env.LogFile)
	defer log.Sync()
	log.Log("toycar starting")
	if err := run(env, log); err != nil {
		log.Zap().Error("game exited", zap.Error(err))
		os.Exit(1)
	}
}

func run(env gameconfig.Env, log *logger.Logger) error {
	zl := log.Zap()
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	tuning, err := gameconfig.Load(env.TuningPath)
	if err != nil {
		zl.Warn("cannot load tuning, using defaults", zap.Error(err))
	}
	models, err := assets.LoadRegistry(tuning.CatalogPath)
	if err != nil {
		return err
	}
	static, err := fetch.DirFS(env.StaticDir)
	if err != nil {
		return err
	}

	s := sched.New(nil)
	root := scene.New()
	phys := physics.NewWorld()
	phys.AddBody(physics.NewBody(physics.BodyOptions{
		Name:     "ground",
		Position: vec.New(0, -0.5, 0),
		Shape:    &physics.Box{HalfExtents: vec.New(60, 0.5, 60)},
	}))
	car := physics.NewBody(physics.BodyOptions{
		Name:     "car",
		Position: vec.New(0, 1, 0),
		Shape:    &physics.Box{HalfExtents: vec.New(0.5, 0.25, 0.8)},
		Mass:     carMass,
	})
	phys.AddBody(car)
	carNode := scene.NewMesh("car", scene.BoxMesh(vec.New(1, 0.5, 1.6)), &scene.Material{Color: [4]uint8{220, 40, 40, 255}})
	root.Add(carNode)

	sounds := graphics.LoadSounds(env.StaticDir, zl)
	defer sounds.Close()
	subtitles := narrate.NewSubtitles(zl, nil)
	hud := graphics.NewHUD(subtitles, log.Lines)
	sinks := []world.Sink{hud}
	if env.ObserverAddr != "" {
		hub := observer.NewHub(zl)
		sinks = append(sinks, hub)
		go serveObserver(ctx, env.ObserverAddr, hub, zl)
	}

	var store tracker.Store
	if db, err := tracker.OpenSQLite(env.DBPath); err != nil {
		zl.Warn("cannot open times database, runs will not be saved", zap.Error(err))
	} else {
		defer db.Close()
		store = db
	}
	trk := tracker.New(nil, store, zl)
	defer trk.Wait()

	local := &fetch.FSSource{FS: static}
	prizes := &prize.Registry{}
	loader := level.NewLoader(level.Config{
		Remote:   fetch.NewHTTPSource(env.APIURL),
		Local:    local,
		Assets:   models,
		Scene:    root,
		World:    phys,
		Prizes:   prizes,
		Audio:    sounds,
		Narrator: subtitles,
		Decals:   &level.Decals{Source: local, Settings: tuning.Signage, Post: s.Post, Log: zl},
		Tuning:   tuning,
		Log:      zl,
	})
	field := obstacles.NewField(phys, root, nil, zl)
	ctrl := world.NewController(world.Config{
		Scheduler: s,
		Prizes:    prizes,
		Player:    world.FollowBody(car),
		Obstacles: field,
		Tracker:   trk,
		Notifier:  hud,
		Audio:     sounds,
		Ambient:   sounds,
		Narrator:  subtitles,
		Sinks:     sinks,
		Tuning:    tuning,
		Log:       zl,
	})

	go func() {
		m, err := loader.Fetch(ctx)
		if err != nil {
			return
		}
		s.Post(func() { _ = loader.Apply(m) })
	}()

	cam := graphics.NewChaseCamera()
	renderer := graphics.NewRenderer()
	defer renderer.Unload()

	graphics.Run(graphics.DefaultWindow, cam, graphics.Frame{
		Update: func(dt float32) {
			if graphics.TogglePressed() {
				hud.ShowFPS = !hud.ShowFPS
				hud.ShowLog = hud.ShowFPS
			}
			if graphics.AudioTogglePressed() {
				ctrl.ToggleAudio()
			}
			sounds.Update()
			steer(car, graphics.Input())
			phys.Step(dt)
			field.Sync()
			carNode.Position = car.Position
			ctrl.Update(dt)
			cam.Follow(car.Position)
		},
		Draw3D: func() { renderer.Draw(root) },
		Draw2D: hud.Draw,
	})
	return nil
}

// steer applies the impulse that brings the car's ground velocity to the input direction
// at driveSpeed. The vertical component is left to gravity.
func steer(car *physics.Body, dir vec.Vec3) {
	if l := dir.Len(); l > 0 {
		dir = dir.Scale(driveSpeed / l)
	}
	delta := vec.New(dir.X-car.Velocity.X, 0, dir.Z-car.Velocity.Z)
	car.ApplyImpulse(delta.Scale(car.Mass))
}

func serveObserver(ctx context.Context, addr string, hub *observer.Hub, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("GET /ws", hub.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()
	log.Info("observer listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("observer stopped", zap.Error(err))
	}
}
