// Package graphics owns the raylib window: the frame loop, the chase camera, scene
// rendering, the sound device and the HUD. It is the only package that talks to raylib.
package graphics

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"toycar/internal/vec"
)

// Window describes the game window.
type Window struct {
	Title  string
	Width  int32
	Height int32
	FPS    int32
}

// DefaultWindow is a resizable 1280x720 window at 60 FPS.
var DefaultWindow = Window{Title: "toycar", Width: 1280, Height: 720, FPS: 60}

// Frame is the per-frame work Run drives. Update runs before drawing with the frame
// time in seconds; Draw3D runs inside the camera, Draw2D on top of it.
type Frame struct {
	Update func(dt float32)
	Draw3D func()
	Draw2D func()
}

// Run opens the window and loops until it is closed. The camera is read after Update so
// it follows whatever the update moved.
func Run(w Window, cam *ChaseCamera, f Frame) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(w.Width, w.Height, w.Title)
	defer rl.CloseWindow()

	rl.SetExitKey(rl.KeyNull) // close via window button
	rl.SetTargetFPS(w.FPS)

	for !rl.WindowShouldClose() {
		if f.Update != nil {
			f.Update(rl.GetFrameTime())
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.SkyBlue)
		rl.BeginMode3D(cam.Camera())
		rl.DrawGrid(40, 1)
		if f.Draw3D != nil {
			f.Draw3D()
		}
		rl.EndMode3D()
		if f.Draw2D != nil {
			f.Draw2D()
		}
		rl.EndDrawing()
	}
}

// ChaseCamera looks at a target from a fixed offset.
type ChaseCamera struct {
	Offset vec.Vec3
	target vec.Vec3
}

// NewChaseCamera returns a camera behind and above the target.
func NewChaseCamera() *ChaseCamera {
	return &ChaseCamera{Offset: vec.New(0, 6, 10)}
}

// Follow moves the camera target.
func (c *ChaseCamera) Follow(target vec.Vec3) {
	c.target = target
}

// Camera returns the raylib camera for the current target.
func (c *ChaseCamera) Camera() rl.Camera3D {
	pos := c.target.Add(c.Offset)
	return rl.NewCamera3D(toRL(pos), toRL(c.target), rl.NewVector3(0, 1, 0), 45, rl.CameraPerspective)
}

func toRL(v vec.Vec3) rl.Vector3 {
	return rl.NewVector3(v.X, v.Y, v.Z)
}

// Input reads the arrow keys (and WASD) as a steering vector on the ground plane. X is
// right, Z is toward the camera.
func Input() vec.Vec3 {
	var d vec.Vec3
	if rl.IsKeyDown(rl.KeyUp) || rl.IsKeyDown(rl.KeyW) {
		d.Z--
	}
	if rl.IsKeyDown(rl.KeyDown) || rl.IsKeyDown(rl.KeyS) {
		d.Z++
	}
	if rl.IsKeyDown(rl.KeyLeft) || rl.IsKeyDown(rl.KeyA) {
		d.X--
	}
	if rl.IsKeyDown(rl.KeyRight) || rl.IsKeyDown(rl.KeyD) {
		d.X++
	}
	return d
}

// TogglePressed reports whether the HUD toggle key (F1) went down this frame.
func TogglePressed() bool {
	return rl.IsKeyPressed(rl.KeyF1)
}

// AudioTogglePressed reports whether the mute key (M) went down this frame.
func AudioTogglePressed() bool {
	return rl.IsKeyPressed(rl.KeyM)
}
