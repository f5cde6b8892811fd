package graphics

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"toycar/internal/narrate"
	"toycar/internal/tracker"
	"toycar/internal/world"
)

const (
	hudFontSize   = 20
	hudPadding    = 12
	hudLineHeight = hudFontSize + 4
	logLines      = 8
	// updateInterval: only refresh FPS text every N frames to reduce allocations.
	updateInterval = 30
)

// Captioner returns the subtitle to show, or "".
type Captioner interface {
	Current() string
}

// HUD is the 2D overlay: the points line, subtitles, the end-of-game panel and the
// optional FPS and log overlays. It receives progress events as a world.Sink and the
// final run as a tracker.Notifier; both arrive on the game goroutine.
type HUD struct {
	ShowFPS bool
	ShowLog bool

	captions Captioner
	lines    func() []string

	frameCount  uint32
	lastFpsText string
	status      string
	endRun      *tracker.Run
}

// NewHUD returns a HUD reading subtitles from captions and log lines from lines. Either
// may be nil.
func NewHUD(captions Captioner, lines func() []string) *HUD {
	return &HUD{captions: captions, lines: lines, status: narrate.Text(narrate.MsgStatus, 0)}
}

// Publish implements world.Sink.
func (h *HUD) Publish(e world.Event) {
	if e.Kind == world.EventStatus && e.Text != "" {
		h.status = e.Text
	}
}

// ShowEndGame implements tracker.Notifier.
func (h *HUD) ShowEndGame(r tracker.Run) {
	h.endRun = &r
}

// Status returns the current points line.
func (h *HUD) Status() string { return h.status }

// Draw renders the overlay. Call after EndMode3D.
func (h *HUD) Draw() {
	screenW := int32(rl.GetScreenWidth())
	screenH := int32(rl.GetScreenHeight())

	rl.DrawText(h.status, hudPadding, hudPadding, hudFontSize, rl.DarkGray)

	if h.ShowFPS {
		h.frameCount++
		if h.lastFpsText == "" || h.frameCount%updateInterval == 0 {
			h.lastFpsText = fmt.Sprintf("FPS: %d", rl.GetFPS())
		}
		w := rl.MeasureText(h.lastFpsText, hudFontSize)
		rl.DrawText(h.lastFpsText, screenW-w-hudPadding, hudPadding, hudFontSize, rl.Green)
	}

	if h.ShowLog && h.lines != nil {
		lines := h.lines()
		if len(lines) > logLines {
			lines = lines[len(lines)-logLines:]
		}
		y := int32(hudPadding + 2*hudLineHeight)
		for _, line := range lines {
			rl.DrawText(line, hudPadding, y, hudFontSize-6, rl.Fade(rl.Black, 0.7))
			y += hudLineHeight - 6
		}
	}

	if h.captions != nil {
		if text := h.captions.Current(); text != "" {
			w := rl.MeasureText(text, hudFontSize)
			x := (screenW - w) / 2
			y := screenH - hudPadding - 2*hudLineHeight
			rl.DrawRectangle(x-hudPadding, y-hudPadding/2, w+2*hudPadding, hudLineHeight+hudPadding, rl.Fade(rl.Black, 0.6))
			rl.DrawText(text, x, y, hudFontSize, rl.RayWhite)
		}
	}

	if h.endRun != nil {
		h.drawEndGame(screenW, screenH)
	}
}

func (h *HUD) drawEndGame(screenW, screenH int32) {
	const panelW, panelH = 420, 160
	x := (screenW - panelW) / 2
	y := (screenH - panelH) / 2
	rl.DrawRectangle(0, 0, screenW, screenH, rl.Fade(rl.Black, 0.4))
	rl.DrawRectangle(x, y, panelW, panelH, rl.RayWhite)
	rl.DrawRectangleLines(x, y, panelW, panelH, rl.Gold)

	title := narrate.Text(narrate.MsgWon)
	rl.DrawText(title, x+(panelW-rl.MeasureText(title, hudFontSize+8))/2, y+hudPadding*2, hudFontSize+8, rl.DarkGray)
	lines := []string{
		narrate.Text(narrate.MsgStatus, h.endRun.Points),
		tracker.FormatElapsed(h.endRun.Elapsed),
	}
	ly := y + hudPadding*2 + hudLineHeight + 16
	for _, line := range lines {
		rl.DrawText(line, x+(panelW-rl.MeasureText(line, hudFontSize))/2, ly, hudFontSize, rl.DarkGray)
		ly += hudLineHeight
	}
}
