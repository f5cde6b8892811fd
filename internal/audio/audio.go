// Package audio names the game's sound cues and the player interface that plays them.
package audio

import "sync"

// Cue identifies a one-shot sound effect.
type Cue string

const (
	CuePrize  Cue = "prize"
	CueCoin   Cue = "coin"
	CueWinner Cue = "winner"
)

// Files maps cues to sound files under the static directory.
var Files = map[Cue]string{
	CuePrize:  "sounds/premio.mp3",
	CueCoin:   "sounds/coin.ogg",
	CueWinner: "sounds/winner.mp3",
}

// AmbientFile is the looping background track under the static directory.
const AmbientFile = "sounds/ambiente.mp3"

// Ambient is the background loop. SetPlaying(false) pauses it; SetPlaying(true) resumes
// where it left off.
type Ambient interface {
	SetPlaying(on bool)
}

// Player plays cues without blocking the caller. Unknown cues are ignored.
type Player interface {
	Play(cue Cue)
}

// Nop discards every cue.
type Nop struct{}

func (Nop) Play(Cue) {}

func (Nop) SetPlaying(bool) {}

// Recorder remembers played cues in order and the last ambient state.
type Recorder struct {
	mu      sync.Mutex
	played  []Cue
	ambient bool
}

func (r *Recorder) SetPlaying(on bool) {
	r.mu.Lock()
	r.ambient = on
	r.mu.Unlock()
}

// AmbientPlaying reports the last state passed to SetPlaying.
func (r *Recorder) AmbientPlaying() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ambient
}

func (r *Recorder) Play(cue Cue) {
	r.mu.Lock()
	r.played = append(r.played, cue)
	r.mu.Unlock()
}

// Played returns a copy of the cues played so far.
func (r *Recorder) Played() []Cue {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Cue(nil), r.played...)
}

// Count returns how many times cue was played.
func (r *Recorder) Count(cue Cue) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.played {
		if c == cue {
			n++
		}
	}
	return n
}
