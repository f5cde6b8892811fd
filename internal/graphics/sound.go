package graphics

import (
	"path/filepath"

	rl "github.com/gen2brain/raylib-go/raylib"
	"go.uber.org/zap"

	"toycar/internal/audio"
)

// Sounds plays cues and the ambient loop on the raylib audio device. Play only queues
// the sound, so it never blocks the frame. Update must be called once per frame to keep
// the ambient stream fed.
type Sounds struct {
	log    *zap.Logger
	sounds map[audio.Cue]rl.Sound

	music    rl.Music
	hasMusic bool
	started  bool
}

// LoadSounds opens the audio device and loads every cue in audio.Files from staticDir.
// Files that fail to load are logged and play as silence.
func LoadSounds(staticDir string, log *zap.Logger) *Sounds {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Sounds{log: log.Named("audio"), sounds: make(map[audio.Cue]rl.Sound)}
	rl.InitAudioDevice()
	if !rl.IsAudioDeviceReady() {
		s.log.Warn("audio device not available")
		return s
	}
	for cue, name := range audio.Files {
		path := filepath.Join(staticDir, filepath.FromSlash(name))
		snd := rl.LoadSound(path)
		if !rl.IsSoundValid(snd) {
			s.log.Warn("cannot load sound", zap.String("cue", string(cue)), zap.String("path", path))
			continue
		}
		s.sounds[cue] = snd
	}
	path := filepath.Join(staticDir, filepath.FromSlash(audio.AmbientFile))
	if music := rl.LoadMusicStream(path); rl.IsMusicValid(music) {
		music.Looping = true
		s.music, s.hasMusic = music, true
	} else {
		s.log.Warn("cannot load ambient track", zap.String("path", path))
	}
	return s
}

// SetPlaying implements audio.Ambient.
func (s *Sounds) SetPlaying(on bool) {
	if !s.hasMusic {
		return
	}
	switch {
	case on && !s.started:
		rl.PlayMusicStream(s.music)
		s.started = true
	case on:
		rl.ResumeMusicStream(s.music)
	default:
		rl.PauseMusicStream(s.music)
	}
}

// Update refills the ambient stream buffer.
func (s *Sounds) Update() {
	if s.hasMusic {
		rl.UpdateMusicStream(s.music)
	}
}

// Play starts cue from the beginning.
func (s *Sounds) Play(cue audio.Cue) {
	snd, ok := s.sounds[cue]
	if !ok {
		return
	}
	rl.PlaySound(snd)
}

// Close unloads the sounds and the audio device.
func (s *Sounds) Close() {
	for cue, snd := range s.sounds {
		rl.UnloadSound(snd)
		delete(s.sounds, cue)
	}
	if s.hasMusic {
		rl.UnloadMusicStream(s.music)
		s.hasMusic = false
	}
	if rl.IsAudioDeviceReady() {
		rl.CloseAudioDevice()
	}
}
