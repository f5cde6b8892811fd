// Package narrate speaks short accessibility messages. A new message always cancels the
// one in flight.
package narrate

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Narrator speaks text, canceling any utterance still in progress.
type Narrator interface {
	Narrate(text string)
}

// Say localizes key with args and hands it to n.
func Say(n Narrator, key string, args ...any) {
	if n == nil {
		return
	}
	n.Narrate(Text(key, args...))
}

// Nop drops every message.
type Nop struct{}

func (Nop) Narrate(string) {}

// Recorder keeps every message in order.
type Recorder struct {
	mu    sync.Mutex
	texts []string
}

func (r *Recorder) Narrate(text string) {
	r.mu.Lock()
	r.texts = append(r.texts, text)
	r.mu.Unlock()
}

// Texts returns a copy of everything narrated.
func (r *Recorder) Texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.texts...)
}

// Last returns the most recent message, or "".
func (r *Recorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.texts) == 0 {
		return ""
	}
	return r.texts[len(r.texts)-1]
}

// wordsPerSecond approximates speech rate for subtitle timing.
const wordsPerSecond = 2.5

// Subtitles shows the current utterance as on-screen text for roughly as long as it
// would take to speak. It also logs each utterance.
type Subtitles struct {
	log *zap.Logger
	now func() time.Time

	mu    sync.Mutex
	text  string
	until time.Time
}

// NewSubtitles returns a narrator backed by log; now defaults to time.Now.
func NewSubtitles(log *zap.Logger, now func() time.Time) *Subtitles {
	if log == nil {
		log = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &Subtitles{log: log, now: now}
}

func (s *Subtitles) Narrate(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.now()
	if s.text != "" && t.Before(s.until) {
		s.log.Debug("narration canceled", zap.String("text", s.text))
	}
	s.text = text
	s.until = t.Add(speakingTime(text))
	s.log.Info("narrate", zap.String("text", text), zap.String("locale", Locale.String()))
}

// Current returns the utterance in progress, or "" when nothing is being spoken.
func (s *Subtitles) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.text == "" || !s.now().Before(s.until) {
		return ""
	}
	return s.text
}

func speakingTime(text string) time.Duration {
	words := 1
	for _, r := range text {
		if r == ' ' {
			words++
		}
	}
	return time.Second + time.Duration(float64(words)/wordsPerSecond*float64(time.Second))
}
