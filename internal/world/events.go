package world

import "time"

// EventKind names a progress event.
type EventKind string

const (
	EventStatus EventKind = "status"
	EventPickup EventKind = "pickup"
	EventWon    EventKind = "won"
)

// Event is published to every Sink as progress changes.
type Event struct {
	Kind    EventKind     `json:"kind"`
	Points  int           `json:"points"`
	Text    string        `json:"text,omitempty"`
	Prize   string        `json:"prize,omitempty"`
	Elapsed time.Duration `json:"elapsed_ns,omitempty"`
}

// Sink receives progress events on the game goroutine. Implementations must not block.
type Sink interface {
	Publish(e Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) Publish(e Event) { f(e) }
