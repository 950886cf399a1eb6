package stream

import (
	"fmt"
	"io"
	"sync"
)

type EventType string

const (
	EventChunk EventType = "chunk"
	EventDone  EventType = "done"
)

// Event is one unit of live generation output.
type Event struct {
	Type     EventType `json:"type"`
	Stage    string    `json:"stage"`
	Platform string    `json:"platform"`
	Chunk    string    `json:"chunk,omitempty"`
}

// Sink receives streamed events. Send never blocks on a slow consumer for
// long and never fails the caller; delivery is best-effort.
type Sink interface {
	Send(event Event)
	Close() error
}

// Handler adapts a sink to the chunk callback used by the generation layer.
func Handler(sink Sink, stage, platform string) func(chunk string) {
	if sink == nil {
		return nil
	}
	return func(chunk string) {
		sink.Send(Event{Type: EventChunk, Stage: stage, Platform: platform, Chunk: chunk})
	}
}

// ConsoleSink prints chunks as they arrive, with a header per stage.
type ConsoleSink struct {
	mu        sync.Mutex
	w         io.Writer
	lastStage string
}

func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{w: w}
}

func (s *ConsoleSink) Send(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := event.Platform + "/" + event.Stage
	switch event.Type {
	case EventChunk:
		if key != s.lastStage {
			fmt.Fprintf(s.w, "\n--- %s (%s) ---\n", event.Stage, event.Platform)
			s.lastStage = key
		}
		fmt.Fprint(s.w, event.Chunk)
	case EventDone:
		if key == s.lastStage {
			fmt.Fprintln(s.w)
			s.lastStage = ""
		}
	}
}

func (s *ConsoleSink) Close() error {
	return nil
}

// Fanout forwards every event to each sink in order.
type Fanout []Sink

func (f Fanout) Send(event Event) {
	for _, sink := range f {
		sink.Send(event)
	}
}

func (f Fanout) Close() error {
	var first error
	for _, sink := range f {
		if err := sink.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
