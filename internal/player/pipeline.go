// Package player plays radio channels through an external media pipeline.
package player

// EventType classifies pipeline events
type EventType int

const (
	// EventError means the pipeline failed (network, codec, process crash)
	EventError EventType = iota
	// EventEndOfStream means the stream ended cleanly
	EventEndOfStream
)

func (t EventType) String() string {
	switch t {
	case EventError:
		return "error"
	case EventEndOfStream:
		return "end-of-stream"
	default:
		return "unknown"
	}
}

// Event is emitted when the pipeline stops on its own.
// Session is the value Open returned for the stream that stopped.
type Event struct {
	Type    EventType
	Err     error
	Session uint64
}

// Pipeline fetches, decodes and outputs a stream.
// Release on an idle pipeline is a no-op.
type Pipeline interface {
	// Open starts playing url, replacing whatever was playing.
	// Every call returns a new session id.
	Open(url string) (uint64, error)

	// Release stops playback and frees the pipeline
	Release() error

	// Events delivers errors and end-of-stream for streams not released by the caller
	Events() <-chan Event
}
