// Package sse reads and writes text/event-stream framing.
//
// Parsing follows the WHATWG event-stream rules:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

// MessageType is the event type used when the stream names none.
const MessageType = "message"

// Event is one dispatched event: the fields accumulated up to a blank line.
type Event struct {
	// Type is the "event:" field. Empty means MessageType.
	Type string

	// Data joins every "data:" line of the event with "\n".
	Data string

	// ID is the last "id:" field seen on the stream.
	ID string

	// Retry is the reconnection delay in milliseconds from a "retry:" field,
	// or zero.
	Retry int
}

// IsMessage reports whether the event is of the default message type.
func (e Event) IsMessage() bool {
	return e.Type == "" || e.Type == MessageType
}
