package chat

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strconv"
	"sync/atomic"

	"github.com/zhouzirui/ai-code-helper/client/internal/model/chat"
)

// Handlers receive the events of one chat turn. Any of them may be nil.
type Handlers struct {
	// OnChunk gets each text payload exactly as the server sent it.
	OnChunk func(text string)
	// OnError gets the error that ended the turn, ErrStreamClosed when the
	// server simply closed the stream.
	OnError func(err error)
	// OnComplete runs once after OnError.
	OnComplete func()
}

// Stream is the handle of an open chat turn.
type Stream struct {
	turn   chat.Turn
	cancel context.CancelCauseFunc
	closed atomic.Bool
	state  atomic.Int32
	done   chan struct{}
}

// ChatWithSSE opens a turn and returns immediately. Handlers run on a single
// goroutine owned by the stream, in the order events arrive. The turn ends
// with OnError then OnComplete, unless the caller closes the stream or
// cancels ctx first, in which case no further handler runs.
func (c *Client) ChatWithSSE(ctx context.Context, memoryID int, message string, h Handlers) *Stream {
	streamCtx, cancel := context.WithCancelCause(ctx)
	s := &Stream{
		turn:   chat.Turn{MemoryID: memoryID, Message: message},
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.state.Store(int32(chat.StateConnecting))

	go s.run(ctx, streamCtx, c, h)
	return s
}

func (s *Stream) run(parent, ctx context.Context, c *Client, h Handlers) {
	defer close(s.done)
	defer s.cancel(nil)

	cn, err := c.connect(ctx, s.turn.MemoryID, s.turn.Message)
	if err != nil {
		s.finish(parent, c, h, err)
		return
	}
	s.turn.RequestID = cn.requestID
	defer cn.close()

	for {
		ev, err := cn.next()
		if err != nil {
			cn.close()
			s.finish(parent, c, h, err)
			return
		}
		if !ev.IsMessage() {
			c.logger.Debug("[chat] skipping named event", "event", ev.Type, "requestId", cn.requestID)
			continue
		}

		s.state.CompareAndSwap(int32(chat.StateConnecting), int32(chat.StateStreaming))
		c.logger.Debug("[chat] raw chunk", "data", strconv.Quote(ev.Data), "length", len(ev.Data), "requestId", cn.requestID)

		if s.silenced(parent) {
			return
		}
		s.deliver(c, h, ev.Data)
	}
}

// deliver hands a chunk to OnChunk; a panicking handler is logged and the
// stream carries on.
func (s *Stream) deliver(c *Client, h Handlers, data string) {
	if h.OnChunk == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("[chat] chunk handler panicked", "panic", fmt.Sprint(r), "requestId", s.turn.RequestID)
		}
	}()
	h.OnChunk(data)
}

func (s *Stream) finish(parent context.Context, c *Client, h Handlers, err error) {
	s.state.Store(int32(chat.StateClosed))
	if s.silenced(parent) {
		return
	}

	c.logger.Debug("[chat] stream ended", "error", err, "memoryId", s.turn.MemoryID, "requestId", s.turn.RequestID)
	if h.OnError != nil {
		h.OnError(err)
	}
	if h.OnComplete != nil {
		h.OnComplete()
	}
}

func (s *Stream) silenced(parent context.Context) bool {
	return s.closed.Load() || parent.Err() != nil
}

// Close tears the turn down. No handler starts after Close returns; one
// already running on the stream goroutine is allowed to finish.
func (s *Stream) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		s.cancel(errClosedByCaller)
	}
	return nil
}

// Done is closed once the stream goroutine has exited.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

// State reports where the turn is in its lifecycle.
func (s *Stream) State() chat.State {
	if s.closed.Load() {
		return chat.StateClosed
	}
	return chat.State(s.state.Load())
}

// Chunks is the pull form of ChatWithSSE. It yields every text chunk with a
// nil error; a server close ends the sequence normally, any other failure is
// yielded once as ("", err). Breaking out of the loop closes the connection.
// The sequence is single-use.
func (c *Client) Chunks(ctx context.Context, memoryID int, message string) iter.Seq2[string, error] {
	var used atomic.Bool
	return func(yield func(string, error) bool) {
		if !used.CompareAndSwap(false, true) {
			yield("", ErrTurnConsumed)
			return
		}

		cn, err := c.connect(ctx, memoryID, message)
		if err != nil {
			yield("", err)
			return
		}
		defer cn.close()

		for {
			ev, err := cn.next()
			if errors.Is(err, ErrStreamClosed) {
				return
			}
			if err != nil {
				yield("", err)
				return
			}
			if !ev.IsMessage() {
				continue
			}
			if !yield(ev.Data, nil) {
				return
			}
		}
	}
}
