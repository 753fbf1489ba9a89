// ABOUTME: Channel-based generic stream used for interaction chunks and orchestration events
// ABOUTME: Stream[T] decouples the producer goroutine from consumers; Err reports how it ended

package interactions

import (
	"context"
	"sync"
	"sync/atomic"
)

// Stream provides channel-based access to values produced asynchronously.
// Consumers range over Events() and then check Err().
//
// Send writes to an internal channel that is never closed. Finish closes
// only the done channel; a drainer goroutine forwards buffered values to
// the consumer channel and closes it once done fires and the buffer is
// empty. Send and Finish therefore never race on a closed channel.
type Stream[T any] struct {
	events chan T
	out    chan T
	done   chan struct{}
	err    atomic.Pointer[error]
	once   sync.Once
}

// NewStream creates a stream with the given buffer size.
func NewStream[T any](bufSize int) *Stream[T] {
	s := &Stream[T]{
		events: make(chan T, bufSize),
		out:    make(chan T, bufSize),
		done:   make(chan struct{}),
	}
	go s.drain()
	return s
}

func (s *Stream[T]) drain() {
	defer close(s.out)
	for {
		select {
		case v := <-s.events:
			s.out <- v
		case <-s.done:
			for {
				select {
				case v := <-s.events:
					s.out <- v
				default:
					return
				}
			}
		}
	}
}

// Events returns the consumer channel. It is closed after the stream
// finishes and every buffered value was delivered.
func (s *Stream[T]) Events() <-chan T {
	return s.out
}

// Send delivers v. It returns false once the stream is finished or ctx is
// cancelled, so a producer never blocks on an abandoned stream.
func (s *Stream[T]) Send(ctx context.Context, v T) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.events <- v:
		return true
	case <-s.done:
		return false
	case <-ctx.Done():
		return false
	}
}

// Finish ends the stream. A nil err means it completed normally.
// Only the first call has an effect.
func (s *Stream[T]) Finish(err error) {
	s.once.Do(func() {
		if err != nil {
			s.err.Store(&err)
		}
		close(s.done)
	})
}

// Done is closed when the producer finished.
func (s *Stream[T]) Done() <-chan struct{} {
	return s.done
}

// Err blocks until the producer finished and returns its error.
func (s *Stream[T]) Err() error {
	<-s.done
	if p := s.err.Load(); p != nil {
		return *p
	}
	return nil
}

// Collect drains the stream and returns every value with the final error.
func (s *Stream[T]) Collect() ([]T, error) {
	var out []T
	for v := range s.Events() {
		out = append(out, v)
	}
	return out, s.Err()
}

// FailedStream returns a stream that yields nothing and ends with err.
func FailedStream[T any](err error) *Stream[T] {
	s := NewStream[T](0)
	s.Finish(err)
	return s
}
