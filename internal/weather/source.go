package weather

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FetchFunc produces one attempt's worth of data for a source.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// State is the observable condition of a source. A failed attempt only moves
// LastErr and Loading; Value and HasValue survive until the next success, so
// callers can keep showing stale data annotated with the error.
type State[T any] struct {
	Loading   bool
	LastErr   error
	Value     T
	HasValue  bool
	UpdatedAt time.Time
}

// Source is the per-endpoint state machine: it owns the last known state of
// one provider endpoint and runs at most one authoritative fetch attempt at a
// time. Triggering while an attempt is in flight supersedes it: both fetches
// may run to completion, but only the completion carrying the latest attempt
// sequence is applied; stale completions are discarded. Subscribers observe
// every transition (loading and terminal) in order.
type Source[T any] struct {
	name  string
	log   *slog.Logger
	fetch FetchFunc[T]

	mu      sync.Mutex
	seq     uint64
	state   State[T]
	subs    map[uuid.UUID]func(State[T])
	pending []notification[T]
	closed  bool

	wake chan struct{}
	done chan struct{}
	once sync.Once
}

type notification[T any] struct {
	snap State[T]
	fns  []func(State[T])
}

// NewSource creates a source around the given default fetch.
func NewSource[T any](name string, log *slog.Logger, fetch FetchFunc[T]) *Source[T] {
	s := &Source[T]{
		name:  name,
		log:   log,
		fetch: fetch,
		subs:  make(map[uuid.UUID]func(State[T])),
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	go s.deliver()
	return s
}

// Name returns the source identifier used in logs and the HTTP surface.
func (s *Source[T]) Name() string { return s.name }

// Snapshot returns a copy of the current state, safe for concurrent readers.
func (s *Source[T]) Snapshot() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers a callback invoked on every state transition. The
// returned token cancels the subscription via Unsubscribe. Callbacks run on a
// single delivery goroutine, in transition order.
func (s *Source[T]) Subscribe(fn func(State[T])) uuid.UUID {
	id := uuid.New()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[id] = fn
	return id
}

// Unsubscribe removes a previously registered callback.
func (s *Source[T]) Unsubscribe(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

// Trigger starts an attempt using the source's default fetch.
func (s *Source[T]) Trigger(ctx context.Context) {
	s.TriggerWith(ctx, s.fetch)
}

// TriggerWith starts an attempt using an alternate fetch, e.g. a daily-history
// fetch with an explicit date window. The attempt is tagged with the next
// sequence number and becomes the only one whose completion may be applied.
func (s *Source[T]) TriggerWith(ctx context.Context, fetch FetchFunc[T]) {
	s.mu.Lock()
	s.seq++
	attempt := s.seq
	s.state.Loading = true
	s.publishLocked()
	s.mu.Unlock()

	s.log.Debug("fetch started", "source", s.name, "attempt", attempt)

	go func() {
		value, err := fetch(ctx)
		s.complete(attempt, value, err)
	}()
}

// Close stops notification delivery. Pending triggers may still complete and
// update state, but no further callbacks are invoked.
func (s *Source[T]) Close() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.done)
	})
}

func (s *Source[T]) complete(attempt uint64, value T, err error) {
	s.mu.Lock()
	if attempt != s.seq {
		s.mu.Unlock()
		s.log.Debug("discarding superseded completion", "source", s.name, "attempt", attempt)
		return
	}

	s.state.Loading = false
	if err != nil {
		s.state.LastErr = err
		s.publishLocked()
		s.mu.Unlock()

		var empty *EmptyResultError
		if errors.As(err, &empty) {
			s.log.Info("fetch returned no data", "source", s.name, "reason", empty.Message)
		} else {
			s.log.Warn("fetch failed", "source", s.name, "err", err)
		}
		return
	}

	s.state.Value = value
	s.state.HasValue = true
	s.state.LastErr = nil
	s.state.UpdatedAt = time.Now().UTC()
	s.publishLocked()
	s.mu.Unlock()

	s.log.Debug("fetch succeeded", "source", s.name, "attempt", attempt)
}

// publishLocked queues the current state for delivery. Queuing happens under
// the state mutex so subscribers see transitions in the order they were
// applied; delivery itself runs on a dedicated goroutine so callbacks can
// safely read Snapshot without deadlocking. Callers must hold s.mu.
func (s *Source[T]) publishLocked() {
	if s.closed || len(s.subs) == 0 {
		return
	}
	fns := make([]func(State[T]), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.pending = append(s.pending, notification[T]{snap: s.state, fns: fns})

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Source[T]) deliver() {
	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
		}

		for {
			s.mu.Lock()
			batch := s.pending
			s.pending = nil
			s.mu.Unlock()

			if len(batch) == 0 {
				break
			}
			for _, n := range batch {
				for _, fn := range n.fns {
					fn(n.snap)
				}
			}
		}
	}
}
