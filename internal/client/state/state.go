// Package state tracks the lifecycle of one independently loaded piece of
// screen data: idle, loading, then success or error, re-entered on retry.
//
// Every load takes a ticket from Begin. Only the holder of the latest ticket
// may settle the section, so a slow response that lost a race with a newer
// request is dropped instead of overwriting fresher data.
package state

import (
	"errors"
	"sync"

	"github.com/atinyakov/DigitalHouse/internal/client/transport"
)

// Phase is where a section is in its load cycle.
type Phase int

const (
	Idle Phase = iota
	Loading
	Success
	Error
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Error:
		return "error"
	}
	return "idle"
}

// Failure is the error shape held in state: display text plus the HTTP
// status, 0 when no response was received.
type Failure struct {
	Message string
	Status  int
}

// FailureFrom converts err into a Failure. fallback is used when err
// carries nothing fit to show.
func FailureFrom(err error, fallback string) *Failure {
	if err == nil {
		return nil
	}
	var apiErr *transport.APIError
	if !errors.As(err, &apiErr) {
		if fallback == "" {
			fallback = transport.GenericMessage
		}
		return &Failure{Message: fallback}
	}
	msg := transport.UserMessage(err)
	if msg == transport.GenericMessage && fallback != "" {
		msg = fallback
	}
	return &Failure{Message: msg, Status: apiErr.Status}
}

// Ticket identifies one load of a section.
type Ticket uint64

// Snapshot is a consistent copy of a section.
type Snapshot[T any] struct {
	Phase   Phase
	Data    T
	HasData bool
	Failure *Failure
}

// Section holds one piece of data and its load state. The zero value is an
// idle section ready to use.
type Section[T any] struct {
	mu      sync.RWMutex
	phase   Phase
	data    T
	hasData bool
	failure *Failure
	gen     uint64
}

// Begin starts a load and returns its ticket. Any earlier ticket becomes stale.
// Data from the previous load stays visible until the new one settles.
func (s *Section[T]) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.phase = Loading
	s.failure = nil
	return Ticket(s.gen)
}

// Peek returns the latest ticket without starting a load. Follow-up loads
// such as next pages settle with it, so they are dropped if a fresh load
// begins while they are in flight.
func (s *Section[T]) Peek() Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Ticket(s.gen)
}

// Current reports whether t is the latest ticket.
func (s *Section[T]) Current(t Ticket) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(t) == s.gen
}

// Resolve stores v if t is still current and reports whether it did.
func (s *Section[T]) Resolve(t Ticket, v T) bool {
	return s.Apply(t, func(T) T { return v })
}

// Apply replaces the data with fn(old) if t is still current, marking the
// section successful. It reports whether fn ran.
func (s *Section[T]) Apply(t Ticket, fn func(old T) T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if uint64(t) != s.gen {
		return false
	}
	s.data = fn(s.data)
	s.hasData = true
	s.phase = Success
	s.failure = nil
	return true
}

// Fail records f if t is still current and reports whether it did.
func (s *Section[T]) Fail(t Ticket, f *Failure) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if uint64(t) != s.gen {
		return false
	}
	s.phase = Error
	s.failure = f
	return true
}

// Update changes the data in place without starting a load, e.g. to fold a
// mutation result into a loaded post. It is a no-op until data exists.
func (s *Section[T]) Update(fn func(T) T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasData {
		return false
	}
	s.data = fn(s.data)
	return true
}

// Set stores v outside the ticket cycle and invalidates any outstanding load.
func (s *Section[T]) Set(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.data = v
	s.hasData = true
	s.phase = Success
	s.failure = nil
}

// ClearFailure drops a recorded failure, returning an errored section to idle.
func (s *Section[T]) ClearFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failure = nil
	if s.phase == Error {
		s.phase = Idle
	}
}

// Reset returns the section to idle with no data and invalidates any
// outstanding load.
func (s *Section[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	s.gen++
	s.phase = Idle
	s.data = zero
	s.hasData = false
	s.failure = nil
}

// Snapshot returns a copy of the section's state.
func (s *Section[T]) Snapshot() Snapshot[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot[T]{Phase: s.phase, Data: s.data, HasData: s.hasData, Failure: s.failure}
}

// Data returns the current data and whether any has been loaded.
func (s *Section[T]) Data() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data, s.hasData
}

// Phase returns the current phase.
func (s *Section[T]) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// Failure returns the recorded failure, or nil.
func (s *Section[T]) Failure() *Failure {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failure
}

// Loading reports whether a load is outstanding.
func (s *Section[T]) Loading() bool {
	return s.Phase() == Loading
}
