// Package autosave saves a project a fixed quiet interval after its last
// change.
//
// A Scheduler is subscribed to the editor bus. Every change event pushes
// the pending save back by the interval, so a burst of edits produces a
// single save. Saves only run while the project is dirty.
package autosave

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/bep/debounce"

	"github.com/professor-lee/FalseClose/internal/editor"
)

// ErrStopped is returned by Flush after Stop.
var ErrStopped = errors.New("autosave: scheduler stopped")

// Scheduler debounces saves.
//
// Thread-safety: all methods are safe for concurrent use. Save runs on a
// timer goroutine or on the goroutine calling Flush, never two at once.
type Scheduler struct {
	debounced func(f func())
	dirty     func() bool
	save      func() error
	logger    *slog.Logger

	saveMu sync.Mutex // serializes save

	mu      sync.Mutex
	stopped bool
	saves   int
	lastErr error
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = l
	}
}

// New creates a scheduler that calls save interval after the last Notify,
// provided dirty reports true at that moment.
func New(interval time.Duration, dirty func() bool, save func() error, opts ...Option) *Scheduler {
	s := &Scheduler{
		debounced: debounce.New(interval),
		dirty:     dirty,
		save:      save,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Notify (re)starts the quiet interval.
func (s *Scheduler) Notify() {
	s.mu.Lock()
	stopped := s.stopped
	s.mu.Unlock()
	if stopped {
		return
	}
	s.debounced(s.fire)
}

// Handle is an editor.Handler: content changes call Notify. Loading a
// project does not, since a freshly loaded project is clean.
func (s *Scheduler) Handle(ev editor.Event) {
	switch ev.Type {
	case editor.EventNodeChanged, editor.EventPageCreated, editor.EventPageDeleted, editor.EventProjectChanged:
		s.Notify()
	}
}

// Flush cancels any pending save and saves now if the project is dirty.
func (s *Scheduler) Flush() error {
	s.mu.Lock()
	stopped := s.stopped
	s.mu.Unlock()
	if stopped {
		return ErrStopped
	}
	s.debounced(func() {})
	return s.run()
}

// Stop flushes and then disables the scheduler. Later calls to Notify are
// ignored. Stop is idempotent.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	s.debounced(func() {})
	err := s.run()

	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	return err
}

// Saves returns the number of successful saves.
func (s *Scheduler) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// Err returns the error of the most recent save, nil after a success.
func (s *Scheduler) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// fire is the debounced callback.
func (s *Scheduler) fire() {
	s.mu.Lock()
	stopped := s.stopped
	s.mu.Unlock()
	if stopped {
		return
	}
	if err := s.run(); err != nil {
		s.logger.Error("autosave failed", "error", err)
	}
}

func (s *Scheduler) run() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if !s.dirty() {
		return nil
	}
	err := s.save()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
	if err != nil {
		return err
	}
	s.saves++
	s.logger.Debug("autosaved", "saves", s.saves)
	return nil
}
