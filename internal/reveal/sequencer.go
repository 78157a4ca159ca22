// Package reveal paces the left-to-right reveal of fetched values into a row:
// each field is marked hidden, written after a short delay, then shown again.
package reveal

import (
	"context"
	"sync"
	"time"

	"frame/internal/rows"
)

// Timing holds the two pauses of a single field reveal.
type Timing struct {
	Hide   time.Duration
	Settle time.Duration
}

// Target is the subset of the row store the sequencer writes to.
type Target interface {
	Update(id string, patch rows.Patch) bool
	SetHidden(id string, field rows.Field, hidden bool) bool
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sequencer reveals fields into rows. Reveals of different rows run
// independently; reveals of the same row are serialized so their fields never
// interleave.
type Sequencer struct {
	target Target
	sleep  SleepFunc

	mu    sync.Mutex
	locks map[string]*rowLock
}

type rowLock struct {
	mu   sync.Mutex
	refs int
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithSleep replaces the timer used between steps.
func WithSleep(fn SleepFunc) Option {
	return func(s *Sequencer) {
		if fn != nil {
			s.sleep = fn
		}
	}
}

// New returns a sequencer writing to target.
func New(target Target, opts ...Option) *Sequencer {
	s := &Sequencer{target: target, sleep: Sleep, locks: make(map[string]*rowLock)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reveal writes data into row rowID one field at a time in rows.RevealOrder.
// Fields absent from data are skipped. Any videoUrl value is written first
// without pacing. Writes to an unknown row are no-ops. If ctx ends mid-reveal
// the current field is shown again and ctx.Err() is returned.
func (s *Sequencer) Reveal(ctx context.Context, rowID string, data rows.Patch, timing Timing) error {
	unlock := s.lockRow(rowID)
	defer unlock()

	if url, ok := data[rows.FieldVideoURL]; ok {
		s.target.Update(rowID, rows.Patch{rows.FieldVideoURL: url})
	}
	for _, field := range rows.RevealOrder {
		value, ok := data[field]
		if !ok {
			continue
		}
		s.target.SetHidden(rowID, field, true)
		if err := s.sleep(ctx, timing.Hide); err != nil {
			s.target.SetHidden(rowID, field, false)
			return err
		}
		s.target.Update(rowID, rows.Patch{field: value})
		if err := s.sleep(ctx, timing.Settle); err != nil {
			s.target.SetHidden(rowID, field, false)
			return err
		}
		s.target.SetHidden(rowID, field, false)
	}
	return nil
}

func (s *Sequencer) lockRow(rowID string) func() {
	s.mu.Lock()
	lock, ok := s.locks[rowID]
	if !ok {
		lock = &rowLock{}
		s.locks[rowID] = lock
	}
	lock.refs++
	s.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		s.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(s.locks, rowID)
		}
		s.mu.Unlock()
	}
}

// Sleep waits for d using a timer, returning early with ctx.Err() when ctx ends.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
