package core

import (
	"context"
	"errors"
	"time"

	"github.com/clnbrd/clnbrd/internal/clipboard"
	"github.com/clnbrd/clnbrd/internal/rules"
	"github.com/clnbrd/clnbrd/internal/utils"
)

// Monitor polls a board's change count and calls OnChange when it moves.
type Monitor struct {
	Board    clipboard.Board
	Interval time.Duration
	// OnChange returns false when it could not handle the change yet; the
	// same count is then offered again on the next tick.
	OnChange func(ctx context.Context, count int64) bool
	// Ignore, when set, filters counts produced by our own writes.
	Ignore func(count int64) bool
}

// Run polls until ctx is done. The count seen at start is the baseline, so
// contents present before Run do not trigger OnChange.
func (m *Monitor) Run(ctx context.Context) error {
	if m.Interval <= 0 {
		return errors.New("monitor interval must be positive")
	}
	last := m.Board.ChangeCount()
	ticker := time.NewTicker(m.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			count := m.Board.ChangeCount()
			if count == last {
				continue
			}
			if m.Ignore != nil && m.Ignore(count) {
				last = count
				continue
			}
			if m.OnChange(ctx, count) {
				last = count
			}
		}
	}
}

// AutoCleanMonitor returns a monitor running the auto-copy context on every
// external clipboard change. A change seen while the board is busy is
// retried on the following ticks. Large text is cleaned on a worker so
// polling continues meanwhile.
func (s *LocalCleanService) AutoCleanMonitor(interval time.Duration) *Monitor {
	return &Monitor{
		Board:    s.Board,
		Interval: interval,
		Ignore:   s.IsOwnWrite,
		OnChange: func(ctx context.Context, count int64) bool {
			if !s.Store.Snapshot().AnyAutoClean() {
				return true
			}
			p, err := s.CleanAsync(ctx, rules.AutoCopy)
			if errors.Is(err, ErrBusy) {
				utils.Debug("Auto-clean: board busy, retrying change %d", count)
				return false
			}
			if p.Background {
				utils.Debug("Auto-clean: change %d cleaning in background", count)
			}
			return true
		},
	}
}

// HistoryMonitor returns a monitor recording every external clipboard change
// into rec. Payloads over the size limit are skipped.
func (s *LocalCleanService) HistoryMonitor(rec HistoryRecorder, interval time.Duration) *Monitor {
	return &Monitor{
		Board:    s.Board,
		Interval: interval,
		Ignore:   s.IsOwnWrite,
		OnChange: func(ctx context.Context, _ int64) bool {
			if !s.tryAcquire() {
				return false
			}
			defer s.release()

			p, err := s.Board.Snapshot()
			if err != nil || len(p) == 0 {
				return true
			}
			rc := s.runtimeConfig()
			if rc.SkipLargeItems && p.Size() > rc.MaxPayloadBytes {
				utils.Debug("History: skipping %d byte payload", p.Size())
				return true
			}
			if err := rec.Record("copy", p); err != nil {
				utils.Debug("History record failed: %v", err)
			}
			return true
		},
	}
}
