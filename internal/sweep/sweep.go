// Package sweep runs the periodic task that cancels pending bookings
// whose payment window has elapsed.
package sweep

import (
    "context"
    "log"
    "sync/atomic"
    "time"
)

// Store is the slice of the booking repository the sweep needs.
type Store interface {
    ExpireStale(ctx context.Context) (int64, error)
}

// Sweeper cancels expired pending bookings on a fixed interval. A run
// that overlaps a still-executing previous run is skipped rather than
// stacked. Failures are logged and never fatal.
type Sweeper struct {
    store    Store
    interval time.Duration
    running  atomic.Bool
}

// New returns a Sweeper. Intervals below one second are clamped.
func New(store Store, interval time.Duration) *Sweeper {
    if interval < time.Second {
        interval = time.Second
    }
    return &Sweeper{store: store, interval: interval}
}

// Run executes one sweep immediately, then on every tick until ctx is
// cancelled. It blocks; start it on its own goroutine.
func (s *Sweeper) Run(ctx context.Context) {
    s.sweep(ctx)
    t := time.NewTicker(s.interval)
    defer t.Stop()
    for {
        select {
        case <-ctx.Done():
            log.Printf("sweep: stopped")
            return
        case <-t.C:
            s.sweep(ctx)
        }
    }
}

// sweep performs a single pass. The atomic flag guards against
// overlapping executions when a pass outlives the interval.
func (s *Sweeper) sweep(ctx context.Context) {
    if !s.running.CompareAndSwap(false, true) {
        log.Printf("sweep: previous run still in progress, skipping")
        return
    }
    defer s.running.Store(false)

    n, err := s.store.ExpireStale(ctx)
    if err != nil {
        log.Printf("sweep: expire stale bookings failed: %v", err)
        return
    }
    if n > 0 {
        log.Printf("sweep: cancelled %d expired pending bookings", n)
    }
}
