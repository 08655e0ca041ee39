package sweep

import (
    "context"
    "sync/atomic"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

type fakeStore struct {
    calls   atomic.Int64
    block   chan struct{}
    expired int64
    err     error
}

func (f *fakeStore) ExpireStale(ctx context.Context) (int64, error) {
    f.calls.Add(1)
    if f.block != nil {
        select {
        case <-f.block:
        case <-ctx.Done():
            return 0, ctx.Err()
        }
    }
    return f.expired, f.err
}

func TestSweepRunsImmediatelyAndStops(t *testing.T) {
    st := &fakeStore{expired: 2}
    s := New(st, time.Hour) // interval far beyond the test; only the initial pass fires

    ctx, cancel := context.WithCancel(context.Background())
    done := make(chan struct{})
    go func() {
        s.Run(ctx)
        close(done)
    }()

    require.Eventually(t, func() bool { return st.calls.Load() == 1 },
        time.Second, 10*time.Millisecond, "sweep should run once at start")

    cancel()
    select {
    case <-done:
    case <-time.After(time.Second):
        t.Fatal("sweeper did not stop after cancellation")
    }
}

func TestSweepSkipsOverlappingRun(t *testing.T) {
    st := &fakeStore{block: make(chan struct{})}
    s := New(st, time.Hour)

    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()

    go s.sweep(ctx) // first pass blocks inside the store
    require.Eventually(t, func() bool { return st.calls.Load() == 1 },
        time.Second, 10*time.Millisecond)

    s.sweep(ctx) // guarded: must not reach the store
    assert.Equal(t, int64(1), st.calls.Load())

    close(st.block)
    require.Eventually(t, func() bool { return !s.running.Load() },
        time.Second, 10*time.Millisecond)

    s.sweep(ctx) // guard released: runs again
    assert.Equal(t, int64(2), st.calls.Load())
}

func TestNewClampsInterval(t *testing.T) {
    s := New(&fakeStore{}, 0)
    assert.Equal(t, time.Second, s.interval)
}
