package views

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoaderLastRequestWins(t *testing.T) {
	var l Loader[string]
	releaseA := make(chan struct{})
	startedA := make(chan struct{})
	var aCancelled atomic.Bool

	type result struct {
		data string
		err  error
	}
	aDone := make(chan result, 1)
	go func() {
		data, err := l.Load(context.Background(), func(ctx context.Context) (string, error) {
			close(startedA)
			<-releaseA
			aCancelled.Store(ctx.Err() != nil)
			return "A", nil
		})
		aDone <- result{data, err}
	}()
	<-startedA

	data, err := l.Load(context.Background(), func(context.Context) (string, error) {
		return "B", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "B", data)

	close(releaseA)
	a := <-aDone
	assert.ErrorIs(t, a.err, ErrSuperseded)
	assert.Empty(t, a.data)
	assert.True(t, aCancelled.Load())

	st := l.State()
	assert.Equal(t, "B", st.Data)
	assert.False(t, st.Loading)
	assert.True(t, st.Loaded)
	assert.NoError(t, st.Err)
}

func TestLoaderFailureKeepsLastData(t *testing.T) {
	var l Loader[int]
	_, err := l.Load(context.Background(), func(context.Context) (int, error) { return 42, nil })
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = l.Load(context.Background(), func(context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)

	st := l.State()
	assert.Equal(t, 42, st.Data)
	assert.ErrorIs(t, st.Err, boom)
	assert.False(t, st.Loading)
}

func TestLoaderReportsTransitions(t *testing.T) {
	var l Loader[int]
	var seen []bool
	l.OnChange(func(st State[int]) { seen = append(seen, st.Loading) })

	_, err := l.Load(context.Background(), func(context.Context) (int, error) { return 1, nil })
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, seen)
}

func TestLoaderStopCancelsInFlight(t *testing.T) {
	var l Loader[int]
	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, err := l.Load(context.Background(), func(ctx context.Context) (int, error) {
			close(started)
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(5 * time.Second):
				return 1, nil
			}
		})
		done <- err
	}()
	<-started

	l.Stop()

	assert.ErrorIs(t, <-done, ErrSuperseded)
	assert.False(t, l.State().Loading)
	assert.False(t, l.State().Loaded)
}

func TestPollerRefreshesUntilStopped(t *testing.T) {
	var n atomic.Int32
	p := StartPoller(context.Background(), 5*time.Millisecond, func(context.Context) { n.Add(1) }, nil)

	require.Eventually(t, func() bool { return n.Load() >= 2 }, time.Second, time.Millisecond)
	p.Stop()
	p.Stop()

	after := n.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, n.Load())
}

func TestPollerStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := StartPoller(ctx, time.Hour, func(context.Context) {}, nil)
	cancel()

	select {
	case <-p.Done():
	case <-time.After(time.Second):
		t.Fatal("poller did not exit after context cancellation")
	}
	p.Stop()
}
