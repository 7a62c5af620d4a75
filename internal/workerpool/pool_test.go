package workerpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitReturnsValue(t *testing.T) {
	p := New(2, 4)
	defer p.Stop()

	f := Submit(p, func() (int, error) { return 42, nil })
	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestSubmitPropagatesError(t *testing.T) {
	p := New(1, 1)
	defer p.Stop()

	boom := errors.New("boom")
	_, err := Submit(p, func() (string, error) { return "", boom }).Result()
	assert.ErrorIs(t, err, boom)
}

func TestPanicBecomesError(t *testing.T) {
	p := New(1, 1)
	defer p.Stop()

	_, err := Submit(p, func() (int, error) { panic("сломалось") }).Result()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "сломалось")

	// воркер продолжает работать после паники
	v, err := Submit(p, func() (int, error) { return 1, nil }).Result()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestAwaitTimeoutDoesNotCancelJob(t *testing.T) {
	p := New(1, 1)
	defer p.Stop()

	release := make(chan struct{})
	var finished atomic.Bool
	f := Submit(p, func() (int, error) {
		<-release
		finished.Store(true)
		return 7, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	v, err := f.Result()
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.True(t, finished.Load())
}

func TestSubmitAfterStop(t *testing.T) {
	p := New(1, 1)
	p.Stop()
	p.Stop()

	_, err := Submit(p, func() (int, error) { return 1, nil }).Result()
	assert.ErrorIs(t, err, ErrPoolClosed)
	assert.Equal(t, int64(1), p.GetStats().Rejected)
}

func TestManyJobsComplete(t *testing.T) {
	p := New(4, 8)
	defer p.Stop()

	futures := make([]*Future[int], 100)
	for i := range futures {
		i := i
		futures[i] = Submit(p, func() (int, error) { return i * i, nil })
	}
	for i, f := range futures {
		v, err := f.Result()
		require.NoError(t, err)
		assert.Equal(t, i*i, v)
	}
	assert.Equal(t, int64(100), p.GetStats().Submitted)
}

func TestCompletedFuture(t *testing.T) {
	f := Completed("готово", nil)
	select {
	case <-f.Done():
	default:
		t.Fatal("future должен быть завершён")
	}
	v, err := f.Result()
	require.NoError(t, err)
	assert.Equal(t, "готово", v)
}
