package poller_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bidsmart-backend/internal/poller"
)

func TestPoll_StopsWhenDone(t *testing.T) {
	calls := 0
	res, err := poller.Poll(context.Background(), time.Millisecond, 10, func(context.Context) (bool, error) {
		calls++
		return calls == 3, nil
	})

	require.NoError(t, err)
	assert.True(t, res.Done)
	assert.False(t, res.Exhausted)
	assert.Equal(t, 3, res.Attempts)
}

func TestPoll_FirstAttemptIsImmediate(t *testing.T) {
	start := time.Now()
	res, err := poller.Poll(context.Background(), time.Hour, 5, func(context.Context) (bool, error) {
		return true, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, res.Attempts)
	assert.Less(t, time.Since(start), time.Second)
}

func TestPoll_CapIsSilent(t *testing.T) {
	res, err := poller.Poll(context.Background(), time.Millisecond, 4, func(context.Context) (bool, error) {
		return false, nil
	})

	require.NoError(t, err)
	assert.True(t, res.Exhausted)
	assert.False(t, res.Done)
	assert.Equal(t, 4, res.Attempts)
}

func TestPoll_ErrorsCountAsAttempts(t *testing.T) {
	calls := 0
	res, err := poller.Poll(context.Background(), time.Millisecond, 5, func(context.Context) (bool, error) {
		calls++
		if calls < 3 {
			return false, errors.New("temporary")
		}
		return true, nil
	})

	require.NoError(t, err)
	assert.True(t, res.Done)
	assert.Equal(t, 3, res.Attempts)
	assert.NoError(t, res.LastErr)
}

func TestPoll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	res, err := poller.Poll(ctx, time.Millisecond, 1000, func(context.Context) (bool, error) {
		calls++
		if calls == 2 {
			cancel()
		}
		return false, nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, res.Attempts)
	assert.False(t, res.Exhausted)
}

func TestAfter_RunsOnce(t *testing.T) {
	calls := 0
	ch := poller.After(context.Background(), time.Millisecond, func(context.Context) error {
		calls++
		return nil
	})

	select {
	case err := <-ch:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("delayed call never ran")
	}
	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 1, calls)
}

func TestAfter_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ran := make(chan struct{}, 1)
	ch := poller.After(ctx, time.Hour, func(context.Context) error {
		ran <- struct{}{}
		return nil
	})
	cancel()

	assert.ErrorIs(t, <-ch, context.Canceled)
	assert.Len(t, ran, 0)
}
