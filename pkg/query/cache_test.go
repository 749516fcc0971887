package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_EmptyKeyNeverFetches(t *testing.T) {
	c := NewCache(nil)
	called := false

	st := c.Fetch(context.Background(), "", func(context.Context) (any, error) {
		called = true
		return 1, nil
	})

	assert.False(t, called)
	assert.Nil(t, st.Data)
	_, ok := c.Snapshot("")
	assert.False(t, ok)
}

func TestCache_ConcurrentFetchesShareOneCall(t *testing.T) {
	c := NewCache(nil)
	var calls int32
	release := make(chan struct{})

	fetcher := func(context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "value", nil
	}

	var wg sync.WaitGroup
	results := make([]State, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.Fetch(context.Background(), "/properties", fetcher)
		}(i)
	}

	require.Eventually(t, func() bool {
		st, ok := c.Snapshot("/properties")
		return ok && st.Loading
	}, time.Second, time.Millisecond)
	// give the remaining goroutines time to join the in-flight call
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, st := range results {
		assert.Equal(t, "value", st.Data)
		assert.False(t, st.Loading)
	}
}

func TestCache_FailureKeepsPreviousData(t *testing.T) {
	c := NewCache(nil)
	ctx := context.Background()
	fail := false
	boom := errors.New("boom")

	fetcher := func(context.Context) (any, error) {
		if fail {
			return nil, boom
		}
		return []string{"a"}, nil
	}

	st := c.Fetch(ctx, "/users", fetcher)
	require.NoError(t, st.Err)

	fail = true
	st, ok := c.Revalidate(ctx, "/users")
	require.True(t, ok)
	assert.ErrorIs(t, st.Err, boom)
	assert.Equal(t, []string{"a"}, st.Data)
}

func TestCache_RevalidateUnknownKey(t *testing.T) {
	c := NewCache(nil)
	_, ok := c.Revalidate(context.Background(), "/bookings")
	assert.False(t, ok)
}
