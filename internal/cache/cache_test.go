package cache

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

func TestCache_SetGet(t *testing.T) {
	c := New[string]("test", time.Minute)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("k", "v")
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)
	assert.Equal(t, 1, c.Len())

	c.Flush()
	assert.Equal(t, 0, c.Len())
}

func TestCache_Expiry(t *testing.T) {
	c := New[int]("test", 20*time.Millisecond)
	c.Set("k", 1)

	time.Sleep(40 * time.Millisecond)
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCache_Disabled(t *testing.T) {
	var nilCache *Cache[string]
	for name, c := range map[string]*Cache[string]{"nil": nilCache, "zero ttl": New[string]("off", 0)} {
		t.Run(name, func(t *testing.T) {
			assert.False(t, c.Enabled())
			c.Set("k", "v")
			_, ok := c.Get("k")
			assert.False(t, ok)
			assert.Equal(t, 0, c.Len())

			calls := 0
			for range 2 {
				v, hit, err := c.GetOrLoad(context.Background(), "k", func(context.Context) (string, error) {
					calls++
					return "loaded", nil
				})
				require.NoError(t, err)
				assert.False(t, hit)
				assert.Equal(t, "loaded", v)
			}
			assert.Equal(t, 2, calls)
		})
	}
}

func TestCache_GetOrLoad(t *testing.T) {
	c := New[string]("test", time.Minute)
	ctx := context.Background()

	v, hit, err := c.GetOrLoad(ctx, "k", func(context.Context) (string, error) { return "first", nil })
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "first", v)

	v, hit, err = c.GetOrLoad(ctx, "k", func(context.Context) (string, error) { return "second", nil })
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "first", v)
}

func TestCache_GetOrLoadErrorNotCached(t *testing.T) {
	c := New[string]("test", time.Minute)
	boom := errors.New("boom")

	_, _, err := c.GetOrLoad(context.Background(), "k", func(context.Context) (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())
}

func TestCache_GetOrLoadDeduplicates(t *testing.T) {
	c := New[int]("test", time.Minute)
	var calls atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, _, err := c.GetOrLoad(context.Background(), "k", func(context.Context) (int, error) {
				calls.Add(1)
				<-release
				return 42, nil
			})
			assert.NoError(t, err)
			assert.Equal(t, 42, v)
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(8))
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestCache_GetOrLoadSurvivesFirstCallerCancel(t *testing.T) {
	c := New[string]("test", time.Minute)
	started := make(chan struct{})
	release := make(chan struct{})
	var loadErr error

	load := func(ctx context.Context) (string, error) {
		close(started)
		<-release
		loadErr = ctx.Err()
		return "shared", nil
	}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstDone := make(chan error, 1)
	go func() {
		_, _, err := c.GetOrLoad(firstCtx, "k", load)
		firstDone <- err
	}()
	<-started

	secondDone := make(chan string, 1)
	go func() {
		v, _, err := c.GetOrLoad(context.Background(), "k", func(context.Context) (string, error) {
			return "", errors.New("second load must join the first")
		})
		assert.NoError(t, err)
		secondDone <- v
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	select {
	case err := <-firstDone:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting")
	}

	close(release)
	select {
	case v := <-secondDone:
		assert.Equal(t, "shared", v)
	case <-time.After(time.Second):
		t.Fatal("second caller did not get the shared result")
	}
	assert.NoError(t, loadErr)

	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "shared", v)
}

func TestCache_GetOrLoadKeepsCallerDeadline(t *testing.T) {
	c := New[string]("test", time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
	defer cancel()

	_, _, err := c.GetOrLoad(ctx, "k", func(loadCtx context.Context) (string, error) {
		_, ok := loadCtx.Deadline()
		assert.True(t, ok)
		return "v", nil
	})
	require.NoError(t, err)
}

func TestKey(t *testing.T) {
	assert.Len(t, Key("explain", "class A {}"), 16)
	assert.Equal(t, Key("a", "b"), Key("a", "b"))
	assert.NotEqual(t, Key("ab", "c"), Key("a", "bc"))
	assert.NotEqual(t, Key("generate", "x"), Key("explain", "x"))
}
