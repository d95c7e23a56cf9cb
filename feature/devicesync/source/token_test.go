package source

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeProvider struct {
	mu    sync.Mutex
	calls int
	token string
	err   error
}

func (f *fakeProvider) GetAccessToken(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.token, f.err
}

func (f *fakeProvider) InvalidateToken() {}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestCachedTokenProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("Caches token across calls", func(t *testing.T) {
		inner := &fakeProvider{token: "tok-1"}
		p := NewCachedTokenProvider(inner, time.Hour)

		for i := 0; i < 5; i++ {
			token, err := p.GetAccessToken(ctx)
			assert.NoError(t, err)
			assert.Equal(t, "tok-1", token)
		}

		assert.Equal(t, 1, inner.callCount())
	})

	t.Run("Invalidate forces refresh", func(t *testing.T) {
		inner := &fakeProvider{token: "tok-1"}
		p := NewCachedTokenProvider(inner, time.Hour)

		_, err := p.GetAccessToken(ctx)
		assert.NoError(t, err)

		p.InvalidateToken()

		_, err = p.GetAccessToken(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 2, inner.callCount())
	})

	t.Run("Propagates provider error", func(t *testing.T) {
		inner := &fakeProvider{err: errors.New("denied")}
		p := NewCachedTokenProvider(inner, time.Hour)

		_, err := p.GetAccessToken(ctx)
		assert.Error(t, err)
	})

	t.Run("Concurrent callers fetch once", func(t *testing.T) {
		inner := &fakeProvider{token: "tok-1"}
		p := NewCachedTokenProvider(inner, time.Hour)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				token, err := p.GetAccessToken(ctx)
				assert.NoError(t, err)
				assert.Equal(t, "tok-1", token)
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, inner.callCount())
	})
}
