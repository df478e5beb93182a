package audioinput

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameStoreFIFO(t *testing.T) {
	ctx := context.Background()
	s := NewFrameStore(0)

	s.Push(ctx, []byte{1})
	s.Push(ctx, []byte{2})
	s.Push(ctx, []byte{3})

	frames := s.Drain(ctx)
	require.Len(t, frames, 3)
	assert.Equal(t, []byte{1}, frames[0])
	assert.Equal(t, []byte{2}, frames[1])
	assert.Equal(t, []byte{3}, frames[2])

	assert.Empty(t, s.Drain(ctx))
}

func TestFrameStoreCapacity(t *testing.T) {
	ctx := context.Background()
	s := NewFrameStore(2)

	s.Push(ctx, []byte{1})
	s.Push(ctx, []byte{2})
	s.Push(ctx, []byte{3})

	assert.Equal(t, 2, s.Len(ctx))
	assert.Equal(t, uint64(1), s.Dropped(ctx))
}

func TestFrameStoreClear(t *testing.T) {
	ctx := context.Background()
	s := NewFrameStore(0)

	s.Push(ctx, []byte{1})
	s.Clear(ctx)
	s.Push(ctx, []byte{2})

	frames := s.Drain(ctx)
	require.Len(t, frames, 1)
	assert.Equal(t, []byte{2}, frames[0])
}

func TestFrameStoreConcurrentPushAndClear(t *testing.T) {
	ctx := context.Background()
	s := NewFrameStore(0)

	var wg sync.WaitGroup
	for worker := 0; worker < 4; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				s.Push(ctx, []byte{byte(i)})
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			s.Clear(ctx)
			s.Drain(ctx)
		}
	}()
	wg.Wait()

	// no constraint on how many frames survived the clears, only that the
	// store is still coherent
	frames := s.Drain(ctx)
	assert.LessOrEqual(t, len(frames), 4000)
	assert.Empty(t, s.Drain(ctx))
}
