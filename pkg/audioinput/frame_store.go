package audioinput

import (
	"context"

	"github.com/xaionaro-go/xsync"
)

// FrameStore is the hand-off point between the device callback (producer)
// and the capture loop (consumer). The producer appends frames as the driver
// delivers them; the consumer drains everything accumulated so far in one
// call. Clear resets the store atomically, so frames pushed before the reset
// are gone while frames pushed after it are kept.
type FrameStore struct {
	Locker xsync.Mutex

	frames   [][]byte
	capacity int
	dropped  uint64
}

// NewFrameStore returns a store that holds at most capacity frames;
// capacity <= 0 means unbounded.
func NewFrameStore(capacity int) *FrameStore {
	return &FrameStore{
		capacity: capacity,
	}
}

func (s *FrameStore) Push(ctx context.Context, frame []byte) {
	s.Locker.Do(xsync.WithNoLogging(ctx, true), func() {
		if s.capacity > 0 && len(s.frames) >= s.capacity {
			s.dropped++
			return
		}
		s.frames = append(s.frames, frame)
	})
}

// Drain removes and returns every frame accumulated so far, oldest first.
func (s *FrameStore) Drain(ctx context.Context) [][]byte {
	return xsync.DoR1(xsync.WithNoLogging(ctx, true), &s.Locker, func() [][]byte {
		frames := s.frames
		s.frames = nil
		return frames
	})
}

func (s *FrameStore) Clear(ctx context.Context) {
	s.Locker.Do(xsync.WithNoLogging(ctx, true), func() {
		s.frames = nil
		s.dropped = 0
	})
}

func (s *FrameStore) Len(ctx context.Context) int {
	return xsync.DoR1(xsync.WithNoLogging(ctx, true), &s.Locker, func() int {
		return len(s.frames)
	})
}

// Dropped reports how many frames were discarded due to the capacity bound
// since the last Clear.
func (s *FrameStore) Dropped(ctx context.Context) uint64 {
	return xsync.DoR1(xsync.WithNoLogging(ctx, true), &s.Locker, func() uint64 {
		return s.dropped
	})
}
