package infra

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fixedPool struct {
	capacity, available int
	window              time.Duration
}

func (p fixedPool) Capacity() int         { return p.capacity }
func (p fixedPool) Available() int        { return p.available }
func (p fixedPool) Window() time.Duration { return p.window }

func TestChanBacklog_LeaveFreesSlot(t *testing.T) {
	b := NewChanBacklog(1)

	leave, ok := b.Enter(context.Background())
	require.True(t, ok)
	require.Equal(t, 1, b.Len())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, ok = b.Enter(ctx)
	require.False(t, ok, "second enter must time out while the slot is held")

	_, ok = b.TryEnter()
	require.False(t, ok)

	leave()
	leave()
	require.Equal(t, 0, b.Len(), "leave is idempotent")

	_, ok = b.TryEnter()
	require.True(t, ok)
}

func TestBacklogDepthFor(t *testing.T) {
	pool := fixedPool{capacity: 5, window: time.Second}
	require.Equal(t, 10, BacklogDepthFor(pool, 2))
	require.Equal(t, 5, BacklogDepthFor(pool, 0))

	require.Equal(t, 1, NewChanBacklog(0).Cap())
}
