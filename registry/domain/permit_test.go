package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type poolState struct {
	capacity, available int
	window              time.Duration
}

func (p poolState) Capacity() int         { return p.capacity }
func (p poolState) Available() int        { return p.available }
func (p poolState) Window() time.Duration { return p.window }

func TestDrainTime(t *testing.T) {
	require.Zero(t, DrainTime(5, time.Second, 0))
	require.Zero(t, DrainTime(0, time.Second, 3))
	require.Equal(t, time.Second, DrainTime(5, time.Second, 5))
	require.Equal(t, 2*time.Second, DrainTime(5, time.Second, 6))
	require.Equal(t, 100*time.Minute, DrainTime(1, time.Minute, 100))
	require.Zero(t, DrainTime(3, 0, 10), "zero window drains immediately")
}

func TestQueueWait(t *testing.T) {
	free := poolState{capacity: 2, available: 2, window: time.Second}
	require.Zero(t, QueueWait(free, 0))
	require.Zero(t, QueueWait(free, 1))
	require.Equal(t, time.Second, QueueWait(free, 2))

	exhausted := poolState{capacity: 2, window: time.Second}
	require.Equal(t, time.Second, QueueWait(exhausted, 0))
	require.Equal(t, 3*time.Second, QueueWait(exhausted, 5))
}

func TestStatsEvent_Fields(t *testing.T) {
	require.Equal(t, []string{"dispatched"}, StatsEvent{State: StateDispatched}.Fields())
	require.Equal(t, []string{"dispatched", "transport_failed"}, StatsEvent{State: StateDispatched, Failed: true}.Fields())
	require.Equal(t, []string{"cancelled"}, StatsEvent{State: StateCancelled}.Fields())
}
