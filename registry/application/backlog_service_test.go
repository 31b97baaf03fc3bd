package application

import (
	"context"
	"testing"
	"time"

	"document-gateway/registry/infra"

	"github.com/stretchr/testify/require"
)

type poolView struct {
	capacity, available int
	window              time.Duration
}

func (p poolView) Capacity() int         { return p.capacity }
func (p poolView) Available() int        { return p.available }
func (p poolView) Window() time.Duration { return p.window }

func TestBacklogService_AdmitsWithoutBacklog(t *testing.T) {
	adm := BacklogService{}.Enter(context.Background())
	require.True(t, adm.Admitted)
	adm.Leave()
}

func TestBacklogService_FreeSlotIsImmediate(t *testing.T) {
	svc := BacklogService{Backlog: infra.NewChanBacklog(2)}

	adm := svc.Enter(context.Background())
	require.True(t, adm.Admitted)
	require.Zero(t, adm.Queued)
	require.Equal(t, 1, svc.Backlog.Len())

	adm.Leave()
	require.Zero(t, svc.Backlog.Len())
}

func TestBacklogService_FullBacklogAndExhaustedPoolRejectsAtOnce(t *testing.T) {
	svc := BacklogService{
		Backlog:        infra.NewChanBacklog(4),
		Pool:           poolView{capacity: 2, window: time.Minute},
		AcquireTimeout: time.Hour,
	}
	for i := 0; i < 4; i++ {
		require.True(t, svc.Enter(context.Background()).Admitted)
	}

	start := time.Now()
	adm := svc.Enter(context.Background())
	require.False(t, adm.Admitted)
	require.Less(t, time.Since(start), time.Second, "must not wait for a slot")
	// 4 na frente + esta, 2 por janela
	require.Equal(t, 3*time.Minute, adm.RetryAfter)
}

func TestBacklogService_WaitsForSlotWhilePermitsAreFree(t *testing.T) {
	svc := BacklogService{
		Backlog:        infra.NewChanBacklog(1),
		Pool:           poolView{capacity: 2, available: 1, window: time.Second},
		AcquireTimeout: time.Second,
	}
	first := svc.Enter(context.Background())
	require.True(t, first.Admitted)

	go func() {
		time.Sleep(30 * time.Millisecond)
		first.Leave()
	}()

	adm := svc.Enter(context.Background())
	require.True(t, adm.Admitted)
	require.GreaterOrEqual(t, adm.Queued, 20*time.Millisecond)
	adm.Leave()
}

func TestBacklogService_TimesOut(t *testing.T) {
	svc := BacklogService{Backlog: infra.NewChanBacklog(1), AcquireTimeout: 10 * time.Millisecond}
	require.True(t, svc.Enter(context.Background()).Admitted)

	adm := svc.Enter(context.Background())
	require.False(t, adm.Admitted)
	require.Equal(t, time.Second, adm.RetryAfter, "without a pool the retry hint is the floor")
}

func TestBacklogService_MaxWait(t *testing.T) {
	svc := BacklogService{
		Backlog: infra.NewChanBacklog(100),
		Pool:    poolView{capacity: 1, window: time.Minute},
	}
	require.Equal(t, 100*time.Minute, svc.MaxWait())
	require.Zero(t, BacklogService{}.MaxWait())
}
