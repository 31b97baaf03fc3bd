package infra

import (
	"context"
	"sync"

	"document-gateway/registry/domain"
)

// ChanBacklog é um backlog sobre canal com buffer: cada vaga ocupada é um
// elemento no canal, então Len() é a profundidade atual da fila.
type ChanBacklog struct {
	slots chan struct{}
}

var _ domain.Backlog = (*ChanBacklog)(nil)

func NewChanBacklog(depth int) *ChanBacklog {
	if depth < 1 {
		depth = 1
	}
	return &ChanBacklog{slots: make(chan struct{}, depth)}
}

// BacklogDepthFor é quanto o pool drena em `windows` janelas.
func BacklogDepthFor(pool domain.PoolState, windows int) int {
	if windows < 1 {
		windows = 1
	}
	return pool.Capacity() * windows
}

func (b *ChanBacklog) TryEnter() (func(), bool) {
	select {
	case b.slots <- struct{}{}:
		return b.leaveOnce(), true
	default:
		return nil, false
	}
}

func (b *ChanBacklog) Enter(ctx context.Context) (func(), bool) {
	select {
	case b.slots <- struct{}{}:
		return b.leaveOnce(), true
	case <-ctx.Done():
		return nil, false
	}
}

func (b *ChanBacklog) leaveOnce() func() {
	var once sync.Once
	return func() { once.Do(func() { <-b.slots }) }
}

func (b *ChanBacklog) Len() int { return len(b.slots) }
func (b *ChanBacklog) Cap() int { return cap(b.slots) }
