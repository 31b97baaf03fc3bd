package infra

import (
	"context"
	"sync/atomic"
	"time"

	"document-gateway/registry/domain"

	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"
)

// WindowPool é um pool de permissões com devolução atrasada.
//
// O semáforo (FIFO entre quem espera) é a única fonte de verdade para as vagas;
// held só espelha quantas permissões estão fora, para Available() e para
// impedir devoluções além da capacidade.
type WindowPool struct {
	sem      *semaphore.Weighted
	capacity int
	window   time.Duration
	held     atomic.Int64

	// afterFunc permite trocar o agendamento em testes.
	afterFunc func(d time.Duration, f func()) *time.Timer
}

var _ domain.PermitPool = (*WindowPool)(nil)

// NewWindowPool cria um pool com `capacity` permissões; cada permissão volta
// `window` depois de ScheduleRelease. window == 0 devolve imediatamente.
func NewWindowPool(capacity int, window time.Duration) (*WindowPool, error) {
	if capacity <= 0 {
		return nil, errors.New("request limit must be > 0")
	}
	if window < 0 {
		return nil, errors.New("time unit must be >= 0")
	}
	return &WindowPool{
		sem:       semaphore.NewWeighted(int64(capacity)),
		capacity:  capacity,
		window:    window,
		afterFunc: time.AfterFunc,
	}, nil
}

func (p *WindowPool) Acquire(ctx context.Context) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	p.held.Add(1)
	return nil
}

func (p *WindowPool) TryAcquire() bool {
	if !p.sem.TryAcquire(1) {
		return false
	}
	p.held.Add(1)
	return true
}

// ScheduleRelease arma um timer próprio para esta aquisição. Não existe tick
// global: cada permissão volta exatamente Window() depois da sua chamada.
// Timers pendentes não são cancelados.
func (p *WindowPool) ScheduleRelease() {
	p.afterFunc(p.window, p.release)
}

func (p *WindowPool) release() {
	for {
		n := p.held.Load()
		if n <= 0 {
			// nada emprestado: devolver estouraria a capacidade
			return
		}
		if p.held.CompareAndSwap(n, n-1) {
			break
		}
	}
	p.sem.Release(1)
}

func (p *WindowPool) Capacity() int         { return p.capacity }
func (p *WindowPool) Window() time.Duration { return p.window }

func (p *WindowPool) Available() int {
	n := p.capacity - int(p.held.Load())
	if n < 0 {
		return 0
	}
	return n
}
