package application

import (
	"context"
	"time"

	"document-gateway/registry/domain"
)

// BacklogService decide se uma requisição do relay entra no gate, olhando a
// fila de entrada e o pool de permissões de saída. Não sabe nada sobre HTTP.
type BacklogService struct {
	Backlog domain.Backlog
	// Pool é opcional. Com ele, backlog cheio e pool esgotado rejeita na hora
	// e o RetryAfter vem do tempo que o pool leva para drenar a fila.
	Pool           domain.PoolState
	AcquireTimeout time.Duration
}

// Enter tenta uma vaga. Com AcquireTimeout <= 0 espera até o ctx encerrar.
func (s BacklogService) Enter(ctx context.Context) domain.Admission {
	if s.Backlog == nil {
		return domain.Admission{Admitted: true, Leave: func() {}}
	}
	if leave, ok := s.Backlog.TryEnter(); ok {
		return domain.Admission{Admitted: true, Leave: leave}
	}
	if s.Pool != nil && s.Pool.Available() == 0 {
		return domain.Admission{RetryAfter: s.retryAfter()}
	}

	if s.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.AcquireTimeout)
		defer cancel()
	}
	start := time.Now()
	leave, ok := s.Backlog.Enter(ctx)
	if !ok {
		return domain.Admission{Queued: time.Since(start), RetryAfter: s.retryAfter()}
	}
	return domain.Admission{Admitted: true, Leave: leave, Queued: time.Since(start)}
}

// MaxWait é o pior caso de espera por permissão de quem entra no fim do backlog.
func (s BacklogService) MaxWait() time.Duration {
	if s.Backlog == nil || s.Pool == nil {
		return 0
	}
	return domain.DrainTime(s.Pool.Capacity(), s.Pool.Window(), s.Backlog.Cap())
}

func (s BacklogService) retryAfter() time.Duration {
	d := time.Second
	if s.Pool != nil {
		if w := domain.QueueWait(s.Pool, s.Backlog.Len()); w > d {
			d = w
		}
	}
	return d
}
