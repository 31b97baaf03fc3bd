package domain

import (
	"context"
	"time"
)

// PoolState é a visão somente-leitura do pool de permissões. O relay usa só isso
// para dimensionar a fila de entrada e estimar esperas.
type PoolState interface {
	Capacity() int
	Available() int
	Window() time.Duration
}

// PermitPool é o pool de permissões com janela deslizante.
//
// Cada Acquire bem-sucedido deve ser seguido de exatamente um ScheduleRelease,
// que devolve a permissão Window() depois da chamada (e não numa borda fixa de relógio).
// Assim, no máximo Capacity() aquisições começam dentro de qualquer janela.
type PermitPool interface {
	PoolState

	// Acquire bloqueia até existir uma permissão ou até o ctx encerrar.
	// Em caso de erro nenhuma permissão foi obtida.
	Acquire(ctx context.Context) error
	// TryAcquire tenta obter uma permissão sem bloquear.
	TryAcquire() bool
	ScheduleRelease()
}

// DrainTime é o pior caso para um pool de `capacity` permissões por `window`
// admitir n submissões que chegam com ele esgotado.
func DrainTime(capacity int, window time.Duration, n int) time.Duration {
	if capacity <= 0 || n <= 0 {
		return 0
	}
	return time.Duration((n+capacity-1)/capacity) * window
}

// QueueWait estima quanto espera por permissão quem chega com `ahead`
// submissões na frente. As primeiras Available() passam na hora.
func QueueWait(s PoolState, ahead int) time.Duration {
	return DrainTime(s.Capacity(), s.Window(), ahead+1-s.Available())
}
