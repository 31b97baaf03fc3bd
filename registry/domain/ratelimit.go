package domain

// Contratos de rate limit de entrada, usados pelo relay HTTP para proteger o gate
// contra clientes abusivos antes mesmo de consumir permissões.

import "time"

type Key string

// Limiter é o bucket de um cliente.
type Limiter interface {
	Allow() bool
	// RetryIn estima quando o próximo Allow passa. 0 quando não sabe.
	RetryIn() time.Duration
}

// LimiterStore obtém um limiter por chave (ex: IP, API key).
type LimiterStore interface {
	Get(Key) Limiter
}

type Decision struct {
	Allowed bool
	// RetryAfter é o valor a ser retornado em Retry-After quando bloquear.
	RetryAfter time.Duration
}
