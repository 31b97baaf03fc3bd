package application

import (
	"time"

	"document-gateway/registry/domain"
)

// InboundService decide se um cliente do relay pode submeter agora.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão.
type InboundService struct {
	Store domain.LimiterStore
	// RetryAfter é o piso do Retry-After; o bucket pode pedir mais.
	RetryAfter time.Duration
}

func (s InboundService) Decide(key domain.Key) domain.Decision {
	if s.Store == nil {
		return domain.Decision{Allowed: true}
	}
	lim := s.Store.Get(key)
	if lim == nil || lim.Allow() {
		return domain.Decision{Allowed: true}
	}

	retryAfter := s.RetryAfter
	if retryAfter <= 0 {
		retryAfter = time.Second
	}
	if in := lim.RetryIn(); in > retryAfter {
		retryAfter = in
	}
	return domain.Decision{Allowed: false, RetryAfter: retryAfter}
}
