package infra

import (
	"context"
	"sync"

	"document-gateway/registry/domain"
)

// Counters agrega desfechos de submissões.
type Counters struct {
	Dispatched int64
	Cancelled  int64
	// TransportFailed conta envios que falharam no transporte (já contados em Dispatched).
	TransportFailed int64
	// Stuck conta submissões admitidas que não chegaram ao transporte.
	Stuck int64
}

// MemoryStatsStore é uma implementação simples em memória.
// Útil para testes, para o CLI e para desenvolvimento.
type MemoryStatsStore struct {
	mu     sync.Mutex
	total  Counters
	recent []domain.StatsEvent
	keep   int
}

var (
	_ domain.StatsStore  = (*MemoryStatsStore)(nil)
	_ domain.StatsReader = (*MemoryStatsStore)(nil)
)

type MemoryStatsOption func(*MemoryStatsStore)

// WithRecentEvents mantém os últimos n eventos (0 desliga).
func WithRecentEvents(n int) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.keep = n }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.State {
	case domain.StateDispatched:
		s.total.Dispatched++
		if ev.Failed {
			s.total.TransportFailed++
		}
	case domain.StateCancelled:
		s.total.Cancelled++
	default:
		s.total.Stuck++
	}

	if s.keep > 0 {
		s.recent = append(s.recent, ev)
		if len(s.recent) > s.keep {
			s.recent = s.recent[len(s.recent)-s.keep:]
		}
	}
	return nil
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// Totals usa as mesmas chaves do RedisStatsStore.
func (s *MemoryStatsStore) Totals(context.Context) (map[string]int64, error) {
	c := s.Total()
	return map[string]int64{
		"dispatched":       c.Dispatched,
		"cancelled":        c.Cancelled,
		"admitted":         c.Stuck,
		"transport_failed": c.TransportFailed,
	}, nil
}

func (s *MemoryStatsStore) Recent() []domain.StatsEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.StatsEvent, len(s.recent))
	copy(out, s.recent)
	return out
}
