package infra

import (
	"context"
	"math"
	"sync"
	"time"

	"document-gateway/registry/domain"

	"golang.org/x/time/rate"
)

// Store guarda um token bucket (x/time/rate) por cliente do relay HTTP.
//
// O WindowPool limita o que sai para o serviço de registro; o Store impede que
// um único cliente monopolize essas permissões. Com NewPoolStore cada cliente
// anda no ritmo do próprio pool: Capacity() submissões por Window().
type Store struct {
	mu      sync.Mutex
	buckets map[domain.Key]*bucket
	limit   rate.Limit
	burst   int

	idleTTL      time.Duration
	cleanupEvery time.Duration
}

type StoreOption func(*Store)

func WithIdleTTL(d time.Duration) StoreOption {
	return func(s *Store) { s.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) StoreOption {
	return func(s *Store) { s.cleanupEvery = d }
}

func NewStore(rps float64, burst int, opts ...StoreOption) *Store {
	s := &Store{
		buckets:      make(map[domain.Key]*bucket),
		limit:        rate.Limit(rps),
		burst:        burst,
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewPoolStore cria buckets com a taxa de PoolRate e burst de Capacity().
func NewPoolStore(pool domain.PoolState, opts ...StoreOption) *Store {
	return NewStore(PoolRate(pool), pool.Capacity(), opts...)
}

// PoolRate é a taxa sustentada do pool em submissões por segundo.
// Janela 0 devolve na hora, então a taxa é infinita.
func PoolRate(pool domain.PoolState) float64 {
	w := pool.Window()
	if w <= 0 {
		return float64(rate.Inf)
	}
	return float64(pool.Capacity()) / w.Seconds()
}

func (s *Store) RPS() float64 { return float64(s.limit) }
func (s *Store) Burst() int   { return s.burst }

// Get implementa domain.LimiterStore.
func (s *Store) Get(key domain.Key) domain.Limiter {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(s.limit, s.burst)}
		s.buckets[key] = b
	}
	b.lastSeen = now
	return b
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

// Cleanup remove clientes sem requisição há mais de idleTTL e diz quantos saíram.
func (s *Store) Cleanup() int {
	cutoff := time.Now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, b := range s.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(s.buckets, k)
			removed++
		}
	}
	return removed
}

// StartJanitor roda Cleanup periodicamente até o ctx encerrar.
func (s *Store) StartJanitor(ctx context.Context) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}

// bucket é acessado por Get sob o mutex do Store; lim é seguro por conta própria.
type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func (b *bucket) Allow() bool { return b.lim.Allow() }

// RetryIn é o tempo até o bucket acumular um token inteiro.
func (b *bucket) RetryIn() time.Duration {
	limit := b.lim.Limit()
	if limit == rate.Inf || limit <= 0 {
		return 0
	}
	missing := 1 - b.lim.Tokens()
	if missing <= 0 {
		return 0
	}
	return time.Duration(math.Ceil(missing / float64(limit) * float64(time.Second)))
}
