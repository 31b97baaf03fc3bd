package application

import (
	"testing"
	"time"

	"document-gateway/registry/domain"

	"github.com/stretchr/testify/require"
)

type fakeLimiter struct {
	allow   bool
	retryIn time.Duration
}

func (f fakeLimiter) Allow() bool            { return f.allow }
func (f fakeLimiter) RetryIn() time.Duration { return f.retryIn }

type fakeStore struct {
	lim domain.Limiter
}

func (s fakeStore) Get(domain.Key) domain.Limiter { return s.lim }

func TestInboundService_Decide(t *testing.T) {
	tests := []struct {
		name string
		svc  InboundService
		want domain.Decision
	}{
		{
			name: "no store allows",
			svc:  InboundService{},
			want: domain.Decision{Allowed: true},
		},
		{
			name: "nil limiter allows",
			svc:  InboundService{Store: fakeStore{}},
			want: domain.Decision{Allowed: true},
		},
		{
			name: "limiter allows",
			svc:  InboundService{Store: fakeStore{lim: fakeLimiter{allow: true}}, RetryAfter: 5 * time.Second},
			want: domain.Decision{Allowed: true},
		},
		{
			name: "blocked uses default retry-after",
			svc:  InboundService{Store: fakeStore{lim: fakeLimiter{allow: false}}},
			want: domain.Decision{Allowed: false, RetryAfter: time.Second},
		},
		{
			name: "blocked uses configured retry-after",
			svc:  InboundService{Store: fakeStore{lim: fakeLimiter{allow: false}}, RetryAfter: 2500 * time.Millisecond},
			want: domain.Decision{Allowed: false, RetryAfter: 2500 * time.Millisecond},
		},
		{
			name: "bucket estimate above the floor wins",
			svc:  InboundService{Store: fakeStore{lim: fakeLimiter{retryIn: 40 * time.Second}}, RetryAfter: 2 * time.Second},
			want: domain.Decision{Allowed: false, RetryAfter: 40 * time.Second},
		},
		{
			name: "bucket estimate below the floor is ignored",
			svc:  InboundService{Store: fakeStore{lim: fakeLimiter{retryIn: 200 * time.Millisecond}}},
			want: domain.Decision{Allowed: false, RetryAfter: time.Second},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.svc.Decide("client-a"))
		})
	}
}
