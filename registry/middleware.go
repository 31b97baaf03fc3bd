package registry

import (
	"net/http"
	"time"

	"document-gateway/registry/application"
	"document-gateway/registry/domain"
)

// RateLimitOptions configura o token bucket por cliente na entrada do relay.
type RateLimitOptions struct {
	Store               domain.LimiterStore
	KeyFn               KeyFunc
	KeyHeader           string
	TrustXForwardedFor  bool
	RejectStatus        int
	RetryAfter          time.Duration
	AddRateLimitHeaders bool
}

type rateInfo interface {
	RPS() float64
	Burst() int
}

// RateLimitMiddleware rejeita clientes que estouram o próprio bucket antes
// que ocupem o backlog ou consumam permissões do pool de saída. Retry-After
// é o maior entre opts.RetryAfter e o tempo até o bucket ter um token.
func RateLimitMiddleware(opts RateLimitOptions) func(next http.Handler) http.Handler {
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusTooManyRequests
	}
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.KeyHeader, opts.TrustXForwardedFor)
	}
	info, hasInfo := opts.Store.(rateInfo)

	svc := application.InboundService{Store: opts.Store, RetryAfter: opts.RetryAfter}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFn(r)
			if opts.AddRateLimitHeaders {
				h := w.Header()
				h.Set("X-RateLimit-Key", key)
				if hasInfo {
					h.Set("X-RateLimit-RPS", formatRate(info.RPS()))
					h.Set("X-RateLimit-Burst", formatInt(info.Burst()))
				}
			}

			if dec := svc.Decide(domain.Key(key)); !dec.Allowed {
				w.Header().Set("Retry-After", retryAfterSeconds(dec.RetryAfter))
				http.Error(w, http.StatusText(opts.RejectStatus), opts.RejectStatus)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
