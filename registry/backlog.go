package registry

import (
	"context"
	"net/http"
	"time"

	"document-gateway/registry/application"
	"document-gateway/registry/domain"
	"document-gateway/registry/infra"
)

// BacklogOptions configura a fila de entrada do relay.
type BacklogOptions struct {
	// Depth é quantas requisições podem estar dentro do gate ao mesmo tempo.
	// Depth <= 0 usa Pool.Capacity() * Windows; sem Pool, desliga a fila.
	Depth   int
	Windows int
	// Pool é o pool de saída (o próprio Client serve).
	Pool           domain.PoolState
	AcquireTimeout time.Duration
}

type queuedKey struct{}

func withQueued(ctx context.Context, d time.Duration) context.Context {
	return context.WithValue(ctx, queuedKey{}, d)
}

// queuedFrom devolve quanto a requisição esperou no backlog, 0 se não passou por ele.
func queuedFrom(ctx context.Context) time.Duration {
	d, _ := ctx.Value(queuedKey{}).(time.Duration)
	return d
}

// NewBacklog monta o serviço de fila a partir das opções. nil quando desligado.
func NewBacklog(opts BacklogOptions) *application.BacklogService {
	depth := opts.Depth
	if depth <= 0 {
		if opts.Pool == nil {
			return nil
		}
		depth = infra.BacklogDepthFor(opts.Pool, opts.Windows)
	}
	return &application.BacklogService{
		Backlog:        infra.NewChanBacklog(depth),
		Pool:           opts.Pool,
		AcquireTimeout: opts.AcquireTimeout,
	}
}

// BacklogMiddleware limita quantas requisições esperam permissão no Gate.
// Fila cheia com o pool esgotado é rejeitada na hora, com Retry-After igual ao
// tempo que o pool leva para drenar quem já está na frente.
func BacklogMiddleware(svc *application.BacklogService, rejectStatus int) func(next http.Handler) http.Handler {
	if svc == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if rejectStatus == 0 {
		rejectStatus = http.StatusServiceUnavailable
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			adm := svc.Enter(r.Context())
			if !adm.Admitted {
				w.Header().Set("Retry-After", retryAfterSeconds(adm.RetryAfter))
				http.Error(w, "relay backlog is full", rejectStatus)
				return
			}
			defer adm.Leave()

			next.ServeHTTP(w, r.WithContext(withQueued(r.Context(), adm.Queued)))
		})
	}
}
