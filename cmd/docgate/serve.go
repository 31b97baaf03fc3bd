package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"document-gateway/internal/config"
	"document-gateway/internal/logging"
	"document-gateway/registry"
	"document-gateway/registry/domain"
	"document-gateway/registry/infra"

	"github.com/spf13/cobra"
)

func newServeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP relay (POST /v1/documents)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	r := &cfg.Relay
	f.StringVar(&r.ListenAddr, "listen", r.ListenAddr, "relay listen address")
	f.StringVar(&r.SignatureHeader, "relay-signature-header", r.SignatureHeader, "header the relay reads the caller signature from")
	f.BoolVar(&r.RateEnabled, "rate", r.RateEnabled, "per-client token bucket on incoming requests")
	f.Float64Var(&r.RateRPS, "rate-rps", r.RateRPS, "per-client requests per second (0: --limit per --time-unit)")
	f.IntVar(&r.RateBurst, "rate-burst", r.RateBurst, "per-client burst (0: --limit)")
	f.StringVar(&r.RateKeyHeader, "rate-key-header", r.RateKeyHeader, "header identifying the client (default: client IP)")
	f.BoolVar(&r.TrustXFF, "trust-xff", r.TrustXFF, "use the first X-Forwarded-For address as client key")
	f.IntVar(&r.BacklogDepth, "backlog-depth", r.BacklogDepth, "requests allowed inside the gate at once (0: --limit * --backlog-windows)")
	f.IntVar(&r.BacklogWindows, "backlog-windows", r.BacklogWindows, "windows of permits the backlog may queue when --backlog-depth is 0")
	f.DurationVar(&r.BacklogTimeout, "backlog-timeout", r.BacklogTimeout, "wait for a backlog slot at most this long (0: derived from the pool)")
	return cmd
}

// relayTimeouts amarra os prazos do relay ao pool de saída.
//
// permitWait é o pior caso de espera por permissão no fim do backlog (ou o
// AcquireTimeout, se menor). Uma submissão leva no máximo submit; a vaga do
// backlog espera no máximo slot; o WriteTimeout cobre os dois com folga, então
// a resposta sempre sai antes do servidor cortar a conexão.
type relayTimeouts struct {
	slot, submit, write time.Duration
}

func newRelayTimeouts(cfg *config.Config, maxPermitWait time.Duration) relayTimeouts {
	permitWait := maxPermitWait
	if cfg.AcquireTimeout > 0 && cfg.AcquireTimeout < permitWait {
		permitWait = cfg.AcquireTimeout
	}
	t := relayTimeouts{submit: permitWait + cfg.HTTPTimeout}

	t.slot = cfg.Relay.BacklogTimeout
	if t.slot <= 0 {
		t.slot = t.submit
	}
	t.write = t.slot + t.submit + 10*time.Second
	return t
}

func newInboundStore(r config.RelayConfig, pool domain.PoolState) *infra.Store {
	if r.RateRPS <= 0 && r.RateBurst <= 0 {
		return infra.NewPoolStore(pool)
	}
	rps, burst := r.RateRPS, r.RateBurst
	if rps <= 0 {
		rps = infra.PoolRate(pool)
	}
	if burst <= 0 {
		burst = pool.Capacity()
	}
	return infra.NewStore(rps, burst)
}

func runServe(parent context.Context, cfg *config.Config) error {
	logger := logging.Default()

	client, stats, cleanup, err := newClient(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	r := cfg.Relay
	backlog := registry.NewBacklog(registry.BacklogOptions{
		Depth:   r.BacklogDepth,
		Windows: r.BacklogWindows,
		Pool:    client,
	})
	timeouts := newRelayTimeouts(cfg, backlog.MaxWait())
	backlog.AcquireTimeout = timeouts.slot

	h := registry.Handler(registry.HandlerOptions{
		Submitter:       client,
		Limits:          client,
		Stats:           stats,
		SignatureHeader: r.SignatureHeader,
		SubmitTimeout:   timeouts.submit,
	})
	h = registry.BacklogMiddleware(backlog, http.StatusServiceUnavailable)(h)

	logger.Info("relay listening", "addr", r.ListenAddr, "endpoint", cfg.Endpoint)
	logger.Info("outbound limit", "limit", cfg.RequestLimit, "time_unit", cfg.TimeUnit, "acquire_timeout", cfg.AcquireTimeout)
	logger.Info("backlog", "depth", backlog.Backlog.Cap(), "slot_timeout", timeouts.slot,
		"submit_timeout", timeouts.submit, "write_timeout", timeouts.write)

	if r.RateEnabled {
		store := newInboundStore(r, client)
		store.StartJanitor(ctx)
		h = registry.RateLimitMiddleware(registry.RateLimitOptions{
			Store:               store,
			KeyHeader:           r.RateKeyHeader,
			TrustXForwardedFor:  r.TrustXFF,
			RejectStatus:        http.StatusTooManyRequests,
			RetryAfter:          r.RetryAfter,
			AddRateLimitHeaders: r.AddHeaders,
		})(h)
		logger.Info("inbound rate", "rps", store.RPS(), "burst", store.Burst(),
			"key_header", r.RateKeyHeader, "trust_xff", r.TrustXFF)
	}

	srv := &http.Server{
		Addr:              r.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      timeouts.write,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
