package main

import (
	"context"
	"time"

	"document-gateway/internal/config"
	"document-gateway/internal/logging"
	"document-gateway/registry"
	"document-gateway/registry/domain"
	"document-gateway/registry/infra"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cfg := config.FromEnv()

	root := &cobra.Command{
		Use:   "docgate",
		Short: "Rate-limited client for the document registration service",
		Long: `docgate submits documents to the registration service while keeping at most
--limit requests inside any --time-unit window. Each permit is returned one window
after it was taken, not at a fixed clock boundary.

Every flag also has an environment variable (REGISTRY_ENDPOINT, REQUEST_LIMIT,
TIME_UNIT, ...); flags win.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return errors.Wrap(err, "config error")
			}
			logging.SetLevel(cfg.LogLevel)
			return nil
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&cfg.Endpoint, "endpoint", cfg.Endpoint, "registration service URL")
	f.IntVar(&cfg.RequestLimit, "limit", cfg.RequestLimit, "maximum requests per time unit")
	f.DurationVar(&cfg.TimeUnit, "time-unit", cfg.TimeUnit, "rate window; each permit returns this long after it was taken")
	f.DurationVar(&cfg.AcquireTimeout, "acquire-timeout", cfg.AcquireTimeout, "give up waiting for a permit after this long (0 waits forever)")
	f.DurationVar(&cfg.HTTPTimeout, "http-timeout", cfg.HTTPTimeout, "timeout of one POST to the registry")
	f.StringVar(&cfg.SignatureHeader, "signature-header", cfg.SignatureHeader, "forward the signature to the registry in this header (empty: not sent)")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "DEBUG, INFO, WARN or ERROR")

	root.AddCommand(newServeCmd(&cfg), newSubmitCmd(&cfg))
	return root
}

// statsBackend grava pelo gate e é lido por GET /v1/stats.
type statsBackend interface {
	domain.StatsStore
	domain.StatsReader
}

// newClient monta o registry.Client compartilhado pelos subcomandos.
// O cleanup fecha o Redis quando as estatísticas estão ligadas.
func newClient(cfg *config.Config, logger *log.Logger) (*registry.Client, statsBackend, func(), error) {
	stats, cleanup, err := newStatsStore(cfg.Stats, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	client, err := registry.New(cfg.TimeUnit, cfg.RequestLimit,
		registry.WithEndpoint(cfg.Endpoint),
		registry.WithAcquireTimeout(cfg.AcquireTimeout),
		registry.WithHTTPTimeout(cfg.HTTPTimeout),
		registry.WithSignatureHeader(cfg.SignatureHeader),
		registry.WithStats(stats),
		registry.WithLogger(logger),
	)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	return client, stats, cleanup, nil
}

func newStatsStore(cfg config.StatsConfig, logger *log.Logger) (statsBackend, func(), error) {
	if !cfg.Enabled {
		return infra.NewMemoryStatsStore(), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, errors.Wrap(err, "redis stats ping")
	}
	logger.Info("submission stats enabled", "redis", cfg.RedisAddr, "prefix", cfg.Prefix, "bucket", cfg.Bucket)

	store := infra.NewRedisStatsStore(rdb,
		infra.WithStatsPrefix(cfg.Prefix),
		infra.WithStatsTTL(cfg.TTL),
		infra.WithStatsBucket(cfg.Bucket),
	)
	return store, func() { _ = rdb.Close() }, nil
}
