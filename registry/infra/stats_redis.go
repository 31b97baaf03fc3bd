package infra

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"document-gateway/registry/domain"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisStatsStore acumula desfechos de submissões em hashes do Redis:
//
//	<prefix>:total                 state -> contador
//	<prefix>:minute:YYYYMMDDHHMM   state -> contador (expira após ttl)
//
// Falhas de transporte entram no campo "transport_failed".
type RedisStatsStore struct {
	rdb redis.Cmdable

	prefix string
	// ttl aplica apenas aos buckets por minuto; total é cumulativo e não expira.
	ttl time.Duration

	bucket string // "minute" (padrão) ou "none"
}

var (
	_ domain.StatsStore  = (*RedisStatsStore)(nil)
	_ domain.StatsReader = (*RedisStatsStore)(nil)
)

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

func WithStatsBucket(bucket string) RedisStatsOption {
	return func(s *RedisStatsStore) { s.bucket = strings.ToLower(strings.TrimSpace(bucket)) }
}

func NewRedisStatsStore(rdb redis.Cmdable, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:    rdb,
		prefix: "registry:stats",
		ttl:    24 * time.Hour,
		bucket: "minute",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	fields := ev.Fields()

	pipe := s.rdb.Pipeline()
	totalKey := s.prefix + ":total"
	for _, f := range fields {
		pipe.HIncrBy(ctx, totalKey, f, 1)
	}

	if s.bucket == "minute" {
		bucketKey := fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
		for _, f := range fields {
			pipe.HIncrBy(ctx, bucketKey, f, 1)
		}
		if s.ttl > 0 {
			pipe.Expire(ctx, bucketKey, s.ttl)
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, "record submission stats")
	}
	return nil
}

// Totals lê o hash cumulativo. Estados que nunca ocorreram não aparecem.
func (s *RedisStatsStore) Totals(ctx context.Context) (map[string]int64, error) {
	raw, err := s.rdb.HGetAll(ctx, s.prefix+":total").Result()
	if err != nil {
		return nil, errors.Wrap(err, "read submission stats")
	}
	out := make(map[string]int64, len(raw))
	for k, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "parse counter %s", k)
		}
		out[k] = n
	}
	return out, nil
}
