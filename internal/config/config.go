// Package config carrega a configuração do docgate a partir de variáveis de
// ambiente e valida com go-playground/validator.
//
// Flags do cobra sobrescrevem os valores lidos aqui (ver cmd/docgate).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultEndpoint repete infra.DefaultEndpoint para não acoplar config ao registry.
const DefaultEndpoint = "https://ismp.crpt.ru/api/v3/lk/documents/create"

type Config struct {
	Endpoint        string        `validate:"required,url"`
	RequestLimit    int           `validate:"gt=0"`
	TimeUnit        time.Duration `validate:"gte=0"`
	AcquireTimeout  time.Duration `validate:"gte=0"`
	HTTPTimeout     time.Duration `validate:"gt=0"`
	SignatureHeader string
	LogLevel        string `validate:"oneof=DEBUG INFO WARN ERROR"`

	Relay RelayConfig
	Stats StatsConfig
}

// RelayConfig é usada só por `docgate serve`.
type RelayConfig struct {
	ListenAddr string `validate:"required,hostname_port"`
	// header de onde o relay lê a assinatura do chamador
	SignatureHeader string `validate:"required"`

	RateEnabled bool
	// RateRPS/RateBurst 0 seguem o pool de saída: RequestLimit por TimeUnit.
	RateRPS       float64 `validate:"gte=0"`
	RateBurst     int     `validate:"gte=0"`
	RateKeyHeader string
	TrustXFF      bool
	RetryAfter    time.Duration `validate:"gte=0"`
	AddHeaders    bool

	// BacklogDepth 0 usa RequestLimit * BacklogWindows.
	BacklogDepth   int           `validate:"gte=0"`
	BacklogWindows int           `validate:"gte=1"`
	BacklogTimeout time.Duration `validate:"gte=0"`
}

type StatsConfig struct {
	Enabled       bool
	RedisAddr     string `validate:"required_if=Enabled true"`
	RedisPassword string
	RedisDB       int `validate:"gte=0"`
	Prefix        string
	TTL           time.Duration `validate:"gte=0"`
	Bucket        string        `validate:"oneof=minute none"`
}

var validate = validator.New()

// Default retorna a configuração usada quando nenhuma variável está definida.
func Default() Config {
	return Config{
		Endpoint:     DefaultEndpoint,
		RequestLimit: 10,
		TimeUnit:     time.Second,
		HTTPTimeout:  30 * time.Second,
		LogLevel:     "INFO",
		Relay: RelayConfig{
			ListenAddr:      ":8080",
			SignatureHeader: "X-Signature",
			RateEnabled:     true,
			RetryAfter:      time.Second,
			BacklogWindows:  2,
		},
		Stats: StatsConfig{
			Prefix: "registry:stats",
			TTL:    24 * time.Hour,
			Bucket: "minute",
		},
	}
}

// FromEnv parte de Default() e aplica as variáveis de ambiente.
// Valores que não fazem parse mantêm o padrão.
func FromEnv() Config {
	cfg := Default()
	cfg.Endpoint = getenvDefault("REGISTRY_ENDPOINT", cfg.Endpoint)
	cfg.RequestLimit = getenvIntDefault("REQUEST_LIMIT", cfg.RequestLimit)
	cfg.TimeUnit = getenvDurationDefault("TIME_UNIT", cfg.TimeUnit)
	cfg.AcquireTimeout = getenvDurationDefault("ACQUIRE_TIMEOUT", cfg.AcquireTimeout)
	cfg.HTTPTimeout = getenvDurationDefault("HTTP_TIMEOUT", cfg.HTTPTimeout)
	cfg.SignatureHeader = getenvDefault("SIGNATURE_HEADER", cfg.SignatureHeader)
	cfg.LogLevel = strings.ToUpper(getenvDefault("LOG_LEVEL", cfg.LogLevel))

	r := &cfg.Relay
	r.ListenAddr = getenvDefault("LISTEN_ADDR", r.ListenAddr)
	r.SignatureHeader = getenvDefault("RELAY_SIGNATURE_HEADER", r.SignatureHeader)
	r.RateEnabled = getenvBoolDefault("RATE_ENABLED", r.RateEnabled)
	r.RateRPS = getenvFloatDefault("RATE_RPS", r.RateRPS)
	// com RPS < 1 um burst derivado do pool deixa passar uma rajada que
	// parece que o limiter não funciona
	if burst, ok := getenvInt("RATE_BURST"); ok {
		r.RateBurst = burst
	} else if getenvIsSet("RATE_RPS") && r.RateRPS > 0 && r.RateRPS < 1 {
		r.RateBurst = 1
	}
	r.RateKeyHeader = getenvDefault("RATE_KEY_HEADER", r.RateKeyHeader)
	r.TrustXFF = getenvBoolDefault("TRUST_XFF", r.TrustXFF)
	r.RetryAfter = getenvDurationDefault("RETRY_AFTER", r.RetryAfter)
	r.AddHeaders = getenvBoolDefault("ADD_RATELIMIT_HEADERS", r.AddHeaders)
	r.BacklogDepth = getenvIntDefault("BACKLOG_DEPTH", r.BacklogDepth)
	r.BacklogWindows = getenvIntDefault("BACKLOG_WINDOWS", r.BacklogWindows)
	r.BacklogTimeout = getenvDurationDefault("BACKLOG_TIMEOUT", r.BacklogTimeout)

	s := &cfg.Stats
	s.Enabled = getenvBoolDefault("RATE_STATS_ENABLED", s.Enabled)
	s.RedisAddr = getenvDefault("RATE_STATS_REDIS_ADDR", s.RedisAddr)
	s.RedisPassword = getenvDefault("RATE_STATS_REDIS_PASSWORD", s.RedisPassword)
	s.RedisDB = getenvIntDefault("RATE_STATS_REDIS_DB", s.RedisDB)
	s.Prefix = getenvDefault("RATE_STATS_PREFIX", s.Prefix)
	s.TTL = getenvDurationDefault("RATE_STATS_TTL", s.TTL)
	s.Bucket = strings.ToLower(getenvDefault("RATE_STATS_BUCKET", s.Bucket))
	return cfg
}

// Validate confere a configuração inteira. Erros do validator viram uma
// mensagem por campo, na ordem em que aparecem.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", field)
	case "gt":
		return fmt.Sprintf("%s must be > %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fmt.Sprint(fe.Value()))
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}
