package registry

import (
	"context"
	"time"

	"document-gateway/internal/logging"
	"document-gateway/registry/application"
	"document-gateway/registry/domain"
	"document-gateway/registry/infra"

	"github.com/charmbracelet/log"
)

// Client monta pool, serializer, transporte e gate. O pool pertence ao Client:
// não há estado global, dois Clients têm limites independentes.
type Client struct {
	pool *infra.WindowPool
	gate *application.Gate
}

var _ domain.PoolState = (*Client)(nil)

type clientOptions struct {
	endpoint        string
	transport       domain.Transport
	serializer      domain.Serializer
	stats           domain.StatsStore
	logger          *log.Logger
	acquireTimeout  time.Duration
	signatureHeader string
	httpTimeout     time.Duration
}

type Option func(*clientOptions)

// WithEndpoint troca o destino (padrão infra.DefaultEndpoint).
func WithEndpoint(url string) Option {
	return func(o *clientOptions) { o.endpoint = url }
}

func WithTransport(t domain.Transport) Option {
	return func(o *clientOptions) { o.transport = t }
}

func WithSerializer(s domain.Serializer) Option {
	return func(o *clientOptions) { o.serializer = s }
}

func WithStats(s domain.StatsStore) Option {
	return func(o *clientOptions) { o.stats = s }
}

func WithLogger(l *log.Logger) Option {
	return func(o *clientOptions) { o.logger = l }
}

func WithAcquireTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.acquireTimeout = d }
}

// WithSignatureHeader só tem efeito no transporte HTTP padrão.
func WithSignatureHeader(h string) Option {
	return func(o *clientOptions) { o.signatureHeader = h }
}

// WithHTTPTimeout só tem efeito no transporte HTTP padrão.
func WithHTTPTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.httpTimeout = d }
}

// New cria um Client que admite no máximo requestLimit submissões por timeUnit,
// com a janela contada a partir de cada aquisição.
func New(timeUnit time.Duration, requestLimit int, opts ...Option) (*Client, error) {
	o := clientOptions{
		endpoint:    infra.DefaultEndpoint,
		serializer:  infra.JSONSerializer{},
		httpTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = logging.Or(o.logger)

	pool, err := infra.NewWindowPool(requestLimit, timeUnit)
	if err != nil {
		return nil, err
	}

	if o.transport == nil {
		o.transport = infra.NewHTTPTransport(
			infra.WithHTTPTimeout(o.httpTimeout),
			infra.WithSignatureHeader(o.signatureHeader),
			infra.WithTransportLogger(o.logger),
		)
	}

	gate := application.NewGate(pool, o.serializer, o.transport, o.endpoint,
		application.WithStats(o.stats),
		application.WithLogger(o.logger),
		application.WithAcquireTimeout(o.acquireTimeout),
	)
	return &Client{pool: pool, gate: gate}, nil
}

// Submit bloqueia até haver permissão e então envia o documento.
// Nunca retorna erro: verifique Receipt.State (CANCELLED = não admitido, não enviado).
func (c *Client) Submit(ctx context.Context, doc domain.Document, signature string) domain.Receipt {
	return c.gate.Submit(ctx, domain.Submission{Document: doc, Signature: signature})
}

func (c *Client) Capacity() int         { return c.pool.Capacity() }
func (c *Client) Available() int        { return c.pool.Available() }
func (c *Client) Window() time.Duration { return c.pool.Window() }
