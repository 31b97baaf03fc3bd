package infra

import (
	"context"
	"net/http"
	"time"

	"document-gateway/internal/logging"
	"document-gateway/registry/domain"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// DefaultEndpoint é o endpoint de criação de documentos do serviço de registro.
const DefaultEndpoint = "https://ismp.crpt.ru/api/v3/lk/documents/create"

// HTTPTransport faz o POST do documento via resty.
//
// Sem retry: a política de reenvio é de quem chama o gate. A resposta não é
// interpretada; só o status aparece no log de debug.
type HTTPTransport struct {
	client          *resty.Client
	httpClient      *http.Client
	timeout         time.Duration
	signatureHeader string
	logger          *log.Logger
}

var _ domain.Transport = (*HTTPTransport)(nil)

type TransportOption func(*HTTPTransport)

func WithHTTPTimeout(d time.Duration) TransportOption {
	return func(t *HTTPTransport) { t.timeout = d }
}

// WithSignatureHeader envia a assinatura do chamador no header informado.
// Vazio (padrão) não envia nada.
func WithSignatureHeader(h string) TransportOption {
	return func(t *HTTPTransport) { t.signatureHeader = h }
}

func WithTransportLogger(l *log.Logger) TransportOption {
	return func(t *HTTPTransport) { t.logger = l }
}

// WithHTTPClient troca o http.Client usado por baixo (ex.: cliente TLS do httptest).
func WithHTTPClient(c *http.Client) TransportOption {
	return func(t *HTTPTransport) { t.httpClient = c }
}

func NewHTTPTransport(opts ...TransportOption) *HTTPTransport {
	t := &HTTPTransport{timeout: 30 * time.Second}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = logging.Or(t.logger)

	if t.httpClient != nil {
		t.client = resty.NewWithClient(t.httpClient)
	} else {
		t.client = resty.New()
	}
	t.client.
		SetLogger(logging.RestyLogger{L: t.logger}).
		SetRetryCount(0).
		SetTimeout(t.timeout).
		SetHeader("Content-Type", "application/json")
	return t
}

func (t *HTTPTransport) Send(ctx context.Context, d domain.Delivery) error {
	req := t.client.R().
		SetContext(ctx).
		SetBody(d.Body)
	if t.signatureHeader != "" && d.Signature != "" {
		req.SetHeader(t.signatureHeader, d.Signature)
	}

	resp, err := req.Post(d.URL)
	if err != nil {
		return errors.Wrapf(err, "post document to %s", d.URL)
	}
	t.logger.Debug("registry responded", "url", d.URL, "status", resp.StatusCode(), "took", resp.Time())
	return nil
}
