package application

import (
	"context"
	"time"

	"document-gateway/internal/logging"
	"document-gateway/registry/domain"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// Gate é a porta de entrada das submissões: obtém uma permissão do pool,
// agenda a devolução, serializa e entrega ao transporte.
//
// Submit nunca retorna erro nem propaga pânico do serializer ou do transporte.
// Falhas de transporte são
// logadas e engolidas (sem retry); o desfecho fica no Receipt.
type Gate struct {
	pool       domain.PermitPool
	serializer domain.Serializer
	transport  domain.Transport
	endpoint   string

	stats          domain.StatsStore
	logger         *log.Logger
	acquireTimeout time.Duration
	newID          func() string

	// limita o aviso de pool esgotado para não inundar o log sob contenção.
	exhausted *rate.Sometimes
}

type GateOption func(*Gate)

func WithStats(s domain.StatsStore) GateOption {
	return func(g *Gate) { g.stats = s }
}

func WithLogger(l *log.Logger) GateOption {
	return func(g *Gate) { g.logger = l }
}

// WithAcquireTimeout limita a espera por permissão.
// <= 0 espera indefinidamente (até o ctx do chamador encerrar).
func WithAcquireTimeout(d time.Duration) GateOption {
	return func(g *Gate) { g.acquireTimeout = d }
}

func WithIDGenerator(fn func() string) GateOption {
	return func(g *Gate) { g.newID = fn }
}

func NewGate(pool domain.PermitPool, serializer domain.Serializer, transport domain.Transport, endpoint string, opts ...GateOption) *Gate {
	g := &Gate{
		pool:       pool,
		serializer: serializer,
		transport:  transport,
		endpoint:   endpoint,
		newID:      uuid.NewString,
		exhausted:  &rate.Sometimes{First: 1, Interval: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = logging.Or(g.logger)
	return g
}

// Submit leva a submissão de PENDING até DISPATCHED, ou até CANCELLED se o ctx
// encerrar (ou o AcquireTimeout estourar) antes de obter permissão. Uma submissão
// cancelada não é enviada e não agenda devolução.
func (g *Gate) Submit(ctx context.Context, sub domain.Submission) domain.Receipt {
	if sub.ID == "" {
		sub.ID = g.newID()
	}
	l := g.logger.With("id", sub.ID, "doc_id", sub.Document.DocID)
	l.Debug("submission pending")

	started := time.Now()
	if err := g.acquire(ctx); err != nil {
		rcpt := domain.Receipt{ID: sub.ID, State: domain.StateCancelled, Waited: time.Since(started)}
		l.Warn("submission cancelled while waiting for permit", "waited", rcpt.Waited, "err", err)
		g.record(ctx, rcpt, false)
		return rcpt
	}

	admittedAt := time.Now()
	g.pool.ScheduleRelease()
	rcpt := domain.Receipt{
		ID:         sub.ID,
		State:      domain.StateAdmitted,
		AdmittedAt: admittedAt,
		Waited:     admittedAt.Sub(started),
	}
	l.Debug("permit acquired", "waited", rcpt.Waited, "available", g.pool.Available())

	body, err := g.serialize(sub.Document)
	if err != nil {
		l.Error("failed to serialize document", "err", err)
		g.record(ctx, rcpt, false)
		return rcpt
	}

	failed := g.dispatch(ctx, l, domain.Delivery{URL: g.endpoint, Body: body, Signature: sub.Signature})
	rcpt.State = domain.StateDispatched
	g.record(ctx, rcpt, failed)
	return rcpt
}

func (g *Gate) acquire(ctx context.Context) error {
	if g.pool.TryAcquire() {
		return nil
	}
	g.exhausted.Do(func() {
		g.logger.Warn("permit pool exhausted, submissions are waiting",
			"capacity", g.pool.Capacity(), "window", g.pool.Window())
	})

	if g.acquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.acquireTimeout)
		defer cancel()
	}
	return g.pool.Acquire(ctx)
}

// serialize trata pânico do serializer como erro; o serializer pode vir de fora.
func (g *Gate) serialize(doc domain.Document) (body []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("serializer panicked: %v", r)
		}
	}()
	return g.serializer.Serialize(doc)
}

func (g *Gate) dispatch(ctx context.Context, l *log.Logger, d domain.Delivery) (failed bool) {
	defer func() {
		if r := recover(); r != nil {
			l.Error("transport panicked", "panic", r)
			failed = true
		}
	}()

	if err := g.transport.Send(ctx, d); err != nil {
		l.Error("error sending document", "err", err.Error())
		return true
	}
	l.Info("document dispatched", "bytes", len(d.Body))
	return false
}

func (g *Gate) record(ctx context.Context, rcpt domain.Receipt, failed bool) {
	if g.stats == nil {
		return
	}
	err := g.stats.Record(context.WithoutCancel(ctx), domain.StatsEvent{
		ID:     rcpt.ID,
		State:  rcpt.State,
		Failed: failed,
		Waited: rcpt.Waited,
		At:     time.Now(),
	})
	if err != nil {
		g.logger.Debug("failed to record submission stats", "id", rcpt.ID, "err", err)
	}
}
