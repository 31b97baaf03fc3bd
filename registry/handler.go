package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"document-gateway/registry/domain"
)

// Submitter é o que o relay precisa do Client.
type Submitter interface {
	Submit(ctx context.Context, doc domain.Document, signature string) domain.Receipt
}

// Limits expõe o estado do pool em GET /v1/limits.
type Limits interface {
	Capacity() int
	Available() int
	Window() time.Duration
}

type HandlerOptions struct {
	Submitter Submitter
	// Limits é opcional; sem ele GET /v1/limits responde 404.
	Limits Limits
	// SignatureHeader de onde vem a assinatura do chamador (padrão X-Signature).
	SignatureHeader string
	MaxBodyBytes    int64
	// Stats é opcional; sem ele GET /v1/stats responde 404.
	Stats domain.StatsReader
	// SubmitTimeout limita espera por permissão mais envio. Deve ficar abaixo
	// do WriteTimeout do servidor para que a resposta ainda chegue ao cliente.
	SubmitTimeout time.Duration
}

type receiptResponse struct {
	ID         string    `json:"id"`
	State      string    `json:"state"`
	AdmittedAt time.Time `json:"admitted_at,omitzero"`
	WaitedMs   int64     `json:"waited_ms"`
	QueuedMs   int64     `json:"queued_ms"`
}

type statsResponse struct {
	Totals map[string]int64 `json:"totals"`
}

type limitsResponse struct {
	Capacity  int    `json:"capacity"`
	Available int    `json:"available"`
	Window    string `json:"window"`
}

// Handler monta as rotas do relay:
//
//	POST /v1/documents  corpo = documento JSON, assinatura no header
//	GET  /v1/limits     capacidade/disponível/janela do pool
//	GET  /v1/stats      contadores de desfecho das submissões
func Handler(opts HandlerOptions) http.Handler {
	if opts.SignatureHeader == "" {
		opts.SignatureHeader = "X-Signature"
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/documents", func(w http.ResponseWriter, r *http.Request) {
		signature := strings.TrimSpace(r.Header.Get(opts.SignatureHeader))
		if signature == "" {
			http.Error(w, "missing "+opts.SignatureHeader+" header", http.StatusBadRequest)
			return
		}

		var doc domain.Document
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, opts.MaxBodyBytes))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			http.Error(w, "invalid document: "+err.Error(), http.StatusBadRequest)
			return
		}

		ctx := r.Context()
		if opts.SubmitTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, opts.SubmitTimeout)
			defer cancel()
		}
		rcpt := opts.Submitter.Submit(ctx, doc, signature)

		status := http.StatusAccepted
		switch rcpt.State {
		case domain.StateCancelled:
			status = http.StatusServiceUnavailable
		case domain.StateAdmitted:
			// admitido mas não chegou ao transporte
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, receiptResponse{
			ID:         rcpt.ID,
			State:      string(rcpt.State),
			AdmittedAt: rcpt.AdmittedAt,
			WaitedMs:   rcpt.Waited.Milliseconds(),
			QueuedMs:   queuedFrom(r.Context()).Milliseconds(),
		})
	})

	mux.HandleFunc("GET /v1/limits", func(w http.ResponseWriter, r *http.Request) {
		if opts.Limits == nil {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, http.StatusOK, limitsResponse{
			Capacity:  opts.Limits.Capacity(),
			Available: opts.Limits.Available(),
			Window:    opts.Limits.Window().String(),
		})
	})

	mux.HandleFunc("GET /v1/stats", func(w http.ResponseWriter, r *http.Request) {
		if opts.Stats == nil {
			http.NotFound(w, r)
			return
		}
		totals, err := opts.Stats.Totals(r.Context())
		if err != nil {
			http.Error(w, "stats unavailable: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, statsResponse{Totals: totals})
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
