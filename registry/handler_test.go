package registry

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"document-gateway/internal/logging"
	"document-gateway/registry/domain"
	"document-gateway/registry/infra"

	"github.com/stretchr/testify/require"
)

type fakeSubmitter struct {
	mu         sync.Mutex
	docs       []domain.Document
	signatures []string
	state      domain.State
}

func (s *fakeSubmitter) Submit(_ context.Context, doc domain.Document, signature string) domain.Receipt {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, doc)
	s.signatures = append(s.signatures, signature)
	state := s.state
	if state == "" {
		state = domain.StateDispatched
	}
	return domain.Receipt{ID: "sub-1", State: state, AdmittedAt: time.Now(), Waited: 1500 * time.Millisecond}
}

func (s *fakeSubmitter) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

type fixedLimits struct{}

func (fixedLimits) Capacity() int         { return 10 }
func (fixedLimits) Available() int        { return 7 }
func (fixedLimits) Window() time.Duration { return time.Minute }

func TestHandler_SubmitsDecodedDocument(t *testing.T) {
	sub := &fakeSubmitter{}
	h := Handler(HandlerOptions{Submitter: sub})

	body := `{"doc_id":"d-1","doc_type":"LP_INTRODUCE_GOODS","description":{"participantInn":"77"},` +
		`"importRequest":true,"products":[{"tnved_code":"6401"}]}`
	r := httptest.NewRequest(http.MethodPost, "http://relay/v1/documents", strings.NewReader(body))
	r.Header.Set("X-Signature", " sig-1 ")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	require.Equal(t, http.StatusAccepted, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp receiptResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "sub-1", resp.ID)
	require.Equal(t, "DISPATCHED", resp.State)
	require.EqualValues(t, 1500, resp.WaitedMs)

	require.Len(t, sub.docs, 1)
	doc := sub.docs[0]
	require.Equal(t, "d-1", doc.DocID)
	require.NotNil(t, doc.Description)
	require.Equal(t, "77", doc.Description.ParticipantInn)
	require.NotNil(t, doc.ImportRequest)
	require.True(t, *doc.ImportRequest)
	require.Len(t, doc.Products, 1)
	require.Equal(t, "6401", doc.Products[0].TnvedCode)
	require.Equal(t, "sig-1", sub.signatures[0])
}

func TestHandler_RejectsBadRequests(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		signature string
	}{
		{name: "missing signature", body: `{"doc_id":"d-1"}`},
		{name: "malformed json", body: `{"doc_id":`, signature: "sig"},
		{name: "unknown field", body: `{"doc_id":"d-1","extra":1}`, signature: "sig"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := &fakeSubmitter{}
			h := Handler(HandlerOptions{Submitter: sub})

			r := httptest.NewRequest(http.MethodPost, "http://relay/v1/documents", strings.NewReader(tt.body))
			if tt.signature != "" {
				r.Header.Set("X-Signature", tt.signature)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)

			require.Equal(t, http.StatusBadRequest, w.Code)
			require.Zero(t, sub.calls())
		})
	}
}

func TestHandler_MapsReceiptStateToStatus(t *testing.T) {
	tests := []struct {
		state domain.State
		want  int
	}{
		{domain.StateDispatched, http.StatusAccepted},
		{domain.StateCancelled, http.StatusServiceUnavailable},
		{domain.StateAdmitted, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			h := Handler(HandlerOptions{Submitter: &fakeSubmitter{state: tt.state}, SignatureHeader: "X-Sign"})

			r := httptest.NewRequest(http.MethodPost, "http://relay/v1/documents", strings.NewReader(`{}`))
			r.Header.Set("X-Sign", "sig")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)

			require.Equal(t, tt.want, w.Code)
		})
	}
}

func TestHandler_Limits(t *testing.T) {
	h := Handler(HandlerOptions{Submitter: &fakeSubmitter{}, Limits: fixedLimits{}})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://relay/v1/limits", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"capacity":10,"available":7,"window":"1m0s"}`, w.Body.String())

	w = httptest.NewRecorder()
	Handler(HandlerOptions{Submitter: &fakeSubmitter{}}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://relay/v1/limits", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}

type deadlineSubmitter struct {
	deadline time.Time
	ok       bool
}

func (s *deadlineSubmitter) Submit(ctx context.Context, doc domain.Document, _ string) domain.Receipt {
	s.deadline, s.ok = ctx.Deadline()
	return domain.Receipt{ID: doc.DocID, State: domain.StateDispatched}
}

func TestHandler_SubmitTimeoutBoundsTheGate(t *testing.T) {
	sub := &deadlineSubmitter{}
	h := Handler(HandlerOptions{Submitter: sub, SubmitTimeout: 3 * time.Second})

	start := time.Now()
	require.Equal(t, http.StatusAccepted, postDocument(h, "10.0.0.1:1234", nil).Code)
	require.True(t, sub.ok)
	require.WithinDuration(t, start.Add(3*time.Second), sub.deadline, time.Second)

	sub = &deadlineSubmitter{}
	Handler(HandlerOptions{Submitter: sub}).ServeHTTP(httptest.NewRecorder(), newDocumentRequest())
	require.False(t, sub.ok, "no deadline unless configured")
}

type stubStats struct {
	totals map[string]int64
	err    error
}

func (s stubStats) Totals(context.Context) (map[string]int64, error) { return s.totals, s.err }

func TestHandler_Stats(t *testing.T) {
	get := func(h http.Handler) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://relay/v1/stats", nil))
		return w
	}

	w := get(Handler(HandlerOptions{
		Submitter: &fakeSubmitter{},
		Stats:     stubStats{totals: map[string]int64{"dispatched": 4, "transport_failed": 1}},
	}))
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"totals":{"dispatched":4,"transport_failed":1}}`, w.Body.String())

	w = get(Handler(HandlerOptions{Submitter: &fakeSubmitter{}, Stats: stubStats{err: errors.New("redis down")}}))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Contains(t, w.Body.String(), "redis down")

	require.Equal(t, http.StatusNotFound, get(Handler(HandlerOptions{Submitter: &fakeSubmitter{}})).Code)
}

func TestHandler_StatsReflectSubmissions(t *testing.T) {
	stats := infra.NewMemoryStatsStore()
	client, err := New(time.Hour, 1, WithTransport(noopTransport{}), WithStats(stats),
		WithLogger(logging.New(io.Discard, "ERROR")))
	require.NoError(t, err)

	h := Handler(HandlerOptions{Submitter: client, Limits: client, Stats: stats, SubmitTimeout: 50 * time.Millisecond})
	require.Equal(t, http.StatusAccepted, postDocument(h, "10.0.0.1:1234", nil).Code)
	require.Equal(t, http.StatusServiceUnavailable, postDocument(h, "10.0.0.1:1234", nil).Code, "no permit within the deadline")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://relay/v1/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"totals":{"dispatched":1,"cancelled":1,"admitted":0,"transport_failed":0}}`, w.Body.String())
}
