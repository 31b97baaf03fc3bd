package domain

import (
	"context"
	"strings"
	"time"
)

// StatsEvent representa o desfecho de uma submissão.
//
// Observação: cuidado com cardinalidade. O ID é útil para logs em memória,
// mas não deve virar chave de série em Redis/Prometheus.
type StatsEvent struct {
	ID    string
	State State

	// Failed indica que o transporte falhou (a submissão continua DISPATCHED).
	Failed bool
	Waited time.Duration

	At time.Time
}

// StatsStore é a estratégia de persistência para estatísticas das submissões.
//
// Implementações podem armazenar em Redis, memória, etc.
// O gate trata erro como best-effort (não derruba a submissão).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}

// StatsReader lê os contadores acumulados, por estado em minúsculas
// ("dispatched", "cancelled", "admitted") mais "transport_failed".
type StatsReader interface {
	Totals(ctx context.Context) (map[string]int64, error)
}

// Fields são os contadores que um evento incrementa.
func (ev StatsEvent) Fields() []string {
	fields := []string{strings.ToLower(string(ev.State))}
	if ev.Failed {
		fields = append(fields, "transport_failed")
	}
	return fields
}
