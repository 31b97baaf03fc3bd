package domain

import (
	"context"
	"time"
)

// State é o estado de uma submissão.
//
//	PENDING -> ADMITTED -> DISPATCHED
//	PENDING -> CANCELLED
type State string

const (
	StatePending    State = "PENDING"
	StateAdmitted   State = "ADMITTED"
	StateDispatched State = "DISPATCHED"
	StateCancelled  State = "CANCELLED"
)

// Submission é um valor transitório: vive só durante uma chamada de Submit.
type Submission struct {
	ID        string
	Document  Document
	Signature string
}

// Receipt descreve o resultado de uma submissão.
//
// DISPATCHED não significa entrega confirmada: a resposta remota não é interpretada
// e falhas de transporte são apenas logadas.
type Receipt struct {
	ID    string `json:"id"`
	State State  `json:"state"`
	// AdmittedAt é o instante em que a permissão foi obtida (zero se não admitida).
	AdmittedAt time.Time     `json:"admitted_at"`
	Waited     time.Duration `json:"waited"`
}

func (r Receipt) Admitted() bool {
	return r.State == StateAdmitted || r.State == StateDispatched
}

// Serializer transforma um documento no corpo enviado ao serviço de registro.
type Serializer interface {
	Serialize(doc Document) ([]byte, error)
}

// Delivery é o que o transporte recebe: corpo já serializado e destino.
type Delivery struct {
	URL       string
	Body      []byte
	Signature string
}

// Transport entrega o corpo ao destino. A resposta não é lida nem validada.
type Transport interface {
	Send(ctx context.Context, d Delivery) error
}
