package domain

import (
	"context"
	"time"
)

// Backlog limita quantas requisições do relay estão dentro do gate ao mesmo
// tempo, esperando permissão ou enviando.
//
// A vaga volta quando a requisição termina; leave pode ser chamado mais de uma vez.
type Backlog interface {
	TryEnter() (leave func(), ok bool)
	Enter(ctx context.Context) (leave func(), ok bool)
	Len() int
	Cap() int
}

// Admission é a decisão de entrada no backlog.
type Admission struct {
	Admitted bool
	Leave    func()
	// Queued é quanto a requisição esperou por vaga no backlog.
	Queued time.Duration
	// RetryAfter é preenchido quando Admitted == false.
	RetryAfter time.Duration
}
