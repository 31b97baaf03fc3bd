// Package registry é o cliente de submissão de documentos ao serviço de registro,
// com limite de requisições por janela deslizante.
//
// Visão geral (camadas):
//
//   - domain: documento, submissão, recibo e contratos (sem net/http)
//   - application: Gate (acquire -> agenda devolução -> serializa -> envia) e
//     decisões de entrada do relay
//   - infra: WindowPool, JSONSerializer, HTTPTransport, stats e token buckets
//   - registry (este pacote): Client (montagem) + relay HTTP e seus middlewares
//
// Fluxo de uma submissão:
//
//  1. Client.Submit chama Gate.Submit
//  2. o Gate bloqueia até haver permissão no WindowPool (ou o ctx encerrar)
//  3. a permissão volta sozinha depois de uma janela contada a partir da aquisição
//  4. o documento é serializado e enviado; falhas de envio são só logadas
//
// No relay (cmd/docgate serve), antes do passo 1 a requisição passa pelo token
// bucket por cliente (RateLimitMiddleware), no ritmo do pool, e pelo backlog
// (BacklogMiddleware), dimensionado em janelas do pool. GET /v1/limits e
// GET /v1/stats expõem o pool e os contadores de desfecho.
package registry
