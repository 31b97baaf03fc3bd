// Package infra contém implementações concretas para os contratos do pacote domain.
//
// Saída (serviço de registro):
//   - WindowPool: pool de permissões com devolução atrasada (x/sync/semaphore + time.AfterFunc)
//   - JSONSerializer: corpo JSON com ordem de chaves fixa
//   - HTTPTransport: POST via resty, sem retry
//   - MemoryStatsStore / RedisStatsStore: contadores de desfecho das submissões
//
// Entrada (relay HTTP):
//   - Store: token bucket por cliente (golang.org/x/time/rate), no ritmo do pool com NewPoolStore
//   - ChanBacklog: fila de entrada sobre canal, com profundidade observável
package infra
