// Package domain define contratos e tipos de domínio do cliente de registro de documentos.
//
// Aqui ficam o documento (e seus produtos), a submissão e o recibo, além dos
// contratos consumidos pela camada application: PermitPool, Serializer, Transport
// e StatsStore. Os contratos de rate limit de entrada (Limiter/LimiterStore/Backlog)
// usados pelo relay HTTP também vivem aqui.
//
// Este pacote não depende de net/http nem de implementações concretas.
package domain
