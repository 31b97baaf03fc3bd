// Package application contém os casos de uso do cliente de registro.
//
// Gate é o núcleo: Submit obtém permissão do PermitPool, agenda a devolução e
// entrega o documento serializado ao Transport. InboundService e BacklogService
// decidem, para o relay HTTP, se uma requisição de entrada pode chegar ao Gate.
//
// Ele depende apenas do pacote domain (e do logger) e não conhece net/http.
package application
