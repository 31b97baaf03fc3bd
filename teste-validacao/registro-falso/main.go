// Servidor falso do serviço de registro para validar o docgate localmente:
//
//	go run ./teste-validacao/registro-falso
//	docgate submit -f doc.json --signature x --endpoint http://localhost:8081/api/v3/lk/documents/create --limit 2 --time-unit 5s
package main

import (
	"io"
	"net/http"
	"os"
	"time"

	"document-gateway/internal/logging"
)

func main() {
	logger := logging.New(os.Stdout, "INFO")
	start := time.Now()

	http.HandleFunc("POST /api/v3/lk/documents/create", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		logger.Info("document received",
			"since_start", time.Since(start).Round(time.Millisecond),
			"content_type", r.Header.Get("Content-Type"),
			"bytes", len(body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"value":"ok"}`))
	})

	logger.Info("fake registry listening", "addr", "http://localhost:8081")
	if err := http.ListenAndServe(":8081", nil); err != nil {
		logger.Fatal("server error", "err", err)
	}
}
