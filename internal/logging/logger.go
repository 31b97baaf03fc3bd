// Package logging centraliza o logger estruturado (charmbracelet/log) usado pelo
// gate, pelo transporte e pelos binários.
//
// Componentes recebem um *log.Logger pelas opções; quando nada é injetado,
// usam Default(). Campos chave/valor (id, state, waited, err) são preferidos a
// mensagens formatadas.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	mu            sync.RWMutex
	defaultLogger = New(os.Stderr, "INFO")
)

// New cria um logger com timestamp RFC3339 escrevendo em w.
// Níveis aceitos: DEBUG, INFO, WARN, ERROR (qualquer outro vira INFO).
func New(w io.Writer, level string) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})
	l.SetLevel(ParseLevel(level))
	return l
}

func ParseLevel(level string) log.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return log.DebugLevel
	case "WARN", "WARNING":
		return log.WarnLevel
	case "ERROR":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// Default retorna o logger do processo.
func Default() *log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// SetLevel ajusta o nível do logger do processo.
func SetLevel(level string) {
	Default().SetLevel(ParseLevel(level))
}

// SetOutput troca o destino do logger do processo mantendo o nível atual.
// Com w == nil a saída é descartada.
func SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	mu.Lock()
	defer mu.Unlock()
	lvl := defaultLogger.GetLevel()
	defaultLogger = New(w, "INFO")
	defaultLogger.SetLevel(lvl)
}

// Or retorna l, ou Default() quando l é nil.
func Or(l *log.Logger) *log.Logger {
	if l != nil {
		return l
	}
	return Default()
}

// RestyLogger adapta um *log.Logger à interface resty.Logger.
type RestyLogger struct {
	L *log.Logger
}

func (r RestyLogger) Errorf(format string, v ...interface{}) { Or(r.L).Errorf(format, v...) }
func (r RestyLogger) Warnf(format string, v ...interface{})  { Or(r.L).Warnf(format, v...) }
func (r RestyLogger) Debugf(format string, v ...interface{}) { Or(r.L).Debugf(format, v...) }
