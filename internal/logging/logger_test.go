package logging

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want log.Level
	}{
		{"DEBUG", log.DebugLevel},
		{"debug", log.DebugLevel},
		{"WARN", log.WarnLevel},
		{"ERROR", log.ErrorLevel},
		{"", log.InfoLevel},
		{"nonsense", log.InfoLevel},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, ParseLevel(tt.in), "level %q", tt.in)
	}
}

func TestNew_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "WARN")

	l.Info("hidden message")
	l.Warn("visible message", "id", "abc")

	out := buf.String()
	require.NotContains(t, out, "hidden message")
	require.Contains(t, out, "visible message")
	require.Contains(t, out, "id=abc")
}

func TestRestyLogger_RoutesToLogger(t *testing.T) {
	var buf bytes.Buffer
	rl := RestyLogger{L: New(&buf, "DEBUG")}

	rl.Errorf("post failed: %s", "boom")
	rl.Debugf("retrying %d", 0)

	require.Contains(t, buf.String(), "post failed: boom")
	require.Contains(t, buf.String(), "retrying 0")
}

func TestSetOutput_KeepsLevel(t *testing.T) {
	var buf bytes.Buffer
	SetLevel("ERROR")
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(nil)
		SetLevel("INFO")
	})

	Default().Warn("dropped")
	Default().Error("kept")

	require.NotContains(t, buf.String(), "dropped")
	require.Contains(t, buf.String(), "kept")
}
