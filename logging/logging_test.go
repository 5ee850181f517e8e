package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSetupWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "othello.log")
	l, closer, err := Setup(Options{Level: "debug", File: path})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	l.Debug().Str("move", "d3").Msg("chose-move")
	closer.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"move":"d3"`) {
		t.Errorf("log file = %q, missing field", data)
	}
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
}

func TestSetupLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l, _, err := Setup(Options{Level: "warn", Out: &buf})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	l.Info().Msg("hidden")
	l.Warn().Msg("shown")
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	if strings.Contains(buf.String(), "hidden") {
		t.Error("info line written at warn level")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("warn line missing")
	}
}

func TestSetupBadLevel(t *testing.T) {
	if _, _, err := Setup(Options{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
}
