package observability

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewLoggerTo_JSONAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf, "prod", "warn")
	l.Info().Msg("hidden")
	l.Warn().Str("report", "r1").Msg("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("want 1 line, got %q", buf.String())
	}
	var ev map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &ev); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if ev["message"] != "shown" || ev["report"] != "r1" || ev["service"] != "app_reviews" {
		t.Fatalf("unexpected event: %v", ev)
	}
}

func TestNewLoggerTo_BadLevelIsInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf, "dev", "loud")
	l.Debug().Msg("debug")
	l.Info().Msg("info")
	out := buf.String()
	if strings.Contains(out, "debug") || !strings.Contains(out, "info") {
		t.Fatalf("unexpected output: %q", out)
	}
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Fatalf("dev should use the console writer, got %q", out)
	}
}
