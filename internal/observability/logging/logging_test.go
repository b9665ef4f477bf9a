package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewDefaultsToJSONAtInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Writer: &buf})

	logger.Debug("hidden")
	logger.Info("visible", "key", "value")

	if strings.Contains(buf.String(), "hidden") {
		t.Fatal("debug output should be suppressed at the default level")
	}
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "visible" || entry["key"] != "value" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestNewHonorsTextFormatAndDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "debug", Format: "text", Writer: &buf})

	logger.Debug("verbose detail")
	if !strings.Contains(buf.String(), "verbose detail") {
		t.Fatalf("expected debug output, got %q", buf.String())
	}
	if strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Fatal("text format must not emit JSON")
	}
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLevel(input); got.Level() != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", input, got.Level(), want)
		}
	}
}

func TestWithComponentAnnotatesEntries(t *testing.T) {
	var buf bytes.Buffer
	logger := WithComponent(New(Config{Writer: &buf}), "api")

	logger.Info("ready")
	if !strings.Contains(buf.String(), `"component":"api"`) {
		t.Fatalf("missing component field in %q", buf.String())
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := ContextWithRequestID(context.Background(), "req-1")
	id, ok := RequestIDFromContext(ctx)
	if !ok || id != "req-1" {
		t.Fatalf("expected req-1, got %q ok=%v", id, ok)
	}

	ctx = ContextWithRequestID(context.Background(), "   ")
	if _, ok := RequestIDFromContext(ctx); ok {
		t.Fatal("blank ids must not be stored")
	}
}

func TestWithContextAttachesRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Writer: &buf})

	ctx := ContextWithRequestID(context.Background(), "req-9")
	WithContext(ctx, base).Info("done")

	if !strings.Contains(buf.String(), `"request_id":"req-9"`) {
		t.Fatalf("missing request_id field in %q", buf.String())
	}
}

func TestLoggerContextRoundTrip(t *testing.T) {
	logger := New(Config{Writer: &bytes.Buffer{}})
	ctx := ContextWithLogger(context.Background(), logger)

	if got := LoggerFromContext(ctx); got != logger {
		t.Fatal("expected the stored logger back")
	}
	if got := LoggerFromContext(context.Background()); got != nil {
		t.Fatal("expected nil from an empty context")
	}
}
