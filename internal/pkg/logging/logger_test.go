package logging

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New(Options{Service: "svc", Env: "test", Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNew_DefaultLevel(t *testing.T) {
	logger, err := New(Options{Service: "svc", Env: "test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !logger.Core().Enabled(zap.InfoLevel) {
		t.Error("expected info level to be enabled")
	}
	if logger.Core().Enabled(zap.DebugLevel) {
		t.Error("expected debug level to be disabled by default")
	}
}

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "service.log")
	logger, err := New(Options{Service: "svc", Env: "test", Level: "debug", File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger.Debug("stock_checked", zap.Int("item_id", 7))
	logger.Sync()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(raw)
	for _, want := range []string{`"msg":"stock_checked"`, `"service":"svc"`, `"env":"test"`, `"level":"debug"`, `"item_id":7`} {
		if !strings.Contains(line, want) {
			t.Errorf("expected %s in %s", want, line)
		}
	}
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) != zap.L() {
		t.Error("expected global logger when none is stored")
	}

	logger := zap.NewNop()
	ctx := ContextWithLogger(context.Background(), logger)
	if FromContext(ctx) != logger {
		t.Error("expected stored logger")
	}

	if ContextWithLogger(ctx, nil) != ctx {
		t.Error("expected nil logger to leave context untouched")
	}
}

func TestForRequest(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ForRequest(base, "req-1", trace.SpanContext{}).Info("untraced")

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01},
		SpanID:     trace.SpanID{0x02},
		TraceFlags: trace.FlagsSampled,
	})
	ForRequest(base, "req-2", sc).Info("traced")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	untraced := entries[0].ContextMap()
	if untraced["request_id"] != "req-1" {
		t.Errorf("expected request_id req-1, got %v", untraced["request_id"])
	}
	if _, ok := untraced["trace_id"]; ok {
		t.Error("expected no trace_id without a valid span context")
	}

	traced := entries[1].ContextMap()
	if traced["trace_id"] != sc.TraceID().String() || traced["span_id"] != sc.SpanID().String() {
		t.Errorf("unexpected trace fields %v", traced)
	}
}
