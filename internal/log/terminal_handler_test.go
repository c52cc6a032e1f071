package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestTerminalHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	h := newTerminalHandler(&buf, slog.LevelDebug, false)

	ts := time.Date(2026, 1, 15, 10, 30, 45, 123000000, time.UTC)
	r := slog.NewRecord(ts, slog.LevelInfo, "artifact generated", 0)
	r.AddAttrs(slog.Int64("mapping_id", 3), slog.String("file", "dag_erp_HR_EMP.py"))

	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error: %v", err)
	}

	want := "10:30:45.123 INF artifact generated mapping_id=3 file=dag_erp_HR_EMP.py\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestTerminalHandler_Color(t *testing.T) {
	var buf bytes.Buffer
	slog.New(newTerminalHandler(&buf, slog.LevelInfo, true)).Error("boom")

	if !strings.Contains(buf.String(), ansiRed+"ERR"+ansiReset) {
		t.Errorf("expected coloured level, got %q", buf.String())
	}
}

func TestTerminalHandler_Levels(t *testing.T) {
	tests := []struct {
		level slog.Level
		label string
	}{
		{slog.LevelDebug, "DBG"},
		{slog.LevelInfo, "INF"},
		{slog.LevelWarn, "WRN"},
		{slog.LevelError, "ERR"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		slog.New(newTerminalHandler(&buf, slog.LevelDebug, false)).Log(context.Background(), tt.level, "msg")
		if !strings.Contains(buf.String(), " "+tt.label+" ") {
			t.Errorf("level %v: expected %s in %q", tt.level, tt.label, buf.String())
		}
	}
}

func TestTerminalHandler_FiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newTerminalHandler(&buf, slog.LevelWarn, false))

	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestTerminalHandler_AttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newTerminalHandler(&buf, slog.LevelInfo, false)).
		With("service", "generation").
		WithGroup("batch")

	logger.Info("done", "succeeded", 2, slog.Group("timing", slog.Duration("took", 1500*time.Millisecond)))

	out := buf.String()
	for _, want := range []string{"service=generation", "batch.succeeded=2", "batch.timing.took=1.5s"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestFormatAttrValue(t *testing.T) {
	tests := []struct {
		value slog.Value
		want  string
	}{
		{slog.StringValue("plain"), "plain"},
		{slog.StringValue("has space"), `"has space"`},
		{slog.StringValue(""), `""`},
		{slog.StringValue("a=b"), `"a=b"`},
		{slog.IntValue(42), "42"},
		{slog.BoolValue(true), "true"},
	}
	for _, tt := range tests {
		if got := formatAttrValue(tt.value); got != tt.want {
			t.Errorf("formatAttrValue(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}
