package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func newCaptureLogger(sanitize bool) (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, nil)
	return slog.New(NewSanitizingHandler(handler, sanitize)), &buf
}

func logged(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("parse log output %q: %v", buf.String(), err)
	}
	return entry
}

func TestSanitize_RedactsPassword(t *testing.T) {
	logger, buf := newCaptureLogger(true)

	logger.Info("connecting", slog.String("host", "ftp.box.com"), slog.String("password", "hunter2"))

	entry := logged(t, buf)
	if entry["password"] != "[REDACTED]" {
		t.Errorf("password: got %v, want [REDACTED]", entry["password"])
	}
	if entry["host"] != "ftp.box.com" {
		t.Errorf("host should pass through, got %v", entry["host"])
	}
}

func TestSanitize_KeyMatchIsSubstringAndCaseInsensitive(t *testing.T) {
	logger, buf := newCaptureLogger(true)

	logger.Info("auth", slog.String("FTP_Password", "hunter2"), slog.String("api_token", "abc"))

	entry := logged(t, buf)
	if entry["FTP_Password"] != "[REDACTED]" {
		t.Errorf("FTP_Password: got %v", entry["FTP_Password"])
	}
	if entry["api_token"] != "[REDACTED]" {
		t.Errorf("api_token: got %v", entry["api_token"])
	}
}

func TestSanitize_GroupAttributes(t *testing.T) {
	logger, buf := newCaptureLogger(true)

	logger.Info("session",
		slog.Group("remote",
			slog.String("host", "ftp.box.com"),
			slog.String("passwd", "hunter2"),
		),
	)

	entry := logged(t, buf)
	remote, ok := entry["remote"].(map[string]any)
	if !ok {
		t.Fatalf("expected remote group, got %v", entry["remote"])
	}
	if remote["passwd"] != "[REDACTED]" {
		t.Errorf("group passwd: got %v", remote["passwd"])
	}
	if remote["host"] != "ftp.box.com" {
		t.Errorf("group host should pass through, got %v", remote["host"])
	}
}

func TestSanitize_Disabled(t *testing.T) {
	logger, buf := newCaptureLogger(false)

	logger.Info("connecting", slog.String("password", "hunter2"))

	entry := logged(t, buf)
	if entry["password"] != "hunter2" {
		t.Errorf("sanitize off should pass through, got %v", entry["password"])
	}
}

func TestSanitize_WithAttrs(t *testing.T) {
	logger, buf := newCaptureLogger(true)

	logger.With(slog.String("password", "hunter2")).Info("op")

	entry := logged(t, buf)
	if entry["password"] != "[REDACTED]" {
		t.Errorf("With attrs: got %v", entry["password"])
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "info", want: slog.LevelInfo},
		{in: "WARN", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "bogus", want: slog.LevelInfo},
		{in: "", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestEnabled_DelegatesToInner(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})
	h := NewSanitizingHandler(inner, true)

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled at warn level")
	}
}
