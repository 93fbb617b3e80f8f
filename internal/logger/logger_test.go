package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewLevels(t *testing.T) {
	if got := New(false).GetLevel(); got != zerolog.InfoLevel {
		t.Errorf("New(false) level = %s, want info", got)
	}
	if got := New(true).GetLevel(); got != zerolog.DebugLevel {
		t.Errorf("New(true) level = %s, want debug", got)
	}
}

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	log.Info().Str("file", "receipt.jpg").Msg("evaluating")

	output := buf.String()
	if !strings.Contains(output, "evaluating") {
		t.Errorf("expected output to contain message, got: %s", output)
	}
	if !strings.Contains(output, "receipt.jpg") {
		t.Errorf("expected output to contain file field, got: %s", output)
	}
}

func TestContextRoundTrip(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)
	ctx := WithContext(context.Background(), log)

	ctxLog := FromContext(ctx)
	ctxLog.Info().Msg("via context")

	if !strings.Contains(buf.String(), "via context") {
		t.Errorf("expected log output from context logger, got: %s", buf.String())
	}
}

func TestFromContextDefault(t *testing.T) {
	log := FromContext(context.Background())
	if log.GetLevel() == zerolog.Disabled {
		t.Error("expected default logger to be enabled")
	}
}
