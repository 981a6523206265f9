package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func reset() {
	SetVerbose(false)
	SetOutput(os.Stderr)
}

func TestDebug_OnlyWhenVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	SetVerbose(false)
	Debug("hidden %d", 1)
	if buf.Len() != 0 {
		t.Errorf("expected no output when not verbose, got %q", buf.String())
	}

	SetVerbose(true)
	Debug("visible %d", 2)
	if !strings.Contains(buf.String(), "[DEBUG] visible 2") {
		t.Errorf("expected debug output, got %q", buf.String())
	}
}

func TestInfoWarn_AlwaysPrint(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Info("info line")
	Warn("warn line")

	out := buf.String()
	if !strings.Contains(out, "[INFO] info line") {
		t.Errorf("missing info output: %q", out)
	}
	if !strings.Contains(out, "[WARN] warn line") {
		t.Errorf("missing warn output: %q", out)
	}
}
