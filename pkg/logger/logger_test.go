package logger

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStandardLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	l := NewStandardLogger(log.New(&buf, "", 0), Debug, "[test]")

	l.Info("delivery complete", "channel", "email", "attempts", 2)

	out := buf.String()
	assert.Contains(t, out, "[test] [INFO] delivery complete")
	assert.Contains(t, out, "channel=email")
	assert.Contains(t, out, "attempts=2")
}

func TestStandardLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewStandardLogger(log.New(&buf, "", 0), Warn, "")

	l.Debug("hidden")
	l.Info("hidden too")
	assert.Empty(t, buf.String())

	l.Warn("shown")
	assert.Contains(t, buf.String(), "[WARN] shown")
}

func TestStandardLogger_LogMode(t *testing.T) {
	var buf bytes.Buffer
	base := NewStandardLogger(log.New(&buf, "", 0), Silent, "")

	base.Error("dropped")
	assert.Empty(t, buf.String())

	verbose := base.LogMode(Debug)
	verbose.Debug("kept")
	assert.Contains(t, buf.String(), "[DEBUG] kept")

	// The original logger keeps its level.
	buf.Reset()
	base.Error("still dropped")
	assert.Empty(t, buf.String())
}
