package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSetLevel(t *testing.T) {
	defer Log.SetLevel(logrus.InfoLevel)

	if err := SetLevel("debug"); err != nil {
		t.Fatalf("SetLevel(debug) error = %v", err)
	}
	if Log.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v, want debug", Log.GetLevel())
	}

	if err := SetLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
	if Log.GetLevel() != logrus.DebugLevel {
		t.Errorf("unknown level must not change the current level, got %v", Log.GetLevel())
	}
}

func TestNewWritesFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	l.WithField("file", "alice/1.jpg").Warn("no faces detected")

	out := buf.String()
	if !strings.Contains(out, "no faces detected") || !strings.Contains(out, "file=alice/1.jpg") {
		t.Errorf("unexpected log output: %q", out)
	}
}
