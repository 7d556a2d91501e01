package logging

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func newTestLogger(buf *bytes.Buffer, level Level) Logger {
	return &logfmtLogger{
		out:   buf,
		level: level,
		mu:    &sync.Mutex{},
		now: func() time.Time {
			return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		},
	}
}

func TestLoggerWritesLogfmt(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, Info).With(F("component", "poller"))
	logger.Info("fetch done", F("count", 3), F("text", "two words"), Err(errors.New("boom")))

	got := strings.TrimSpace(buf.String())
	want := `ts=2025-01-02T03:04:05Z level=info msg="fetch done" component=poller count=3 text="two words" err=boom`
	if got != want {
		t.Fatalf("unexpected line:\n got: %s\nwant: %s", got, want)
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf, Warn)
	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Count(buf.String(), "\n") != 1 {
		t.Fatalf("expected one line, got %q", buf.String())
	}
	if logger.Enabled(Info) || !logger.Enabled(Error) {
		t.Fatalf("unexpected Enabled results")
	}
}

func TestNopDiscardsErrors(t *testing.T) {
	if Nop().Enabled(Error) {
		t.Fatalf("nop logger should not be enabled for errors")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   Debug,
		" WARN ":  Warn,
		"warning": Warn,
		"error":   Error,
		"":        Info,
		"verbose": Info,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestOpenFileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ui.log")
	logger, closer, err := OpenFile(path, Debug)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer closer.Close()
	logger.Debug("hello")
}

func TestNewRequestIDIsUnique(t *testing.T) {
	a, b := NewRequestID(), NewRequestID()
	if a == "" || a == b {
		t.Fatalf("expected unique ids, got %q %q", a, b)
	}
}
