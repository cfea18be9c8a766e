package logger

import (
	"bytes"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

type bufferCloser struct {
	mtx    sync.Mutex
	buf    bytes.Buffer
	closed bool
}

func (b *bufferCloser) Write(p []byte) (int, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return b.buf.Write(p)
}

func (b *bufferCloser) Close() error {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.closed = true
	return nil
}

func (b *bufferCloser) lines() []string {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	return strings.Split(strings.TrimSuffix(b.buf.String(), "\n"), "\n")
}

func TestBackendLevels(t *testing.T) {
	backend := NewBackendWithFlags(0)
	all := &bufferCloser{}
	warnings := &bufferCloser{}
	if err := backend.AddLogWriter(all, LevelTrace); err != nil {
		t.Fatalf("AddLogWriter: %v", err)
	}
	if err := backend.AddLogWriter(warnings, LevelWarn); err != nil {
		t.Fatalf("AddLogWriter: %v", err)
	}
	if err := backend.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := backend.AddLogWriter(&bufferCloser{}, LevelTrace); err == nil {
		t.Errorf("AddLogWriter on a running backend: expected an error")
	}

	log := backend.Logger("TEST")
	log.Infof("dropped while off")
	log.SetLevel(LevelDebug)
	log.Tracef("dropped below debug")
	log.Debugf("debug %d", 1)
	log.Warnf("warn %d", 2)
	log.Criticalf("critical %d", 3)
	backend.Close()

	if !all.closed || !warnings.closed {
		t.Errorf("Close: writers were not closed")
	}
	if backend.IsRunning() {
		t.Errorf("IsRunning after Close: got true")
	}

	wantAll := []string{"[DBG] TEST: debug 1", "[WRN] TEST: warn 2", "[CRT] TEST: critical 3"}
	checkLines(t, "all", all.lines(), wantAll)
	checkLines(t, "warnings", warnings.lines(), wantAll[1:])

	// Entries written after Close are dropped.
	log.Criticalf("after close")
}

func checkLines(t *testing.T, name string, got, want []string) {
	if len(got) != len(want) {
		t.Errorf("%s: got %d lines %q, want %d", name, len(got), got, len(want))
		return
	}
	for i := range want {
		if !strings.HasSuffix(got[i], want[i]) {
			t.Errorf("%s line %d: got %q, want suffix %q", name, i, got[i], want[i])
		}
	}
}

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		in    string
		level Level
		ok    bool
	}{
		{"trace", LevelTrace, true},
		{"DEBUG", LevelDebug, true},
		{"info", LevelInfo, true},
		{"warn", LevelWarn, true},
		{"error", LevelError, true},
		{"critical", LevelCritical, true},
		{"off", LevelOff, true},
		{"verbose", LevelInfo, false},
	}
	for _, test := range tests {
		level, ok := LevelFromString(test.in)
		if ok != test.ok || (ok && level != test.level) {
			t.Errorf("LevelFromString(%q): got %s %t, want %s %t", test.in, level, ok, test.level, test.ok)
		}
	}
}

func TestSetLogLevels(t *testing.T) {
	defer func() {
		_ = SetLogLevels("off")
	}()
	if err := SetLogLevels("debug"); err != nil {
		t.Fatalf("SetLogLevels: %v", err)
	}
	for _, tag := range SupportedSubsystems() {
		log, ok := Get(tag)
		if !ok {
			t.Errorf("Get(%s): not found", tag)
			continue
		}
		if log.Level() != LevelDebug {
			t.Errorf("%s level: got %s, want %s", tag, log.Level(), LevelDebug)
		}
	}
	if err := SetLogLevels("loud"); err == nil {
		t.Errorf("SetLogLevels(loud): expected an error")
	}
	if err := SetLogLevel("NOPE", "info"); err == nil {
		t.Errorf("SetLogLevel(NOPE): expected an error")
	}
}

func TestAddLogFile(t *testing.T) {
	backend := NewBackendWithFlags(LogFlagShortFile)
	logFile := filepath.Join(t.TempDir(), "nested", "test.log")
	if err := backend.AddLogFile(logFile, LevelInfo); err != nil {
		t.Fatalf("AddLogFile: %v", err)
	}
	if err := backend.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := backend.Run(); err == nil {
		t.Errorf("second Run: expected an error")
	}
	backend.Close()
}
