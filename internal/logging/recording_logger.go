package logging

import (
	"fmt"
	"strings"
	"sync"
)

// RecordingLogger keeps every message in memory, verbose ones included.
type RecordingLogger struct {
	mu    sync.Mutex
	lines []string
}

// NewRecordingLogger creates an empty RecordingLogger.
func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{}
}

func (l *RecordingLogger) add(level, format string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, level+fmt.Sprintf(format, args...))
}

func (l *RecordingLogger) Verbose(format string, args ...interface{}) {
	l.add("VERBOSE ", format, args)
}
func (l *RecordingLogger) Info(format string, args ...interface{})  { l.add("INFO ", format, args) }
func (l *RecordingLogger) Error(format string, args ...interface{}) { l.add("ERROR ", format, args) }

// Lines returns a copy of the recorded lines, each prefixed with its level.
func (l *RecordingLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

// Contains reports whether any recorded line contains s.
func (l *RecordingLogger) Contains(s string) bool {
	for _, line := range l.Lines() {
		if strings.Contains(line, s) {
			return true
		}
	}
	return false
}
