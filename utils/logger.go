package utils

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelError
)

var levelTags = map[level]string{
	levelDebug: "\033[36mDEBUG\033[0m",
	levelInfo:  "\033[32mINFO\033[0m ",
	levelWarn:  "\033[33mWARN\033[0m ",
	levelError: "\033[31mERROR\033[0m",
}

// Logger provides leveled, timestamped logging throughout the application.
// Debug output is suppressed unless the DEBUG env var is set.
type Logger struct {
	mu      sync.Mutex
	out     io.Writer
	errOut  io.Writer
	verbose bool
}

// NewLogger creates a Logger writing to stdout/stderr.
func NewLogger() *Logger {
	return &Logger{
		out:     os.Stdout,
		errOut:  os.Stderr,
		verbose: os.Getenv("DEBUG") != "",
	}
}

func (l *Logger) log(lv level, format string, args ...any) {
	w := l.out
	if lv == levelError {
		w = l.errOut
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(w, "[%s] %s %s\n",
		time.Now().Format("2006-01-02 15:04:05"),
		levelTags[lv],
		fmt.Sprintf(format, args...))
}

func (l *Logger) Info(format string, args ...any)  { l.log(levelInfo, format, args...) }
func (l *Logger) Warn(format string, args ...any)  { l.log(levelWarn, format, args...) }
func (l *Logger) Error(format string, args ...any) { l.log(levelError, format, args...) }

func (l *Logger) Debug(format string, args ...any) {
	if !l.verbose {
		return
	}
	l.log(levelDebug, format, args...)
}
