package uphysics

import (
	"fmt"
	"log"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// DefaultLogger writes debug and info lines to stdout and warnings and errors
// to stderr through the standard log package.
type DefaultLogger struct {
	mu     sync.Mutex
	debug  bool
	prefix string
	out    *log.Logger
	err    *log.Logger
}

func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	flags := log.LstdFlags | log.Lmicroseconds
	return &DefaultLogger{
		debug:  debug,
		prefix: prefix,
		out:    log.New(os.Stdout, "", flags),
		err:    log.New(os.Stderr, "", flags),
	}
}

func (l *DefaultLogger) DebugEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debug
}

func (l *DefaultLogger) SetDebug(enabled bool) {
	l.mu.Lock()
	l.debug = enabled
	l.mu.Unlock()
}

func (l *DefaultLogger) line(level string, format string, args ...any) string {
	msg := fmt.Sprintf(format, args...)
	if l.prefix != "" {
		return fmt.Sprintf("[%s] %s: %s", l.prefix, level, msg)
	}
	return fmt.Sprintf("%s: %s", level, msg)
}

func (l *DefaultLogger) Debugf(format string, args ...any) {
	if !l.DebugEnabled() {
		return
	}
	l.out.Print(l.line("DEBUG", format, args...))
}

func (l *DefaultLogger) Infof(format string, args ...any) {
	l.out.Print(l.line("INFO", format, args...))
}

func (l *DefaultLogger) Warnf(format string, args ...any) {
	l.err.Print(l.line("WARN", format, args...))
}

func (l *DefaultLogger) Errorf(format string, args ...any) {
	l.err.Print(l.line("ERROR", format, args...))
}

type nopLogger struct{}

func NewNopLogger() Logger                           { return &nopLogger{} }
func (*nopLogger) DebugEnabled() bool                { return false }
func (*nopLogger) SetDebug(enabled bool)             {}
func (*nopLogger) Debugf(format string, args ...any) {}
func (*nopLogger) Infof(format string, args ...any)  {}
func (*nopLogger) Warnf(format string, args ...any)  {}
func (*nopLogger) Errorf(format string, args ...any) {}

// zapLogger forwards to a zap SugaredLogger. Debug output needs both the
// local switch and a core that accepts debug entries.
type zapLogger struct {
	mu    sync.Mutex
	debug bool
	s     *zap.SugaredLogger
}

// NewZapLogger adapts s to Logger. Debug starts enabled when s's core is
// enabled at debug level.
func NewZapLogger(s *zap.SugaredLogger) Logger {
	if s == nil {
		return NewNopLogger()
	}
	return &zapLogger{
		debug: s.Desugar().Core().Enabled(zapcore.DebugLevel),
		s:     s,
	}
}

func (l *zapLogger) DebugEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debug
}

func (l *zapLogger) SetDebug(enabled bool) {
	l.mu.Lock()
	l.debug = enabled
	l.mu.Unlock()
}

func (l *zapLogger) Debugf(format string, args ...any) {
	if !l.DebugEnabled() {
		return
	}
	l.s.Debugf(format, args...)
}

func (l *zapLogger) Infof(format string, args ...any)  { l.s.Infof(format, args...) }
func (l *zapLogger) Warnf(format string, args ...any)  { l.s.Warnf(format, args...) }
func (l *zapLogger) Errorf(format string, args ...any) { l.s.Errorf(format, args...) }
