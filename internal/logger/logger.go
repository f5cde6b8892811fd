package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogFilePath is the default game log file, relative to the working directory (project root when run via go run ./cmd/game).
const LogFilePath = "logs/game.txt"

// maxLines bounds the in-memory history kept for the HUD.
const maxLines = 256

// Logger is a zap logger that also keeps the most recent entries in memory as
// "[timestamp] LEVEL message" lines, so overlays can show them without reading the file.
type Logger struct {
	zl *zap.Logger

	mu    sync.Mutex
	lines []string
}

// New returns a Logger writing JSON entries to path (LogFilePath when empty) and
// human-readable entries to stderr. The log directory is created if needed; when the
// file cannot be opened only stderr is used.
func New(path string) *Logger {
	if path == "" {
		path = LogFilePath
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), level),
	}
	_ = os.MkdirAll(filepath.Dir(path), 0755)
	if f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644); err == nil {
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(f), level))
	}
	return NewWithCore(zapcore.NewTee(cores...))
}

// NewWithCore wraps an existing core (e.g. zaptest/observer in tests).
func NewWithCore(core zapcore.Core) *Logger {
	l := &Logger{lines: make([]string, 0)}
	l.zl = zap.New(core, zap.Hooks(l.record))
	return l
}

// NewNop returns a Logger that discards output but still records Lines.
func NewNop() *Logger {
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	return NewWithCore(zapcore.NewCore(enc, zapcore.AddSync(io.Discard), zapcore.DebugLevel))
}

func (l *Logger) record(e zapcore.Entry) error {
	stamped := "[" + e.Time.Format(time.DateTime) + "] " + e.Level.CapitalString() + " " + e.Message
	l.mu.Lock()
	l.lines = append(l.lines, stamped)
	if len(l.lines) > maxLines {
		l.lines = l.lines[len(l.lines)-maxLines:]
	}
	l.mu.Unlock()
	return nil
}

// Zap returns the underlying structured logger.
func (l *Logger) Zap() *zap.Logger {
	return l.zl
}

// Log writes an info entry. Kept for plain status lines.
func (l *Logger) Log(line string) {
	l.zl.Info(line)
}

// Lines returns a copy of the stored lines, oldest first.
func (l *Logger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.zl.Sync()
}
