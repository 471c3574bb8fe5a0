// Package log provides structured event logging.
// Events are written as JSON lines to a size-rotated file; the terminal is
// owned by the TUI, so nothing is written to stdout or stderr.
package log

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Event name constants.
const (
	EventStarted             = "client_started"
	EventLoginSucceeded      = "login_succeeded"
	EventLoginFailed         = "login_failed"
	EventRegisterSucceeded   = "register_succeeded"
	EventRegisterFailed      = "register_failed"
	EventLoggedOut           = "logged_out"
	EventSessionExpired      = "session_expired"
	EventDocumentsLoaded     = "documents_loaded"
	EventDocumentsLoadFailed = "documents_load_failed"
	EventProfileLoadFailed   = "profile_load_failed"
	EventUploadSucceeded     = "upload_succeeded"
	EventUploadRejected      = "upload_rejected"
	EventUploadFailed        = "upload_failed"
	EventHistoryLoaded       = "history_loaded"
	EventHistoryLoadFailed   = "history_load_failed"
	EventQuerySucceeded      = "query_succeeded"
	EventQueryFailed         = "query_failed"
	EventViewerFailed        = "viewer_failed"
)

// Logger writes structured events through zap.
type Logger struct {
	z *zap.Logger
}

// NewLogger creates a Logger that appends to path, rotating at 10 MB.
// Creates the parent directory if it does not already exist.
func NewLogger(path, level string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	lvl := zap.InfoLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("parse log level %q: %w", level, err)
		}
	}

	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     30, // days
		Compress:   true,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.MessageKey = "event"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(rotator),
		lvl,
	)

	return &Logger{z: zap.New(core)}, nil
}

// New wraps an existing zap logger. Used by tests with an observer core.
func New(z *zap.Logger) *Logger {
	return &Logger{z: z}
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{z: zap.NewNop()}
}

// Event records a successful occurrence.
func (l *Logger) Event(event string, fields ...zap.Field) {
	if l == nil {
		return
	}
	l.z.Info(event, fields...)
}

// Failure records a failed operation with its error.
func (l *Logger) Failure(event string, err error, fields ...zap.Field) {
	if l == nil {
		return
	}
	l.z.Warn(event, append(fields, zap.Error(err))...)
}

// Debug records diagnostic detail.
func (l *Logger) Debug(event string, fields ...zap.Field) {
	if l == nil {
		return
	}
	l.z.Debug(event, fields...)
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	if l == nil {
		return nil
	}
	return l.z.Sync()
}
