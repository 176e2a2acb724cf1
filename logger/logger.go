package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// FormatPretty is an alias of the console format.
const FormatPretty = "pretty"

// Logger is a zerolog.Logger that takes fields as maps, so call sites read
// log.Info("msg", logger.Fields(...)).
type Logger struct {
	zl zerolog.Logger
}

// Init installs a logger built from cfg as the global logger.
func Init(cfg Config) {
	cfg.ApplyDefaults()
	SetGlobalLogger(New(&cfg))
}

// New builds a logger writing to cfg.Output.
func New(cfg *Config) *Logger {
	var out io.Writer = os.Stdout
	switch strings.ToLower(cfg.Output) {
	case "stderr":
		out = os.Stderr
	case "discard":
		out = io.Discard
	}
	return NewWithWriter(cfg, out)
}

// NewWithWriter builds a logger writing to w. An unknown level means info.
func NewWithWriter(cfg *Config, w io.Writer) *Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if f := strings.ToLower(cfg.Format); f == "console" || f == FormatPretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05", NoColor: cfg.NoColor}
	}

	ctx := zerolog.New(w).Level(level).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	return &Logger{zl: ctx.Logger()}
}

// NewDefault is an info-level console logger on stdout.
func NewDefault() *Logger {
	return New(&Config{Level: "info", Format: "console", Output: "stdout", Timestamp: true})
}

type ctxKey struct{}

// ContextWithRequestID stores id for WithContext.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestIDFromContext returns the id stored by ContextWithRequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// WithContext adds the request id carried by ctx. Without one it returns l.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	id := RequestIDFromContext(ctx)
	if id == "" {
		return l
	}
	return &Logger{zl: l.zl.With().Str(FieldRequestID, id).Logger()}
}

func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{zl: l.zl.With().Str(FieldComponent, name).Logger()}
}

// WithFields attaches fields to every later entry.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	ctx := l.zl.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, plain(v))
	}
	return &Logger{zl: ctx.Logger()}
}

func (l *Logger) WithError(err error) *Logger {
	return &Logger{zl: l.zl.With().Err(err).Logger()}
}

func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	write(l.zl.Debug(), msg, fields)
}

func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	write(l.zl.Info(), msg, fields)
}

func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	write(l.zl.Warn(), msg, fields)
}

func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	write(l.zl.Error(), msg, fields)
}

// Fatal logs and exits the process.
func (l *Logger) Fatal(msg string, fields ...map[string]interface{}) {
	write(l.zl.Fatal(), msg, fields)
}

// plain renders errors as their message; zerolog would encode them as {}.
func plain(v interface{}) interface{} {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return v
}

func write(e *zerolog.Event, msg string, fields []map[string]interface{}) {
	for _, m := range fields {
		for k, v := range m {
			e.Interface(k, plain(v))
		}
	}
	e.Msg(msg)
}

var (
	globalMu sync.RWMutex
	global   *Logger
)

// SetGlobalLogger replaces the global logger and drops cached component loggers.
func SetGlobalLogger(l *Logger) {
	globalMu.Lock()
	global = l
	globalMu.Unlock()
	named.Clear()
}

// GetGlobalLogger returns the global logger, installing NewDefault on first use.
func GetGlobalLogger() *Logger {
	globalMu.RLock()
	l := global
	globalMu.RUnlock()
	if l != nil {
		return l
	}
	globalMu.Lock()
	defer globalMu.Unlock()
	if global == nil {
		global = NewDefault()
	}
	return global
}

func Info(msg string, fields ...map[string]interface{}) { GetGlobalLogger().Info(msg, fields...) }
func Warn(msg string, fields ...map[string]interface{}) { GetGlobalLogger().Warn(msg, fields...) }
