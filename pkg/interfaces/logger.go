package interfaces

import "context"

// Logger is the leveled, key/value logger every site component writes to.
// go-logger loggers satisfy it through the gologger adapter.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// LoggerProvider returns the logger for a module name such as "generator"
// or "contact".
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// FieldsLogger is implemented by loggers that can bind fields to every
// subsequent entry.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}
