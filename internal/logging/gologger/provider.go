package gologger

import (
	"context"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	glog "github.com/goliatone/go-logger/glog"
	"golang.org/x/term"

	"github.com/goliatone/go-site/internal/logging"
	"github.com/goliatone/go-site/pkg/interfaces"
)

// Config mirrors the logging section of the site config.
type Config struct {
	Level string
	// Format is json, console, pretty or auto. Auto means pretty on a
	// terminal and json everywhere else.
	Format    string
	AddSource bool
	Focus     []string
}

// Provider hands out named go-logger children.
type Provider struct {
	root *glog.BaseLogger
}

var _ interfaces.LoggerProvider = (*Provider)(nil)

var levels = map[string]string{
	"trace":   glog.Trace,
	"debug":   glog.Debug,
	"info":    glog.Info,
	"warn":    glog.Warn,
	"warning": glog.Warn,
	"error":   glog.Error,
	"fatal":   glog.Fatal,
}

var formats = map[string]glog.Option{
	"json":    glog.WithLoggerTypeJSON(),
	"console": glog.WithLoggerTypeConsole(),
	"pretty":  glog.WithLoggerTypePretty(),
}

// isTerminal is swapped in tests.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// NewProvider builds the root go-logger. Unknown levels keep the library
// default; unknown formats are an error.
func NewProvider(cfg Config) (*Provider, error) {
	format, err := resolveFormat(cfg.Format)
	if err != nil {
		return nil, err
	}

	options := []glog.Option{formats[format]}
	if level, ok := levels[strings.ToLower(strings.TrimSpace(cfg.Level))]; ok {
		options = append(options, glog.WithLevel(level))
	}
	if cfg.AddSource {
		options = append(options, glog.WithAddSource(true))
	}

	root := glog.NewLogger(options...)
	var focus []string
	for _, name := range cfg.Focus {
		if name = strings.TrimSpace(name); name != "" {
			focus = append(focus, name)
		}
	}
	if len(focus) > 0 {
		root.Focus(focus...)
	}
	return &Provider{root: root}, nil
}

// GetLogger returns the child logger for a module name. An empty name yields
// the root logger.
func (p *Provider) GetLogger(name string) interfaces.Logger {
	if p == nil || p.root == nil {
		return logging.NoOp()
	}
	if name = strings.TrimSpace(name); name != "" {
		return wrap(p.root.GetLogger(name))
	}
	return wrap(p.root)
}

func resolveFormat(format string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(format))
	switch {
	case value == "":
		return "json", nil
	case value == "auto" && isTerminal():
		return "pretty", nil
	case value == "auto":
		return "json", nil
	}
	if _, ok := formats[value]; !ok {
		return "", fmt.Errorf("logging: unsupported go-logger format %q", format)
	}
	return value, nil
}

func wrap(inner glog.Logger) interfaces.Logger {
	if inner == nil {
		return logging.NoOp()
	}
	return &glogLogger{inner: inner}
}

// glogLogger narrows glog.Logger to the site logging interface.
type glogLogger struct {
	inner glog.Logger
}

var _ interfaces.FieldsLogger = (*glogLogger)(nil)

func (l *glogLogger) Trace(msg string, args ...any) { l.inner.Trace(msg, args...) }
func (l *glogLogger) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }
func (l *glogLogger) Info(msg string, args ...any)  { l.inner.Info(msg, args...) }
func (l *glogLogger) Warn(msg string, args ...any)  { l.inner.Warn(msg, args...) }
func (l *glogLogger) Error(msg string, args ...any) { l.inner.Error(msg, args...) }
func (l *glogLogger) Fatal(msg string, args ...any) { l.inner.Fatal(msg, args...) }

// WithFields clones fields before handing them to go-logger. Loggers without
// field support receive sorted key/value pairs through With.
func (l *glogLogger) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	cloned := maps.Clone(fields)
	switch inner := l.inner.(type) {
	case glog.FieldsLogger:
		return wrap(inner.WithFields(cloned))
	case interface{ With(...any) *glog.BaseLogger }:
		args := make([]any, 0, len(cloned)*2)
		for _, key := range slices.Sorted(maps.Keys(cloned)) {
			args = append(args, key, cloned[key])
		}
		return wrap(inner.With(args...))
	default:
		return l
	}
}

func (l *glogLogger) WithContext(ctx context.Context) interfaces.Logger {
	if ctx == nil {
		return l
	}
	return wrap(l.inner.WithContext(ctx))
}
