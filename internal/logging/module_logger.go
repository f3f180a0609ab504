package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-site/pkg/interfaces"
)

const (
	rootModule      = "site"
	markdownModule  = "site.markdown"
	generatorModule = "site.generator"
	contactModule   = "site.contact"
	checklistModule = "site.checklist"
	commandsModule  = "site.commands"
)

const (
	fieldPagePath  = "page_path"
	fieldPageRoute = "route"
	fieldRequestID = "request_id"
)

// ModuleLogger asks provider for the named logger and tags it with a module
// field. A nil provider yields the no-op logger.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}
	var logger interfaces.Logger
	if provider != nil {
		logger = provider.GetLogger(module)
	}
	if logger == nil {
		logger = NoOp()
	}
	return WithFields(logger, map[string]any{"module": module})
}

func MarkdownLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, markdownModule)
}

func GeneratorLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, generatorModule)
}

func ContactLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, contactModule)
}

func ChecklistLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, checklistModule)
}

func CommandsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, commandsModule)
}

// WithPageContext tags logger with a page source path and route, skipping
// blank values.
func WithPageContext(logger interfaces.Logger, path, route string) interfaces.Logger {
	fields := make(map[string]any, 2)
	for key, value := range map[string]string{fieldPagePath: path, fieldPageRoute: route} {
		if value = strings.TrimSpace(value); value != "" {
			fields[key] = value
		}
	}
	return WithFields(logger, fields)
}

// WithRequestID tags logger with a request identifier.
func WithRequestID(logger interfaces.Logger, id string) interfaces.Logger {
	if strings.TrimSpace(id) == "" {
		return logger
	}
	return WithFields(logger, map[string]any{fieldRequestID: id})
}

// NoOp discards everything.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var (
	_ interfaces.Logger       = noopLogger{}
	_ interfaces.FieldsLogger = noopLogger{}
)

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
