package logging

import (
	"context"
	"testing"

	"github.com/goliatone/go-site/pkg/interfaces"
)

type recordingLogger struct {
	fields []map[string]any
}

func (r *recordingLogger) Trace(string, ...any) {}
func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Info(string, ...any)  {}
func (r *recordingLogger) Warn(string, ...any)  {}
func (r *recordingLogger) Error(string, ...any) {}
func (r *recordingLogger) Fatal(string, ...any) {}

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	r.fields = append(r.fields, copied)
	return r
}

func (r *recordingLogger) WithContext(context.Context) interfaces.Logger {
	return r
}

type stubProvider struct {
	requested []string
	logger    interfaces.Logger
}

func (s *stubProvider) GetLogger(name string) interfaces.Logger {
	s.requested = append(s.requested, name)
	return s.logger
}

func TestModuleLoggerFallsBackToNoOp(t *testing.T) {
	logger := ModuleLogger(nil, "site.test")
	if _, ok := logger.(noopLogger); !ok {
		t.Fatalf("expected noopLogger fallback, got %T", logger)
	}
	logger.WithContext(context.Background()).Debug("noop")
}

func TestModuleLoggerUsesProviderAndAnnotatesFields(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	ContactLogger(provider).Info("with provider")

	if len(provider.requested) != 1 || provider.requested[0] != contactModule {
		t.Fatalf("expected module %s, got %v", contactModule, provider.requested)
	}
	if len(rec.fields) != 1 || rec.fields[0]["module"] != contactModule {
		t.Fatalf("expected module field %s, got %v", contactModule, rec.fields)
	}
}

func TestModuleLoggerDefaultsToRootModule(t *testing.T) {
	provider := &stubProvider{logger: &recordingLogger{}}
	ModuleLogger(provider, "")
	if len(provider.requested) != 1 || provider.requested[0] != rootModule {
		t.Fatalf("expected root module, got %v", provider.requested)
	}
}

func TestWithPageContextSkipsEmptyValues(t *testing.T) {
	rec := &recordingLogger{}
	WithPageContext(rec, " content/about.md ", "")

	if len(rec.fields) != 1 {
		t.Fatalf("expected a single WithFields call, got %d", len(rec.fields))
	}
	if rec.fields[0][fieldPagePath] != "content/about.md" {
		t.Fatalf("expected trimmed path, got %v", rec.fields[0][fieldPagePath])
	}
	if _, ok := rec.fields[0][fieldPageRoute]; ok {
		t.Fatalf("empty route must not be attached: %v", rec.fields[0])
	}
}

func TestWithRequestIDIgnoresBlank(t *testing.T) {
	rec := &recordingLogger{}
	if got := WithRequestID(rec, "  "); got != interfaces.Logger(rec) {
		t.Fatalf("expected logger to be returned unchanged")
	}
	if len(rec.fields) != 0 {
		t.Fatalf("expected no fields, got %v", rec.fields)
	}
}
