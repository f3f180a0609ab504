package commands

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-command/dispatcher"

	site "github.com/goliatone/go-site"
	"github.com/goliatone/go-site/internal/checklist"
	checklistcmd "github.com/goliatone/go-site/internal/commands/checklist"
	sitecmd "github.com/goliatone/go-site/internal/commands/site"
)

func newModule(t *testing.T) *site.Module {
	t.Helper()
	root := t.TempDir()
	cfg := site.DefaultConfig()
	cfg.Markdown.ContentDir = filepath.Join(root, "content")
	cfg.Generator.TemplatesDir = filepath.Join(root, "layouts")
	cfg.Generator.OutputDir = filepath.Join(root, "dist")
	cfg.Checklist.Root = filepath.Join(root, "checklists")
	cfg.Logging.Provider = "noop"

	module, err := site.New(cfg, site.WithChecklistFS(fstest.MapFS{
		"ops.json": {Data: []byte(`{"title": "Ops", "items": [{"id": "backup", "item": "Backups verified"}]}`)},
	}))
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	return module
}

func TestRegisterModuleCommandsBuildsHandlers(t *testing.T) {
	registry := &recordingRegistry{}
	dispatch := &recordingDispatcher{}

	result, err := RegisterModuleCommands(newModule(t), RegistrationOptions{
		Registry:   registry,
		Dispatcher: dispatch,
	})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}

	if len(result.Handlers) != 5 {
		t.Fatalf("expected five handlers, got %d", len(result.Handlers))
	}
	if len(registry.handlers) != len(result.Handlers) {
		t.Fatalf("expected registry to record all handlers, got %d of %d", len(registry.handlers), len(result.Handlers))
	}
	if len(result.Subscriptions) != len(result.Handlers) {
		t.Fatalf("expected one subscription per handler, got %d", len(result.Subscriptions))
	}
	if result.Site == nil || result.Checklist == nil {
		t.Fatal("expected typed handler sets")
	}

	result.Close()
	if dispatch.unsubscribed != 5 {
		t.Fatalf("expected close to unsubscribe all, got %d", dispatch.unsubscribed)
	}
}

func TestRegisterModuleCommandsWithoutRegistrars(t *testing.T) {
	result, err := RegisterModuleCommands(newModule(t), RegistrationOptions{})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}
	if len(result.Subscriptions) != 0 {
		t.Fatalf("expected no subscriptions without dispatcher, got %d", len(result.Subscriptions))
	}
}

func TestRegisterModuleCommandsJoinsRegistryErrors(t *testing.T) {
	result, err := RegisterModuleCommands(newModule(t), RegistrationOptions{
		Registry: failingRegistry{},
	})
	if err == nil {
		t.Fatal("expected registry error")
	}
	if len(result.Handlers) == 0 {
		t.Fatal("handlers should still be built")
	}
}

func TestGoCommandDispatcherRoutesMessages(t *testing.T) {
	result, err := RegisterModuleCommands(newModule(t), RegistrationOptions{
		Dispatcher: GoCommandDispatcher{},
	})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}
	t.Cleanup(result.Close)

	if err := dispatcher.Dispatch(context.Background(), sitecmd.CleanSiteCommand{}); err == nil {
		t.Fatal("expected disabled generator error")
	}

	var exported *checklist.ExportResult
	err = dispatcher.Dispatch(context.Background(), checklistcmd.ExportChecklistCommand{
		File: "ops.json",
		Answers: checklist.Answers{
			Client:   "Acme",
			Reviewer: "Jo",
			Date:     "2024-02-02",
			Items:    map[string]checklist.Answer{"backup": {Status: checklist.StatusCompliant}},
		},
		Format:         "json",
		DryRun:         true,
		ResultCallback: func(r *checklist.ExportResult) { exported = r },
	})
	if err != nil {
		t.Fatalf("dispatch export: %v", err)
	}
	if exported == nil || exported.Bytes == 0 {
		t.Fatalf("expected dry run export bytes, got %+v", exported)
	}
}

func TestGoCommandDispatcherRejectsUnknownHandler(t *testing.T) {
	if _, err := (GoCommandDispatcher{}).RegisterCommand(struct{}{}); err == nil {
		t.Fatal("expected unsupported handler error")
	}
}

type recordingRegistry struct {
	handlers []any
}

func (r *recordingRegistry) RegisterCommand(handler any) error {
	r.handlers = append(r.handlers, handler)
	return nil
}

type failingRegistry struct{}

func (failingRegistry) RegisterCommand(any) error {
	return errors.New("registry closed")
}

type recordingDispatcher struct {
	handlers     []any
	unsubscribed int
}

func (d *recordingDispatcher) RegisterCommand(handler any) (CommandSubscription, error) {
	d.handlers = append(d.handlers, handler)
	return subscriptionFunc(func() { d.unsubscribed++ }), nil
}

type subscriptionFunc func()

func (f subscriptionFunc) Unsubscribe() { f() }
