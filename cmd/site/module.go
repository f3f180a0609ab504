package main

import (
	"context"

	command "github.com/goliatone/go-command"

	site "github.com/goliatone/go-site"
	"github.com/goliatone/go-site/commands"
	checklistcmd "github.com/goliatone/go-site/internal/commands/checklist"
	sitecmd "github.com/goliatone/go-site/internal/commands/site"
	"github.com/goliatone/go-site/internal/logging"
	"github.com/goliatone/go-site/pkg/interfaces"
)

type handlerSet struct {
	build   command.Commander[sitecmd.BuildSiteCommand]
	page    command.Commander[sitecmd.BuildPageCommand]
	sitemap command.Commander[sitecmd.BuildSitemapCommand]
	clean   command.Commander[sitecmd.CleanSiteCommand]
	export  command.Commander[checklistcmd.ExportChecklistCommand]
}

// moduleResources groups the runtime pieces used by CLI commands.
type moduleResources struct {
	module   *site.Module
	handlers handlerSet
	logger   interfaces.Logger
	close    func()
}

func (r *moduleResources) Close() {
	if r != nil && r.close != nil {
		r.close()
	}
}

func (r *moduleResources) log() interfaces.Logger {
	if r == nil || r.logger == nil {
		return logging.NoOp()
	}
	return r.logger
}

var moduleBuilder = buildModule

func buildModule(cfg site.Config) (*moduleResources, error) {
	module, err := site.New(cfg)
	if err != nil {
		return nil, err
	}
	result, err := commands.RegisterModuleCommands(module, commands.RegistrationOptions{})
	if err != nil {
		return nil, err
	}

	resources := &moduleResources{
		module: module,
		logger: logging.ModuleLogger(module.LoggerProvider(), "cli"),
		close:  result.Close,
	}
	if set := result.Site; set != nil {
		resources.handlers.build = set.Build
		resources.handlers.page = set.Page
		resources.handlers.sitemap = set.Sitemap
		resources.handlers.clean = set.Clean
	}
	if result.Checklist != nil {
		resources.handlers.export = result.Checklist
	}
	return resources, nil
}

func execute[T any](ctx context.Context, handler command.Commander[T], name string, msg T) error {
	if handler == nil {
		return &handlerMissingError{name: name}
	}
	return handler.Execute(ctx, msg)
}

type handlerMissingError struct {
	name string
}

func (e *handlerMissingError) Error() string {
	return e.name + " handler not configured"
}
