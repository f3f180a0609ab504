// Package sitecmd exposes generator operations as go-command handlers.
package sitecmd

import (
	"context"
	"errors"

	"github.com/goliatone/go-site/internal/commands"
	"github.com/goliatone/go-site/internal/generator"
	"github.com/goliatone/go-site/internal/logging"
	"github.com/goliatone/go-site/pkg/interfaces"
)

// BuildSiteHandler runs full builds.
type BuildSiteHandler struct {
	inner *commands.Handler[BuildSiteCommand]
}

// NewBuildSiteHandler wires a build handler to service.
func NewBuildSiteHandler(service generator.Service, logger interfaces.Logger, opts ...commands.HandlerOption[BuildSiteCommand]) *BuildSiteHandler {
	exec := func(ctx context.Context, msg BuildSiteCommand) error {
		if service == nil {
			return generator.ErrServiceDisabled
		}
		result, err := service.Build(ctx, generator.BuildOptions{
			DryRun:        msg.DryRun,
			IncludeDrafts: msg.IncludeDrafts,
		})
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Result:   result,
			Metadata: map[string]any{"operation": "build"},
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[BuildSiteCommand]{
		commands.WithLogger[BuildSiteCommand](ensureLogger(logger)),
		commands.WithOperation[BuildSiteCommand]("site.build"),
		commands.WithMessageFields(func(msg BuildSiteCommand) map[string]any {
			fields := map[string]any{}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			if msg.IncludeDrafts {
				fields["include_drafts"] = true
			}
			return fields
		}),
	}
	return &BuildSiteHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[BuildSiteCommand].
func (h *BuildSiteHandler) Execute(ctx context.Context, msg BuildSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// BuildPageHandler renders one page.
type BuildPageHandler struct {
	inner *commands.Handler[BuildPageCommand]
}

// NewBuildPageHandler wires a single page handler to service.
func NewBuildPageHandler(service generator.Service, logger interfaces.Logger, opts ...commands.HandlerOption[BuildPageCommand]) *BuildPageHandler {
	exec := func(ctx context.Context, msg BuildPageCommand) error {
		if service == nil {
			return generator.ErrServiceDisabled
		}
		page, err := service.BuildPage(ctx, msg.Source, generator.BuildOptions{
			DryRun:        msg.DryRun,
			IncludeDrafts: msg.IncludeDrafts,
		})
		if err != nil {
			return err
		}
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Page: page,
			Metadata: map[string]any{
				"operation": "build_page",
				"source":    msg.Source,
			},
		})
		return nil
	}

	handlerOpts := []commands.HandlerOption[BuildPageCommand]{
		commands.WithLogger[BuildPageCommand](ensureLogger(logger)),
		commands.WithOperation[BuildPageCommand]("site.build_page"),
		commands.WithMessageFields(func(msg BuildPageCommand) map[string]any {
			return map[string]any{"source": msg.Source}
		}),
	}
	return &BuildPageHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[BuildPageCommand].
func (h *BuildPageHandler) Execute(ctx context.Context, msg BuildPageCommand) error {
	return h.inner.Execute(ctx, msg)
}

// BuildSitemapHandler regenerates sitemap.xml.
type BuildSitemapHandler struct {
	inner *commands.Handler[BuildSitemapCommand]
}

// NewBuildSitemapHandler wires a sitemap handler to service.
func NewBuildSitemapHandler(service generator.Service, logger interfaces.Logger, opts ...commands.HandlerOption[BuildSitemapCommand]) *BuildSitemapHandler {
	exec := func(ctx context.Context, _ BuildSitemapCommand) error {
		if service == nil {
			return generator.ErrServiceDisabled
		}
		return service.BuildSitemap(ctx)
	}

	handlerOpts := []commands.HandlerOption[BuildSitemapCommand]{
		commands.WithLogger[BuildSitemapCommand](ensureLogger(logger)),
		commands.WithOperation[BuildSitemapCommand]("site.sitemap"),
	}
	return &BuildSitemapHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[BuildSitemapCommand].
func (h *BuildSitemapHandler) Execute(ctx context.Context, msg BuildSitemapCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CleanSiteHandler clears the output directory.
type CleanSiteHandler struct {
	inner *commands.Handler[CleanSiteCommand]
}

// NewCleanSiteHandler wires a clean handler to service.
func NewCleanSiteHandler(service generator.Service, logger interfaces.Logger, opts ...commands.HandlerOption[CleanSiteCommand]) *CleanSiteHandler {
	exec := func(ctx context.Context, _ CleanSiteCommand) error {
		if service == nil {
			return generator.ErrServiceDisabled
		}
		return service.Clean(ctx)
	}

	handlerOpts := []commands.HandlerOption[CleanSiteCommand]{
		commands.WithLogger[CleanSiteCommand](ensureLogger(logger)),
		commands.WithOperation[CleanSiteCommand]("site.clean"),
	}
	return &CleanSiteHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[CleanSiteCommand].
func (h *CleanSiteHandler) Execute(ctx context.Context, msg CleanSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CommandRegistry is the registration contract expected when wiring handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet groups the generator command handlers.
type HandlerSet struct {
	Build   *BuildSiteHandler
	Page    *BuildPageHandler
	Sitemap *BuildSitemapHandler
	Clean   *CleanSiteHandler
}

// RegisterSiteCommands builds the generator handlers and registers them with
// reg when it is not nil.
func RegisterSiteCommands(reg CommandRegistry, service generator.Service, provider interfaces.LoggerProvider) (*HandlerSet, error) {
	if service == nil {
		return nil, errors.New("site command registration: generator service is nil")
	}
	logger := commands.CommandLogger(provider, "site")
	set := &HandlerSet{
		Build:   NewBuildSiteHandler(service, logger),
		Page:    NewBuildPageHandler(service, logger),
		Sitemap: NewBuildSitemapHandler(service, logger),
		Clean:   NewCleanSiteHandler(service, logger),
	}
	if reg != nil {
		for _, handler := range []any{set.Build, set.Page, set.Sitemap, set.Clean} {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}

func ensureLogger(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return logging.NoOp()
	}
	return logger
}

func invokeCallback(cb ResultCallback, envelope ResultEnvelope) {
	if cb != nil {
		cb(envelope)
	}
}
