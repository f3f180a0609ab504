// Package checklistcmd exposes checklist report exports as go-command handlers.
package checklistcmd

import (
	"context"
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-site/internal/checklist"
	"github.com/goliatone/go-site/internal/commands"
	"github.com/goliatone/go-site/pkg/interfaces"
)

const exportMessageType = "checklist.export"

// Exporter is the subset of checklist.Service used by the handler.
type Exporter interface {
	Export(ctx context.Context, req checklist.ExportRequest) (*checklist.ExportResult, error)
}

// ResultCallback receives the export outcome.
type ResultCallback func(result *checklist.ExportResult)

// ExportChecklistCommand exports a completed checklist report.
type ExportChecklistCommand struct {
	File           string            `json:"file"`
	Answers        checklist.Answers `json:"answers"`
	Format         string            `json:"format"`
	OutputDir      string            `json:"output_dir,omitempty"`
	DryRun         bool              `json:"dry_run,omitempty"`
	ResultCallback ResultCallback    `json:"-"`
}

// Type implements command.Message.
func (ExportChecklistCommand) Type() string { return exportMessageType }

// Validate requires a checklist file and a supported format.
func (m ExportChecklistCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.File, validation.Required),
		validation.Field(&m.Format,
			validation.Required,
			validation.By(func(value any) error {
				format, _ := value.(string)
				if _, err := checklist.ParseFormat(format); err != nil {
					return validation.NewError("checklist.export.format_invalid", "format must be json, txt or md")
				}
				return nil
			}),
		),
	)
}

// ExportChecklistHandler writes checklist reports.
type ExportChecklistHandler struct {
	inner *commands.Handler[ExportChecklistCommand]
}

// NewExportChecklistHandler wires the handler to exporter.
func NewExportChecklistHandler(exporter Exporter, logger interfaces.Logger, opts ...commands.HandlerOption[ExportChecklistCommand]) *ExportChecklistHandler {
	exec := func(ctx context.Context, msg ExportChecklistCommand) error {
		if exporter == nil {
			return errors.New("checklist export: exporter is nil")
		}
		format, err := checklist.ParseFormat(msg.Format)
		if err != nil {
			return err
		}
		result, err := exporter.Export(ctx, checklist.ExportRequest{
			File:      strings.TrimSpace(msg.File),
			Answers:   msg.Answers,
			Format:    format,
			OutputDir: msg.OutputDir,
			DryRun:    msg.DryRun,
		})
		if err != nil {
			return err
		}
		if msg.ResultCallback != nil {
			msg.ResultCallback(result)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[ExportChecklistCommand]{
		commands.WithLogger[ExportChecklistCommand](logger),
		commands.WithOperation[ExportChecklistCommand]("checklist.export"),
		commands.WithMessageFields(func(msg ExportChecklistCommand) map[string]any {
			return map[string]any{"file": msg.File, "format": msg.Format}
		}),
	}
	return &ExportChecklistHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[ExportChecklistCommand].
func (h *ExportChecklistHandler) Execute(ctx context.Context, msg ExportChecklistCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CommandRegistry is the registration contract expected when wiring handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// RegisterChecklistCommands builds the export handler and registers it with
// reg when it is not nil.
func RegisterChecklistCommands(reg CommandRegistry, exporter Exporter, provider interfaces.LoggerProvider) (*ExportChecklistHandler, error) {
	if exporter == nil {
		return nil, errors.New("checklist command registration: exporter is nil")
	}
	handler := NewExportChecklistHandler(exporter, commands.CommandLogger(provider, "checklist"))
	if reg != nil {
		if err := reg.RegisterCommand(handler); err != nil {
			return nil, err
		}
	}
	return handler, nil
}
