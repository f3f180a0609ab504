package commands

import (
	"fmt"

	"github.com/goliatone/go-command/dispatcher"

	checklistcmd "github.com/goliatone/go-site/internal/commands/checklist"
	sitecmd "github.com/goliatone/go-site/internal/commands/site"
)

// GoCommandDispatcher subscribes site handlers to the go-command global
// dispatcher so hosts can dispatch messages by value.
type GoCommandDispatcher struct{}

var _ CommandDispatcher = GoCommandDispatcher{}

// RegisterCommand subscribes handler under its message type.
func (GoCommandDispatcher) RegisterCommand(handler any) (CommandSubscription, error) {
	switch h := handler.(type) {
	case *sitecmd.BuildSiteHandler:
		return dispatcher.SubscribeCommand[sitecmd.BuildSiteCommand](h), nil
	case *sitecmd.BuildPageHandler:
		return dispatcher.SubscribeCommand[sitecmd.BuildPageCommand](h), nil
	case *sitecmd.BuildSitemapHandler:
		return dispatcher.SubscribeCommand[sitecmd.BuildSitemapCommand](h), nil
	case *sitecmd.CleanSiteHandler:
		return dispatcher.SubscribeCommand[sitecmd.CleanSiteCommand](h), nil
	case *checklistcmd.ExportChecklistHandler:
		return dispatcher.SubscribeCommand[checklistcmd.ExportChecklistCommand](h), nil
	default:
		return nil, fmt.Errorf("commands: unsupported handler %T", handler)
	}
}
