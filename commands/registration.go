package commands

import (
	"errors"

	site "github.com/goliatone/go-site"
	checklistcmd "github.com/goliatone/go-site/internal/commands/checklist"
	sitecmd "github.com/goliatone/go-site/internal/commands/site"
	"github.com/goliatone/go-site/pkg/interfaces"
)

// CommandRegistry collects handlers for hosts that list or expose them.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CommandDispatcher subscribes handlers to a message bus such as the
// go-command dispatcher.
type CommandDispatcher interface {
	RegisterCommand(handler any) (CommandSubscription, error)
}

// CommandSubscription is returned per subscribed handler.
type CommandSubscription interface {
	Unsubscribe()
}

// RegistrationOptions are all optional. LoggerProvider defaults to the
// module provider.
type RegistrationOptions struct {
	Registry       CommandRegistry
	Dispatcher     CommandDispatcher
	LoggerProvider interfaces.LoggerProvider
}

// RegistrationResult holds the built handlers and their subscriptions.
type RegistrationResult struct {
	Handlers      []any
	Subscriptions []CommandSubscription
	Site          *sitecmd.HandlerSet
	Checklist     *checklistcmd.ExportChecklistHandler
}

// Close unsubscribes every dispatcher subscription.
func (r *RegistrationResult) Close() {
	if r == nil {
		return
	}
	for _, sub := range r.Subscriptions {
		if sub != nil {
			sub.Unsubscribe()
		}
	}
	r.Subscriptions = nil
}

// RegisterModuleCommands builds the site and checklist handlers for module.
// Each handler is also recorded in opts.Registry and subscribed on
// opts.Dispatcher when those are set. Failures are joined and returned
// together with whatever was registered.
func RegisterModuleCommands(module *site.Module, opts RegistrationOptions) (*RegistrationResult, error) {
	result := &RegistrationResult{}
	if module == nil {
		return result, nil
	}
	provider := opts.LoggerProvider
	if provider == nil {
		provider = module.LoggerProvider()
	}
	r := &registrar{opts: opts, result: result}

	// A disabled generator still gets handlers so callers see
	// ErrServiceDisabled instead of a missing subscriber.
	if set, err := sitecmd.RegisterSiteCommands(nil, module.Generator(), provider); err != nil {
		r.fail(err)
	} else {
		result.Site = set
		r.add(set.Build, set.Page, set.Sitemap, set.Clean)
	}

	if service := module.Checklists(); service != nil {
		if handler, err := checklistcmd.RegisterChecklistCommands(nil, service, provider); err != nil {
			r.fail(err)
		} else {
			result.Checklist = handler
			r.add(handler)
		}
	}

	if len(result.Handlers) == 0 && r.err == nil {
		return result, errors.New("no command handlers registered; ensure services are configured")
	}
	return result, r.err
}

type registrar struct {
	opts   RegistrationOptions
	result *RegistrationResult
	err    error
}

func (r *registrar) fail(err error) {
	r.err = errors.Join(r.err, err)
}

func (r *registrar) add(handlers ...any) {
	for _, handler := range handlers {
		if handler == nil {
			continue
		}
		r.result.Handlers = append(r.result.Handlers, handler)
		if r.opts.Registry != nil {
			if err := r.opts.Registry.RegisterCommand(handler); err != nil {
				r.fail(err)
			}
		}
		if r.opts.Dispatcher == nil {
			continue
		}
		sub, err := r.opts.Dispatcher.RegisterCommand(handler)
		switch {
		case err != nil:
			r.fail(err)
		case sub != nil:
			r.result.Subscriptions = append(r.result.Subscriptions, sub)
		}
	}
}
