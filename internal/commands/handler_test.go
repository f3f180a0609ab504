package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type buildMessage struct {
	Target string
}

func (buildMessage) Type() string { return "site.test.build" }

func (buildMessage) Validate() error { return nil }

type invalidMessage struct{}

func (invalidMessage) Type() string { return "site.test.invalid" }

func (invalidMessage) Validate() error { return errors.New("target is required") }

func TestHandlerExecuteSuccess(t *testing.T) {
	var got string
	h := NewHandler(func(ctx context.Context, msg buildMessage) error {
		got = msg.Target
		return nil
	})

	if err := h.Execute(context.Background(), buildMessage{Target: "dist"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got != "dist" {
		t.Fatalf("expected handler to receive message, got %q", got)
	}
}

func TestHandlerValidationShortCircuitsExecution(t *testing.T) {
	called := false
	h := NewHandler(func(ctx context.Context, msg invalidMessage) error {
		called = true
		return nil
	})

	err := h.Execute(context.Background(), invalidMessage{})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if called {
		t.Fatal("handler must not run when validation fails")
	}
}

func TestHandlerContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	h := NewHandler(func(ctx context.Context, msg buildMessage) error {
		called = true
		return nil
	})

	err := h.Execute(ctx, buildMessage{})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if called {
		t.Fatal("handler must not run when the context is cancelled")
	}
}

func TestHandlerWrapsExecutionError(t *testing.T) {
	h := NewHandler(func(ctx context.Context, msg buildMessage) error {
		return errors.New("boom")
	})

	err := h.Execute(context.Background(), buildMessage{})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
}

func TestHandlerKeepsCategorisedErrors(t *testing.T) {
	upstream := goerrors.New("mail relay down", goerrors.CategoryExternal)
	h := NewHandler(func(ctx context.Context, msg buildMessage) error {
		return upstream
	})

	err := h.Execute(context.Background(), buildMessage{})
	if !goerrors.IsCategory(err, goerrors.CategoryExternal) {
		t.Fatalf("expected external category to survive, got %v", err)
	}
}

func TestHandlerHonoursTimeoutOption(t *testing.T) {
	h := NewHandler(func(ctx context.Context, msg buildMessage) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return nil
		}
	}, WithTimeout[buildMessage](10*time.Millisecond))

	err := h.Execute(context.Background(), buildMessage{})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category for timeout, got %v", err)
	}
}

func TestHandlerTelemetryReceivesOutcome(t *testing.T) {
	var infos []TelemetryInfo
	h := NewHandler(func(ctx context.Context, msg buildMessage) error {
		if msg.Target == "" {
			return errors.New("no target")
		}
		return nil
	},
		WithOperation[buildMessage]("site.build"),
		WithMessageFields(func(msg buildMessage) map[string]any {
			return map[string]any{"target": msg.Target}
		}),
		WithTelemetry(func(_ context.Context, _ buildMessage, info TelemetryInfo) {
			infos = append(infos, info)
		}),
	)

	_ = h.Execute(context.Background(), buildMessage{Target: "dist"})
	_ = h.Execute(context.Background(), buildMessage{})

	if len(infos) != 2 {
		t.Fatalf("expected two telemetry calls, got %d", len(infos))
	}
	first := infos[0]
	if first.Status != TelemetryStatusSuccess || first.Command != "site.test.build" || first.Operation != "site.build" {
		t.Fatalf("unexpected success telemetry %+v", first)
	}
	if first.Fields["target"] != "dist" {
		t.Fatalf("expected message fields, got %v", first.Fields)
	}
	if infos[1].Status != TelemetryStatusFailed || infos[1].Error == nil {
		t.Fatalf("unexpected failure telemetry %+v", infos[1])
	}
}
