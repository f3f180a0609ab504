package checklistcmd

import (
	"context"
	"os"
	"testing"
	"testing/fstest"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-site/internal/checklist"
)

func newExporter(t *testing.T) *checklist.Service {
	t.Helper()
	svc, err := checklist.NewService("checklists", checklist.WithFS(fstest.MapFS{
		"ops.json": {Data: []byte(`{"title": "Ops", "items": [{"id": "backup", "item": "Backups verified"}]}`)},
	}))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func completeAnswers() checklist.Answers {
	return checklist.Answers{
		Client:   "Acme",
		Reviewer: "Jo",
		Date:     "2024-02-02",
		Items:    map[string]checklist.Answer{"backup": {Status: checklist.StatusCompliant}},
	}
}

func TestExportChecklistCommandValidate(t *testing.T) {
	cases := []ExportChecklistCommand{
		{Format: "json"},
		{File: "ops.json"},
		{File: "ops.json", Format: "pdf"},
	}
	for _, msg := range cases {
		if err := msg.Validate(); err == nil {
			t.Fatalf("expected validation error for %+v", msg)
		}
	}
	if err := (ExportChecklistCommand{File: "ops.json", Format: "md"}).Validate(); err != nil {
		t.Fatalf("expected valid command, got %v", err)
	}
}

func TestExportChecklistHandlerWritesReport(t *testing.T) {
	out := t.TempDir()
	handler, err := RegisterChecklistCommands(nil, newExporter(t), nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	var result *checklist.ExportResult
	err = handler.Execute(context.Background(), ExportChecklistCommand{
		File:           "ops.json",
		Answers:        completeAnswers(),
		Format:         "markdown",
		OutputDir:      out,
		ResultCallback: func(r *checklist.ExportResult) { result = r },
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result == nil {
		t.Fatal("expected callback result")
	}
	if _, err := os.Stat(result.Path); err != nil {
		t.Fatalf("expected report on disk: %v", err)
	}
}

func TestExportChecklistHandlerSurfacesReportValidation(t *testing.T) {
	handler := NewExportChecklistHandler(newExporter(t), nil)
	answers := completeAnswers()
	answers.Client = ""

	err := handler.Execute(context.Background(), ExportChecklistCommand{
		File:      "ops.json",
		Answers:   answers,
		Format:    "json",
		OutputDir: t.TempDir(),
	})
	if !goerrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
