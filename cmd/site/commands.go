package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/goliatone/go-site/internal/checklist"
	checklistcmd "github.com/goliatone/go-site/internal/commands/checklist"
	sitecmd "github.com/goliatone/go-site/internal/commands/site"
	"github.com/goliatone/go-site/internal/generator"
)

const defaultAddr = ":8787"

func buildCommand(state *cliState) *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "Render every markdown page into the output directory",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dry-run", Usage: "Render without writing files"},
			&cli.BoolFlag{Name: "drafts", Usage: "Include draft pages"},
		},
		Action: func(c *cli.Context) error {
			resources, err := state.module()
			if err != nil {
				return err
			}
			msg := sitecmd.BuildSiteCommand{
				DryRun:        c.Bool("dry-run"),
				IncludeDrafts: c.Bool("drafts"),
				ResultCallback: func(envelope sitecmd.ResultEnvelope) {
					printBuildSummary(state, envelope.Result)
				},
			}
			return execute(c.Context, resources.handlers.build, "build", msg)
		},
	}
}

func printBuildSummary(state *cliState, result *generator.BuildResult) {
	if result == nil {
		return
	}
	mode := "built"
	if result.DryRun {
		mode = "rendered (dry run)"
	}
	fmt.Fprintf(state.out, "%s %d pages, skipped %d in %s\n", mode, result.PagesBuilt, result.PagesSkipped, result.Duration.Round(time.Millisecond))
	for _, diag := range result.Diagnostics {
		if diag.Err != nil {
			fmt.Fprintf(state.out, "  error %s: %v\n", diag.Source, diag.Err)
		}
	}
}

func renderCommand(state *cliState) *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "Render a single page and print its HTML",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "write", Usage: "Also write the page to the output directory"},
			&cli.BoolFlag{Name: "drafts", Usage: "Allow rendering draft pages"},
		},
		Action: func(c *cli.Context) error {
			source := c.Args().First()
			if source == "" {
				return errors.New("render: a markdown file is required")
			}
			resources, err := state.module()
			if err != nil {
				return err
			}
			msg := sitecmd.BuildPageCommand{
				Source:        source,
				DryRun:        !c.Bool("write"),
				IncludeDrafts: c.Bool("drafts"),
				ResultCallback: func(envelope sitecmd.ResultEnvelope) {
					if envelope.Page != nil {
						fmt.Fprintln(state.out, envelope.Page.HTML)
					}
				},
			}
			return execute(c.Context, resources.handlers.page, "render", msg)
		},
	}
}

func sitemapCommand(state *cliState) *cli.Command {
	return &cli.Command{
		Name:  "sitemap",
		Usage: "Regenerate sitemap.xml and robots.txt",
		Action: func(c *cli.Context) error {
			resources, err := state.module()
			if err != nil {
				return err
			}
			if err := execute(c.Context, resources.handlers.sitemap, "sitemap", sitecmd.BuildSitemapCommand{}); err != nil {
				return err
			}
			fmt.Fprintln(state.out, "sitemap written")
			return nil
		},
	}
}

func cleanCommand(state *cliState) *cli.Command {
	return &cli.Command{
		Name:  "clean",
		Usage: "Remove the output directory",
		Action: func(c *cli.Context) error {
			resources, err := state.module()
			if err != nil {
				return err
			}
			return execute(c.Context, resources.handlers.clean, "clean", sitecmd.CleanSiteCommand{})
		},
	}
}

func serveCommand(state *cliState) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the built site and the contact endpoint",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Aliases: []string{"a"},
				Value:   defaultAddr,
				Usage:   "HTTP listen address",
				EnvVars: []string{"SITE_ADDR"},
			},
		},
		Action: func(c *cli.Context) error {
			resources, err := state.module()
			if err != nil {
				return err
			}
			if resources.module == nil {
				return errors.New("serve: site module not configured")
			}
			return serve(c.Context, resources, c.String("addr"))
		},
	}
}

func newServeMux(resources *moduleResources) *http.ServeMux {
	mux := http.NewServeMux()
	if handler := resources.module.Contact(); handler != nil {
		handler.RegisterRoutes(mux)
	} else {
		resources.log().Warn("serve.contact.disabled", "reason", "contact to/from not configured")
	}
	outputDir := resources.module.Config().Generator.OutputDir
	mux.Handle("/", http.FileServer(http.Dir(outputDir)))
	return mux
}

func serve(ctx context.Context, resources *moduleResources, addr string) error {
	logger := resources.log()
	server := &http.Server{
		Addr:              addr,
		Handler:           newServeMux(resources),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(done)

	go func() {
		logger.Info("serve.started", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-done:
		logger.Info("serve.shutting_down")
	case <-ctx.Done():
		logger.Info("serve.shutting_down", "reason", ctx.Err())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info("serve.stopped")
	return nil
}

func checklistCommand(state *cliState) *cli.Command {
	return &cli.Command{
		Name:  "checklist",
		Usage: "Work with checklist definitions and reports",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List checklists from the manifest",
				Action: func(c *cli.Context) error {
					resources, err := state.module()
					if err != nil {
						return err
					}
					if resources.module == nil || resources.module.Checklists() == nil {
						return errors.New("checklist: service not configured")
					}
					entries, err := resources.module.Checklists().List(c.Context)
					if err != nil {
						return err
					}
					for _, entry := range entries {
						fmt.Fprintf(state.out, "%s\t%s\n", entry.Label(), entry.File)
					}
					return nil
				},
			},
			{
				Name:  "export",
				Usage: "Merge answers into a checklist and write a report",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Checklist file relative to the checklist root", Required: true},
					&cli.StringFlag{Name: "answers", Usage: "JSON file with client, reviewer, date and item answers", Required: true},
					&cli.StringFlag{Name: "format", Value: "md", Usage: "Report format (json, txt, md)"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "reports", Usage: "Directory for the report"},
					&cli.BoolFlag{Name: "dry-run", Usage: "Validate and render without writing"},
				},
				Action: func(c *cli.Context) error {
					answers, err := checklist.LoadAnswers(c.String("answers"))
					if err != nil {
						return err
					}
					resources, err := state.module()
					if err != nil {
						return err
					}
					msg := checklistcmd.ExportChecklistCommand{
						File:      c.String("file"),
						Answers:   answers,
						Format:    c.String("format"),
						OutputDir: c.String("out"),
						DryRun:    c.Bool("dry-run"),
						ResultCallback: func(result *checklist.ExportResult) {
							fmt.Fprintf(state.out, "report %s (%d bytes)\n", result.Path, result.Bytes)
						},
					}
					return execute(c.Context, resources.handlers.export, "checklist export", msg)
				},
			},
		},
	}
}
