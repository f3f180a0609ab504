package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	site "github.com/goliatone/go-site"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "site:", err)
		os.Exit(1)
	}
}

// run executes the CLI with args (without the program name) writing user
// facing output to out.
func run(args []string, out io.Writer) error {
	state := &cliState{out: out}
	app := newApp(state)
	return app.Run(append([]string{"site"}, args...))
}

type cliState struct {
	out       io.Writer
	cfg       site.Config
	resources *moduleResources
}

func newApp(state *cliState) *cli.App {
	return &cli.App{
		Name:            "site",
		Usage:           "Build the static site, serve the contact endpoint and export checklist reports",
		Writer:          state.out,
		ErrWriter:       state.out,
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file",
				EnvVars: []string{"SITE_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Log level (trace, debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (json, console, pretty, auto)",
				EnvVars: []string{"LOG_FORMAT"},
			},
			&cli.StringFlag{
				Name:    "contact-to",
				Usage:   "Recipient address for contact submissions",
				EnvVars: []string{"CONTACT_TO"},
			},
			&cli.StringFlag{
				Name:    "contact-from",
				Usage:   "Sender address for contact submissions",
				EnvVars: []string{"CONTACT_FROM"},
			},
			&cli.StringFlag{
				Name:    "site-name",
				Usage:   "Site name used in layouts and contact mail",
				EnvVars: []string{"SITE_NAME"},
			},
		},
		Before: func(c *cli.Context) error {
			cfg, err := site.LoadConfig(c.String("config"))
			if err != nil {
				return err
			}
			applyOverrides(&cfg, c)
			state.cfg = cfg
			return nil
		},
		After: func(*cli.Context) error {
			if state.resources != nil {
				state.resources.Close()
			}
			return nil
		},
		Commands: []*cli.Command{
			buildCommand(state),
			renderCommand(state),
			sitemapCommand(state),
			cleanCommand(state),
			serveCommand(state),
			checklistCommand(state),
		},
	}
}

func applyOverrides(cfg *site.Config, c *cli.Context) {
	if value := strings.TrimSpace(c.String("log-level")); value != "" {
		cfg.Logging.Level = value
	}
	if value := strings.TrimSpace(c.String("log-format")); value != "" {
		cfg.Logging.Format = value
	}
	if value := strings.TrimSpace(c.String("contact-to")); value != "" {
		cfg.Contact.To = value
	}
	if value := strings.TrimSpace(c.String("contact-from")); value != "" {
		cfg.Contact.From = value
	}
	if value := strings.TrimSpace(c.String("site-name")); value != "" {
		cfg.Site.Name = value
		cfg.Contact.SiteName = value
	}
}

// module builds the runtime once per invocation.
func (s *cliState) module() (*moduleResources, error) {
	if s.resources != nil {
		return s.resources, nil
	}
	resources, err := moduleBuilder(s.cfg)
	if err != nil {
		return nil, fmt.Errorf("initialise site module: %w", err)
	}
	s.resources = resources
	return resources, nil
}
