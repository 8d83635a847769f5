// Command guides compiles reStructuredText documentation into HTML, LaTeX,
// normalized reStructuredText and plain text.
//
//	guides build --source docs --out _build --format html --format latex
//	guides serve --port 8090
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dgallion1/guides/internal/builtin"
	"github.com/dgallion1/guides/internal/compiler"
	"github.com/dgallion1/guides/internal/config"
	"github.com/dgallion1/guides/internal/pipeline"
	"github.com/dgallion1/guides/internal/render"
	"github.com/dgallion1/guides/internal/render/html"
	"github.com/dgallion1/guides/internal/render/latex"
	"github.com/dgallion1/guides/internal/render/rst"
	"github.com/dgallion1/guides/internal/render/text"
	"github.com/dgallion1/guides/internal/resolver"
	"github.com/dgallion1/guides/internal/templates"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "guides",
		Usage: "compile reStructuredText documentation",
		Commands: []*cli.Command{
			buildCommand(),
			serveCommand(),
		},
	}
}

// sourceFlags are shared by build and serve.
func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "source",
			Aliases: []string{"s"},
			Usage:   "source directory (default $GUIDES_SOURCE_DIR or docs)",
		},
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "output directory (default $GUIDES_OUTPUT_DIR or _build)",
		},
		&cli.StringSliceFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "output format, repeatable or comma separated",
		},
		&cli.StringFlag{
			Name:      "config",
			Aliases:   []string{"c"},
			Usage:     "project file (default guides.toml or guides.yaml in the source directory)",
			TakesFile: true,
		},
		&cli.StringFlag{
			Name:  "root",
			Usage: "root document of the project TOC",
		},
		&cli.StringSliceFlag{
			Name:  "tag",
			Usage: "tag enabled for only directives, repeatable",
		},
		&cli.BoolFlag{
			Name:  "strict",
			Usage: "fail when the build reports warnings or errors",
		},
	}
}

// loadConfig layers the environment, the project file and the flags, in
// that order of precedence from lowest to highest, and validates the
// result against the registered renderers.
func loadConfig(c *cli.Context, renderers *render.Registry) (config.Config, error) {
	cfg := config.Load()
	if c.IsSet("source") {
		cfg.SourceDir = c.String("source")
	}
	if c.IsSet("config") {
		cfg.ProjectFile = c.String("config")
	}
	if err := cfg.ApplyProject(); err != nil {
		return cfg, fmt.Errorf("project file: %w", err)
	}
	if c.IsSet("out") {
		cfg.OutputDir = c.String("out")
	}
	if c.IsSet("format") {
		cfg.Formats = splitList(c.StringSlice("format"))
	}
	if c.IsSet("root") {
		cfg.Root = c.String("root")
	}
	if c.IsSet("tag") {
		cfg.Tags = splitList(c.StringSlice("tag"))
	}
	if c.IsSet("strict") {
		cfg.Strict = c.Bool("strict")
	}
	if err := cfg.Validate(renderers.Formats()...); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func newRenderers() *render.Registry {
	reg := render.NewRegistry()
	html.Register(reg)
	latex.Register(reg)
	rst.Register(reg)
	text.Register(reg)
	return reg
}

func newBuilder(cfg config.Config, renderers *render.Registry, log *slog.Logger) *pipeline.Builder {
	return &pipeline.Builder{
		Extensions: builtin.NewRegistry(),
		Renderers:  renderers,
		Compiler:   compiler.New(resolver.Default(cfg.Interlinks)),
		Templates:  templates.New(),
		Formats:    cfg.Formats,
		Root:       cfg.Root,
		Tags:       cfg.Tags,
		Workers:    cfg.WorkerCount,
		Cache:      pipeline.NewCache(),
		Log:        log,
	}
}

func newLogger(w io.Writer, level string, json bool) *slog.Logger {
	lvl, _ := config.ParseLevel(level)
	opts := &slog.HandlerOptions{Level: lvl}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
