package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dgallion1/guides/internal/diag"
	"github.com/dgallion1/guides/internal/pipeline"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
)

func buildCommand() *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "compile the source directory and write every output format",
		Flags: append(sourceFlags(), &cli.BoolFlag{
			Name:  "no-color",
			Usage: "disable colored diagnostics",
		}),
		Action: runBuild,
	}
}

func runBuild(c *cli.Context) error {
	renderers := newRenderers()
	cfg, err := loadConfig(c, renderers)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	log := newLogger(c.App.ErrWriter, cfg.LogLevel, false)
	if cfg.ProjectFile != "" {
		log.Debug("loaded project file", "path", cfg.ProjectFile)
	}

	b := newBuilder(cfg, renderers, log)
	res, err := b.Build(c.Context, os.DirFS(cfg.SourceDir))
	if err != nil {
		return cli.Exit(fmt.Sprintf("build failed: %v", err), 1)
	}
	if err := pipeline.WriteOutputs(cfg.OutputDir, res); err != nil {
		return cli.Exit(fmt.Sprintf("write outputs: %v", err), 1)
	}

	out := c.App.Writer
	printer := diag.Printer{Color: useColor(c, out)}
	if err := printer.Fprint(out, res.Diagnostics); err != nil {
		return err
	}
	fmt.Fprintln(out, summary(res, cfg.OutputDir))

	problems := res.Diagnostics.Count(diag.Warning) + res.Diagnostics.Count(diag.Error)
	if cfg.Strict && problems > 0 {
		return cli.Exit(fmt.Sprintf("strict mode: %s", english.Plural(problems, "diagnostic", "")), 1)
	}
	return nil
}

// useColor reports whether diagnostics written to w are colored: w must
// be a terminal and --no-color unset.
func useColor(c *cli.Context, w io.Writer) bool {
	if c.Bool("no-color") {
		color.NoColor = true
		return false
	}
	f, ok := w.(*os.File)
	if !ok || !(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return false
	}
	color.NoColor = false
	return true
}

func summary(res *pipeline.Result, dir string) string {
	return fmt.Sprintf("built %s (%d reused) into %s: %s written in %s, %s, %s",
		english.Plural(len(res.Documents), "document", ""),
		res.Counts.Reused,
		dir,
		humanize.Bytes(uint64(res.Counts.Bytes)),
		res.Duration.Round(time.Millisecond),
		english.Plural(res.Diagnostics.Count(diag.Warning), "warning", ""),
		english.Plural(res.Diagnostics.Count(diag.Error), "error", ""),
	)
}
