package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/dgallion1/guides/internal/api"
	"github.com/dgallion1/guides/internal/pipeline"
	"github.com/urfave/cli/v2"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "build in the background and serve the output over HTTP",
		Flags: append(sourceFlags(), &cli.StringFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Usage:   "listen port (default $PORT or 8090)",
		}),
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	renderers := newRenderers()
	cfg, err := loadConfig(c, renderers)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	if c.IsSet("port") {
		cfg.Port = c.String("port")
	}
	log := newLogger(os.Stdout, cfg.LogLevel, true)

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	orch := pipeline.NewOrchestrator(pipeline.OrchestratorConfig{
		OutputDir:    cfg.OutputDir,
		MaxQueueSize: cfg.MaxQueueSize,
		BuildTimeout: cfg.BuildTimeout,
		BuildTTL:     cfg.BuildTTL,
	}, newBuilder(cfg, renderers, log), os.DirFS(cfg.SourceDir), log)
	orch.Start(ctx)
	if err := orch.Submit(pipeline.NewJob("startup")); err != nil {
		log.Warn("initial build not queued", "error", err)
	}

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewServer(orch, log, cfg),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		<-ctx.Done()
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting guides", "port", cfg.Port, "source", cfg.SourceDir, "formats", cfg.Formats)
	err = httpServer.ListenAndServe()
	cancel()
	orch.Stop()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", "error", err)
		return cli.Exit(err.Error(), 1)
	}
	return nil
}
