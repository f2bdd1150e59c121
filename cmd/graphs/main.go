package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"perf-graphs/internal/config"
	"perf-graphs/internal/domain"
	"perf-graphs/internal/pipeline"
	"perf-graphs/internal/render"
	"perf-graphs/internal/repository"
	"perf-graphs/internal/util"
	"perf-graphs/internal/writer"
)

func main() {
	defaults := config.Default()

	app := &cli.App{
		Name:  "graphs",
		Usage: "render REST API performance CSV logs as transaction, CPU and memory charts",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "csv-dir", Value: defaults.CSVRoot, Usage: "root folder holding the metrics CSV files"},
			&cli.StringFlag{Name: "graphs-dir", Value: defaults.GraphsRoot, Usage: "root folder the PNG charts are written to"},
			&cli.Float64Flag{Name: "width", Value: defaults.FigureWidth, Usage: "figure width in inches"},
			&cli.Float64Flag{Name: "height", Value: defaults.FigureHeight, Usage: "figure height in inches"},
			&cli.Float64Flag{Name: "dpi", Value: defaults.DPI, Usage: "output resolution"},
			&cli.BoolFlag{Name: "skip-empty", Usage: "do not write charts that have no series"},
			&cli.StringFlag{Name: "log-level", Value: defaults.LogLevel, Usage: "error, warn, info or debug"},
			&cli.StringFlag{Name: "log-file", Usage: "also append diagnostics to this file"},
		},
		Action: runModes(domain.ModeInteroperability, domain.ModeBasic),
		Commands: []*cli.Command{
			{
				Name:   "all",
				Usage:  "interoperability charts, then the basic category/project/todo charts",
				Action: runModes(domain.ModeInteroperability, domain.ModeBasic),
			},
			{
				Name:   "interoperability",
				Usage:  "charts for every CSV in the interoperability folder",
				Action: runModes(domain.ModeInteroperability),
			},
			{
				Name:   "basic",
				Usage:  "charts for the category, project and todo CSV files",
				Action: runModes(domain.ModeBasic),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(pipeline.GetExitCode(err))
	}
}

func configFromContext(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	cfg.CSVRoot = c.String("csv-dir")
	cfg.GraphsRoot = c.String("graphs-dir")
	cfg.FigureWidth = c.Float64("width")
	cfg.FigureHeight = c.Float64("height")
	cfg.DPI = c.Float64("dpi")
	cfg.SkipEmptyCharts = c.Bool("skip-empty")
	cfg.LogLevel = c.String("log-level")
	cfg.LogFile = c.String("log-file")

	return cfg, cfg.Validate()
}

func runModes(modes ...domain.Mode) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := configFromContext(c)
		if err != nil {
			return err
		}

		level, err := util.ParseLogLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		util.SetCommonLoggerAttributes(level)

		var logger util.MetricsLogger
		if err := logger.Init(os.Stdout, cfg.LogFile, false); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer logger.DeInit()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store := repository.NewSQLiteStore(repository.MemoryDSN)
		if err := store.Init(); err != nil {
			return fmt.Errorf("failed to initialize metric store: %w", err)
		}
		defer store.Close()

		width, height := cfg.PixelSize()
		p := pipeline.New(cfg, store, render.NewRenderer(width, height, cfg.DPI), writer.New(cfg.GraphsRoot), &logger)

		summary, err := p.Run(ctx, modes...)
		logger.LogEvent(util.LOG_LEVEL_INFO, fmt.Sprintf("Done: %d endpoints, %d charts written, %d skipped, %d failed",
			summary.Endpoints, summary.Charts, summary.Skipped, summary.Failed))
		return err
	}
}
