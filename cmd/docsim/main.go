package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/leengari/docsim/internal/catalog"
	"github.com/leengari/docsim/internal/config"
	"github.com/leengari/docsim/internal/engine"
	"github.com/leengari/docsim/internal/logging"
	"github.com/leengari/docsim/internal/report"
)

type options struct {
	ConfigPath  string
	CatalogPath string
	Servers     int
	SeqURL      string
	LogLevel    string
	Plain       bool
}

func main() {
	opts := parseArguments()

	level, err := logging.ParseLevel(opts.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q: %v\n", opts.LogLevel, err)
		os.Exit(2)
	}

	logger, closeFn := logging.SetupLogger(logging.Options{
		Level:  level,
		SeqURL: opts.SeqURL,
	})
	defer closeFn()
	slog.SetDefault(logger)

	if err := run(context.Background(), opts); err != nil {
		slog.Error("analysis failed", "error", err)
		closeFn()
		os.Exit(1)
	}
}

func parseArguments() options {
	var opts options

	flag.StringVar(&opts.ConfigPath, "config", "", "Scenario JSON file (defaults to the built-in e-commerce scenario)")
	flag.StringVar(&opts.CatalogPath, "catalog", "", "Catalog JSON file with types, layouts, shard scenarios and workload")
	flag.IntVar(&opts.Servers, "servers", 0, "Override the cluster server count")
	flag.StringVar(&opts.SeqURL, "seq", "", "Seq server URL for structured logs (disabled when empty)")
	flag.StringVar(&opts.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.BoolVar(&opts.Plain, "plain", false, "Plain ASCII output without terminal styling")
	flag.Parse()

	return opts
}

func run(ctx context.Context, opts options) error {
	scenario, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	if opts.Servers != 0 {
		scenario.Cluster.Servers = opts.Servers
	}

	cat, err := catalog.Load(opts.CatalogPath, scenario.Stats)
	if err != nil {
		return err
	}
	slog.Info("catalog loaded",
		slog.String("scenario", scenario.Name),
		slog.Int("layouts", len(cat.Layouts)),
		slog.Int("shard_scenarios", len(cat.Shards)),
		slog.Int("queries", len(cat.Workload)),
	)

	eng, err := engine.New(scenario, cat)
	if err != nil {
		return err
	}
	eng.AddObserver(engine.NewLoggingObserver(slog.Default()))

	analysis, err := eng.Run(ctx)
	if err != nil {
		return err
	}
	slog.Info("analysis complete", slog.String("run_id", analysis.RunID))

	return report.New(os.Stdout, report.Options{Plain: opts.Plain}).Write(analysis)
}
