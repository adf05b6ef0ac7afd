package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/02loveslollipop/matchday-pipeline/services/pipeline/internal/config"
	"github.com/02loveslollipop/matchday-pipeline/services/pipeline/internal/db"
	"github.com/02loveslollipop/matchday-pipeline/services/pipeline/internal/footballdata"
	"github.com/02loveslollipop/matchday-pipeline/services/pipeline/internal/logger"
	"github.com/02loveslollipop/matchday-pipeline/services/pipeline/internal/pipeline"
)

type cliArgs struct {
	season      int
	status      string
	dateFrom    string
	dateTo      string
	competition string
	datasets    string
	dryRun      bool
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("pipeline failed: %v", err)
	}
}

func parseArgs() cliArgs {
	var a cliArgs
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags]\n\nFetch football-data.org matches and build cleaned tables and features.\n%s\n\n",
			os.Args[0], footballdata.DescribeFilters())
		flag.PrintDefaults()
	}
	flag.IntVar(&a.season, "season", 0, "season start year (e.g. 2023 for 2023-24); overrides the dataset list")
	flag.StringVar(&a.status, "status", footballdata.DefaultStatus, "match status filter")
	flag.StringVar(&a.dateFrom, "date-from", "", "lower bound date (YYYY-MM-DD, inclusive)")
	flag.StringVar(&a.dateTo, "date-to", "", "upper bound date (YYYY-MM-DD, inclusive)")
	flag.StringVar(&a.competition, "competition", footballdata.DefaultCompetition, "competition code")
	flag.StringVar(&a.datasets, "datasets", "", "YAML dataset list (defaults to PIPELINE_DATASETS)")
	flag.BoolVar(&a.dryRun, "dry-run", false, "fetch and report without writing artifacts")
	flag.Parse()
	return a
}

func run() error {
	args := parseArgs()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if args.dryRun {
		cfg.DryRun = true
	}
	if args.datasets != "" {
		cfg.DatasetsFile = args.datasets
	}

	lg := logger.New(cfg.LogLevel, os.Stderr)

	datasets, err := selectDatasets(args, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := footballdata.NewClient(cfg.APIToken, footballdata.ClientOptions{
		BaseURL:        cfg.BaseURL,
		MinInterval:    cfg.MinInterval,
		RequestTimeout: cfg.RequestTimeout,
	})
	fetcher := footballdata.NewFetcher(client, cfg.RawDir())

	orch := pipeline.New(fetcher, cfg.InterimDir(), cfg.ProcessedDir())
	orch.Retries = cfg.Retries
	orch.DryRun = cfg.DryRun
	orch.Logger = lg

	if cfg.DatabaseURL != "" && !cfg.DryRun {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer pool.Close()

		if err := db.EnsureSchema(ctx, pool); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		orch.Sink = db.NewSink(pool)
		lg.Info("database sink enabled")
	}

	results := orch.Run(ctx, datasets)
	if _, failed := pipeline.Summarize(results); failed > 0 {
		return fmt.Errorf("%d of %d datasets failed", failed, len(results))
	}
	return nil
}

// selectDatasets prefers an explicit --season, then the dataset file, then
// the built-in list.
func selectDatasets(args cliArgs, cfg config.Config) ([]pipeline.Dataset, error) {
	if args.season != 0 {
		ds := pipeline.Dataset{
			Competition: args.competition,
			Season:      args.season,
			Status:      args.status,
			DateFrom:    args.dateFrom,
			DateTo:      args.dateTo,
		}
		if _, err := ds.Request(); err != nil {
			return nil, err
		}
		return []pipeline.Dataset{ds}, nil
	}
	if args.dateFrom != "" || args.dateTo != "" {
		return nil, errors.New("--date-from/--date-to require --season")
	}
	if cfg.DatasetsFile != "" {
		return pipeline.LoadDatasets(cfg.DatasetsFile)
	}
	return pipeline.DefaultDatasets(), nil
}
