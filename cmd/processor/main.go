// Command processor ingests experiment-plan workbooks from a directory
// and writes the resulting archive entries.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"perobatch/internal/config"
	"perobatch/internal/exporter"
	"perobatch/internal/files"
	"perobatch/internal/infrastructure"
	"perobatch/internal/services"
	"perobatch/pkg/contracts"
)

func main() {
	inDir := flag.String("in", "", "input directory with experiment plan .xlsx files (default: configured uploads dir)")
	outDir := flag.String("out", "", "output directory for archive entries (default: configured archive dir)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetVersionString())
		return
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	if *inDir == "" {
		*inDir = cfg.Paths.UploadsDir
	}
	if *outDir == "" {
		*outDir = cfg.Paths.ArchiveDir
	}
	if err := os.MkdirAll(*outDir, 0755); err != nil {
		logger.Error("failed to create output directory", slog.String("error", err.Error()))
		os.Exit(1)
	}

	providers, err := infrastructure.InitializeOTel(logger)
	if err != nil {
		logger.Error("failed to initialize telemetry", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer providers.Shutdown(context.Background())

	service, err := services.NewIngestService(*outDir, logger, providers)
	if err != nil {
		logger.Error("failed to create ingest service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	discovery := files.NewDiscovery(".")
	plans, err := discovery.FindPlans(*inDir)
	if err != nil {
		logger.Error("failed to discover plans", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if len(plans) == 0 {
		logger.Info("no experiment plans found", slog.String("input_dir", *inDir))
		return
	}

	logger.Info("starting plan ingestion",
		slog.String("input_dir", *inDir),
		slog.String("output_dir", *outDir),
		slog.Int("plans", len(plans)))

	ingestErr := ingestPlans(context.Background(), service, plans, cfg.Ingest.Parallelism, logger)

	// The report covers whatever succeeded, even when some plans failed.
	reportPath := filepath.Join(*outDir, "ingest_report.csv")
	if err := exporter.NewCSVWriter(logger).WriteIngestReport(reportPath, service.Summaries()); err != nil {
		logger.Error("failed to write ingestion report", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if ingestErr != nil {
		os.Exit(1)
	}
}

// ingestPlans runs bounded-parallel ingestion over the discovered plans
// and returns the first failure, if any.
func ingestPlans(ctx context.Context, service *services.IngestService, plans []files.FileInfo, parallelism int, logger *slog.Logger) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for _, plan := range plans {
		g.Go(func() error {
			summary, err := service.IngestFile(ctx, plan.Path)
			if err != nil {
				logger.Error("plan ingestion failed",
					slog.String("plan_file", plan.Name),
					slog.String("error", err.Error()))
				return err
			}
			logger.Info("plan archived",
				slog.String("plan_file", plan.Name),
				slog.String("batch_id", summary.BatchID),
				slog.Int("records", len(summary.References)))
			return nil
		})
	}
	return g.Wait()
}
