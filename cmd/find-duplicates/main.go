package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"dupefinder/internal/config"
	"dupefinder/internal/duplicates"
	"dupefinder/internal/logging"
	"dupefinder/internal/metrics"
	"dupefinder/internal/scandb"
	"dupefinder/internal/tracing"
)

func main() {
	// Parse command line flags
	scanPath := flag.String("scan", "", "Path to scan database file")
	configPath := flag.String("config", "", "Path to config file (default: search ./dupefinder.yaml, ./config/dupefinder.yaml)")
	validOnly := flag.Bool("valid-only", true, "Skip files the scanner marked invalid")
	details := flag.Bool("details", false, "Print every duplicate group")
	limit := flag.Int("limit", 20, "Maximum groups to print with -details (0 = all)")
	jsonOut := flag.Bool("json", false, "Write the result as JSON instead of text")
	metricsOut := flag.String("metrics-out", "", "Write Prometheus metrics to this file when metrics are enabled")
	flag.Parse()

	if *scanPath == "" {
		fmt.Println("Usage: find-duplicates -scan <scan-database> [-config <file>] [-details] [-json]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := run(*scanPath, *configPath, *validOnly, *details, *limit, *jsonOut, *metricsOut); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(scanPath, configPath string, validOnly, details bool, limit int, jsonOut bool, metricsOut string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := logging.InitGlobalLogger(logging.LogLevel(cfg.Logging.Level), cfg.Logging.Format, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := duplicates.OptionsFromConfig(cfg)
	opts.Logger = logger

	if cfg.Tracing.Enabled {
		tracer, err := tracing.NewTracer(cfg.Tracing.ServiceName, os.Stderr)
		if err != nil {
			return err
		}
		defer tracer.Shutdown(context.Background())
		opts.Tracer = tracer.Tracer()
	}

	var registry *prometheus.Registry
	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		opts.Metrics = metrics.NewMetrics(registry, cfg.Metrics.Namespace)
	}

	// Check if scan database exists
	if _, err := os.Stat(scanPath); os.IsNotExist(err) {
		return fmt.Errorf("scan database does not exist: %s", scanPath)
	}

	db, err := scandb.Open(scanPath)
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := db.GetStats(ctx)
	if err != nil {
		return err
	}
	logger.WithFields(map[string]interface{}{
		"module": "cli",
		"scan":   scanPath,
		"total":  stats.TotalFiles,
		"valid":  stats.ValidFiles,
		"hashed": stats.HashedFiles,
	}).Info().Msg("Opened scan database")

	files, err := db.LoadRecords(ctx, validOnly)
	if err != nil {
		return err
	}
	logging.Infof("Loaded %d records for analysis (valid only: %t)", len(files), validOnly)

	finder := duplicates.New(opts)
	defer func() {
		if err := finder.Close(); err != nil {
			logging.WithError(err).Warn().Msg("Duplicate finder did not close cleanly")
		}
	}()

	result, err := finder.Analyze(ctx, files)
	if err != nil {
		return err
	}

	if jsonOut {
		if err := writeJSON(os.Stdout, result); err != nil {
			return err
		}
	} else {
		fmt.Println(result.Summary())
		if details {
			fmt.Print(renderGroups(result.Groups, limit))
		}
	}

	if registry != nil && metricsOut != "" {
		if err := prometheus.WriteToTextfile(metricsOut, registry); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}
