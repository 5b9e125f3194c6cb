// Package main provides the searchctl CLI: direct, non-HTTP access to the
// reindex orchestrator, evaluation runner, and performance benchmarker for
// scripting and operator use.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Junhan0037/SearchFoundry/internal/alias"
	"github.com/Junhan0037/SearchFoundry/internal/bus"
	"github.com/Junhan0037/SearchFoundry/internal/cache"
	"github.com/Junhan0037/SearchFoundry/internal/config"
	"github.com/Junhan0037/SearchFoundry/internal/dataset"
	"github.com/Junhan0037/SearchFoundry/internal/engine"
	"github.com/Junhan0037/SearchFoundry/internal/engine/bleveengine"
	"github.com/Junhan0037/SearchFoundry/internal/engine/httpengine"
	"github.com/Junhan0037/SearchFoundry/internal/eval"
	"github.com/Junhan0037/SearchFoundry/internal/model"
	"github.com/Junhan0037/SearchFoundry/internal/orchestrator"
	"github.com/Junhan0037/SearchFoundry/internal/perf"
	"github.com/Junhan0037/SearchFoundry/internal/pkg/logger"
	"github.com/Junhan0037/SearchFoundry/internal/report"
	"github.com/Junhan0037/SearchFoundry/internal/retention"
	"github.com/Junhan0037/SearchFoundry/internal/rollback"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "searchctl",
		Short:        "searchctl - operate the search control plane from the command line",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	rootCmd.AddCommand(
		reindexCmd(),
		evalCmd(),
		performanceCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("searchctl %s\n", version)
			fmt.Printf("  commit: %s\n", commit)
			fmt.Printf("  built:  %s\n", date)
		},
	}
}

func loadConfigAndLogger(cmd *cobra.Command) (*config.Config, *logger.Logger, error) {
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")
	level := "info"
	if verbose {
		level = "debug"
	}
	log := logger.New(level, "text")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, log, nil
}

func newEnginePort(cfg config.EngineConfig) engine.Port {
	switch cfg.Driver {
	case "http":
		return httpengine.New(httpengine.Config{BaseURL: cfg.URL, Timeout: 30 * time.Second})
	default:
		return bleveengine.New()
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func reindexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Run or roll back a blue/green reindex",
	}
	cmd.AddCommand(reindexRunCmd(), reindexRollbackCmd())
	return cmd
}

func reindexRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build a new index generation, validate it, and switch the aliases over",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfigAndLogger(cmd)
			if err != nil {
				return err
			}
			sourceVersion, _ := cmd.Flags().GetInt("source-version")
			targetVersion, _ := cmd.Flags().GetInt("target-version")
			wait, _ := cmd.Flags().GetBool("wait")
			refresh, _ := cmd.Flags().GetBool("refresh")
			if sourceVersion < 1 || targetVersion < 1 {
				return fmt.Errorf("--source-version and --target-version must be positive integers")
			}

			port := newEnginePort(cfg.Engine)
			aliasCache, err := cache.New(cfg.Cache)
			if err != nil {
				return fmt.Errorf("creating alias state cache: %w", err)
			}
			defer aliasCache.Close()
			eventBus, err := bus.NewBus(cfg.Bus)
			if err != nil {
				return fmt.Errorf("creating event bus: %w", err)
			}
			defer eventBus.Close()

			aliasMgr := alias.New(port, log, aliasCache)
			recorder := retention.New(cfg.Reports.BaseDir)
			orch := orchestrator.New(port, aliasMgr, recorder, eventBus, cfg.Validation, log)

			result, err := orch.Reindex(context.Background(), model.BlueGreenRequest{
				SourceVersion:     sourceVersion,
				TargetVersion:     targetVersion,
				WaitForCompletion: wait,
				RefreshAfter:      refresh,
			})
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
	cmd.Flags().Int("source-version", 0, "current generation version")
	cmd.Flags().Int("target-version", 0, "new generation version to build and switch to")
	cmd.Flags().Bool("wait", true, "wait for the reindex copy to complete before validating")
	cmd.Flags().Bool("refresh", true, "refresh the target index before validating")
	return cmd
}

func reindexRollbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rollback",
		Short: "Move the read/write aliases back to a prior index",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfigAndLogger(cmd)
			if err != nil {
				return err
			}
			currentIndex, _ := cmd.Flags().GetString("current-index")
			rollbackToIndex, _ := cmd.Flags().GetString("rollback-to-index")
			if currentIndex == "" || rollbackToIndex == "" {
				return fmt.Errorf("--current-index and --rollback-to-index are required")
			}

			port := newEnginePort(cfg.Engine)
			aliasCache, err := cache.New(cfg.Cache)
			if err != nil {
				return fmt.Errorf("creating alias state cache: %w", err)
			}
			defer aliasCache.Close()

			aliasMgr := alias.New(port, log, aliasCache)
			svc := rollback.New(aliasMgr)

			result, err := svc.Rollback(context.Background(), model.RollbackRequest{
				CurrentIndex:    currentIndex,
				RollbackToIndex: rollbackToIndex,
			})
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
	cmd.Flags().String("current-index", "", "index the aliases currently point at")
	cmd.Flags().String("rollback-to-index", "", "index to roll the aliases back to")
	return cmd
}

func evalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Run or compare evaluation datasets against human judgements",
	}
	cmd.AddCommand(evalRunCmd(), evalRegressionCmd())
	return cmd
}

func evalRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Score a dataset's queries against its judgements and optionally write a report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfigAndLogger(cmd)
			if err != nil {
				return err
			}
			datasetID, _ := cmd.Flags().GetString("dataset-id")
			topK, _ := cmd.Flags().GetInt("top-k")
			worstQueries, _ := cmd.Flags().GetInt("worst-queries")
			generateReport, _ := cmd.Flags().GetBool("report")
			if datasetID == "" {
				return fmt.Errorf("--dataset-id is required")
			}
			if topK <= 0 {
				topK = cfg.Benchmark.TopK
			}

			port := newEnginePort(cfg.Engine)
			loader := dataset.NewLoader(cfg.Datasets.RootDir)
			runner := eval.New(loader, port, bus.NilBus{})

			result, err := runner.Run(context.Background(), datasetID, topK, eval.Options{})
			if err != nil {
				return err
			}
			if !generateReport {
				return printJSON(result)
			}

			rep, err := report.NewWriter(cfg.Reports.BaseDir).Write(result, worstQueries, "")
			if err != nil {
				return fmt.Errorf("writing report: %w", err)
			}
			return printJSON(rep)
		},
	}
	cmd.Flags().String("dataset-id", "", "dataset to evaluate")
	cmd.Flags().Int("top-k", 0, "cutoff for retrieval metrics (defaults to config)")
	cmd.Flags().Int("worst-queries", 10, "number of worst-performing queries to record in the report")
	cmd.Flags().Bool("report", false, "write a timestamped report under the configured reports directory")
	return cmd
}

func evalRegressionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regression",
		Short: "Run a dataset and diff the result against a baseline report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfigAndLogger(cmd)
			if err != nil {
				return err
			}
			datasetID, _ := cmd.Flags().GetString("dataset-id")
			baselineReportID, _ := cmd.Flags().GetString("baseline-report-id")
			topK, _ := cmd.Flags().GetInt("top-k")
			worstQueries, _ := cmd.Flags().GetInt("worst-queries")
			if datasetID == "" || baselineReportID == "" {
				return fmt.Errorf("--dataset-id and --baseline-report-id are required")
			}
			if topK <= 0 {
				topK = cfg.Benchmark.TopK
			}

			port := newEnginePort(cfg.Engine)
			loader := dataset.NewLoader(cfg.Datasets.RootDir)
			runner := eval.New(loader, port, bus.NilBus{})

			result, err := runner.Run(context.Background(), datasetID, topK, eval.Options{})
			if err != nil {
				return err
			}

			writer := report.NewWriter(cfg.Reports.BaseDir)
			rep, err := writer.Write(result, worstQueries, "")
			if err != nil {
				return fmt.Errorf("writing report: %w", err)
			}

			comparison, err := report.NewComparator(writer).Compare(baselineReportID, rep.ReportID, worstQueries)
			if err != nil {
				return fmt.Errorf("comparing reports: %w", err)
			}
			return printJSON(map[string]any{"report": rep, "comparison": comparison})
		},
	}
	cmd.Flags().String("dataset-id", "", "dataset to evaluate")
	cmd.Flags().String("baseline-report-id", "", "prior report id to diff against")
	cmd.Flags().Int("top-k", 0, "cutoff for retrieval metrics (defaults to config)")
	cmd.Flags().Int("worst-queries", 10, "number of worst-performing queries to record in the report")
	return cmd
}

func performanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "performance",
		Short: "Benchmark search latency",
	}
	cmd.AddCommand(performanceBenchmarkCmd())
	return cmd
}

func performanceBenchmarkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Sample search latency over a dataset's queries and write a performance report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfigAndLogger(cmd)
			if err != nil {
				return err
			}
			datasetID, _ := cmd.Flags().GetString("dataset-id")
			topK, _ := cmd.Flags().GetInt("top-k")
			iterations, _ := cmd.Flags().GetInt("iterations")
			warmups, _ := cmd.Flags().GetInt("warmups")
			baselineRunID, _ := cmd.Flags().GetString("baseline-run-id")
			if datasetID == "" {
				return fmt.Errorf("--dataset-id is required")
			}
			if topK <= 0 {
				topK = cfg.Benchmark.TopK
			}
			if iterations <= 0 {
				iterations = cfg.Benchmark.Iterations
			}
			if warmups <= 0 {
				warmups = cfg.Benchmark.Warmups
			}

			port := newEnginePort(cfg.Engine)
			loader := dataset.NewLoader(cfg.Datasets.RootDir)
			benchmarker := perf.NewBenchmarker(loader, port)

			result, err := benchmarker.Run(context.Background(), datasetID, topK, perf.Options{
				Iterations: iterations,
				Warmups:    warmups,
			})
			if err != nil {
				return err
			}

			writer := perf.NewWriter(cfg.Reports.BaseDir)
			if err := writer.Write(result); err != nil {
				return fmt.Errorf("writing performance report: %w", err)
			}

			if baselineRunID == "" {
				return printJSON(result)
			}
			comparison, err := perf.NewComparator(writer).Compare(baselineRunID, result.RunID)
			if err != nil {
				return fmt.Errorf("comparing performance runs: %w", err)
			}
			return printJSON(map[string]any{"result": result, "comparison": comparison})
		},
	}
	cmd.Flags().String("dataset-id", "", "dataset to benchmark")
	cmd.Flags().Int("top-k", 0, "search result size (defaults to config)")
	cmd.Flags().Int("iterations", 0, "recorded iterations per query (defaults to config)")
	cmd.Flags().Int("warmups", 0, "discarded warmup iterations per query (defaults to config)")
	cmd.Flags().String("baseline-run-id", "", "prior benchmark run id to diff against")
	return cmd
}
