package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/nrjais/docqa/internal/config"
	"github.com/nrjais/docqa/internal/db"
	"github.com/nrjais/docqa/internal/metrics"
	"github.com/nrjais/docqa/internal/report"
	"github.com/nrjais/docqa/internal/rules"
	"github.com/nrjais/docqa/internal/store"
	"github.com/nrjais/docqa/internal/validator"
)

var errNoConnection = errors.New("no MongoDB connection configured: set mongo_url or database_connection.uri in the rule file")

var runFlags struct {
	rules       string
	jsonPath    string
	metricsPath string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Validate the collections declared in the rule file",
	Long: `Validate every collection declared in the rule file and print a summary.

The command exits with status 1 when any collection fails validation.

Examples:
  # Validate with the configured rule file
  docqa run

  # Write a compressed JSON report and a Prometheus textfile
  docqa run --rules shop.yaml --report-json report.json.zst --metrics-file docqa.prom`,
	RunE: runValidation,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runFlags.rules, "rules", "", "rule file path (uses rules_path if not specified)")
	runCmd.Flags().StringVar(&runFlags.jsonPath, "report-json", "", "write the JSON report to this path (.zst compresses)")
	runCmd.Flags().StringVar(&runFlags.metricsPath, "metrics-file", "", "write Prometheus metrics to this textfile")
}

func runValidation(cmd *cobra.Command, args []string) error {
	set, err := rules.Load(lo.CoalesceOrEmpty(runFlags.rules, cfg.RulesPath))
	if err != nil {
		return err
	}

	mongoURL, dbName, err := connectionTarget(cfg, set)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, err := db.ConnectMongo(ctx, mongoURL)
	if err != nil {
		return fmt.Errorf("failed to connect to Mongo: %w", err)
	}
	defer func() {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer disconnectCancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			slog.Warn("Error disconnecting from MongoDB", "error", err)
		}
	}()
	slog.Info("Target MongoDB database", "database", dbName, "collections", set.Collections.Len())

	v := validator.New(db.NewMongoSource(mongoClient, dbName), validator.Options{
		SampleLimit: cfg.Validation.SampleLimit,
		ChunkSize:   cfg.Validation.ChunkSize,
		Timeout:     cfg.Validation.CollectionTimeout(),
	})
	rep := report.NewRunner(v, cfg.Validation.Workers).Run(ctx, set)

	if err := report.WriteSummary(cmd.OutOrStdout(), rep); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	if err := publish(ctx, cfg, rep); err != nil {
		return err
	}
	if !rep.Passed() {
		return fmt.Errorf("%w: %d of %d collections failed", report.ErrRunFailed, rep.FailedCount, rep.TotalCollections)
	}
	return nil
}

// connectionTarget resolves the Mongo URI and database. Application config
// takes precedence over the rule file's database_connection block.
func connectionTarget(cfg *config.Config, set *rules.RuleSet) (string, string, error) {
	mongoURL := lo.CoalesceOrEmpty(cfg.MongoURL, set.Connection.URI)
	if mongoURL == "" {
		return "", "", errNoConnection
	}
	dbName, err := db.DatabaseName(mongoURL, lo.CoalesceOrEmpty(cfg.MongoDatabase, set.Connection.Database))
	if err != nil {
		return "", "", err
	}
	return mongoURL, dbName, nil
}

// publish writes the optional report outputs. Every output is attempted.
func publish(ctx context.Context, cfg *config.Config, rep report.RunReport) error {
	var errs []error

	if path := lo.CoalesceOrEmpty(runFlags.jsonPath, cfg.Report.JSONPath); path != "" {
		errs = append(errs, report.WriteJSON(path, rep))
	}

	if path := lo.CoalesceOrEmpty(runFlags.metricsPath, cfg.Report.MetricsPath); path != "" {
		collector := metrics.NewCollector(nil)
		collector.Observe(rep)
		errs = append(errs, collector.WriteTextfile(path))
	}

	if cfg.Store.Driver != "" {
		errs = append(errs, saveRun(ctx, cfg, rep))
	}

	return errors.Join(errs...)
}

func saveRun(ctx context.Context, cfg *config.Config, rep report.RunReport) error {
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	defer st.Close()

	id, err := st.SaveRun(ctx, rep)
	if err != nil {
		return err
	}
	slog.Info("Run saved to history", "id", id, "driver", cfg.Store.Driver)
	return nil
}
