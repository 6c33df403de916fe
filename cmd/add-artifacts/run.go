package main

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mlflow-artifact-uploader/internal/adapters/primary/console"
	"mlflow-artifact-uploader/internal/adapters/secondary/localfs"
	"mlflow-artifact-uploader/internal/adapters/secondary/mlflow"
	"mlflow-artifact-uploader/internal/adapters/secondary/transport"
	"mlflow-artifact-uploader/internal/config"
	"mlflow-artifact-uploader/internal/core/services"
)

func runAttach(cmd *cobra.Command, v *viper.Viper) error {
	cfg, err := config.FromViper(v)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	initLogger(cfg)

	return attach(cmd.Context(), cfg, console.NewPrinter(cmd.OutOrStdout()))
}

// attach returns an error only when the experiment or its runs cannot be
// resolved. Per-run and verification failures are reported and swallowed.
func attach(ctx context.Context, cfg *config.Config, printer *console.Printer) error {
	printer.Banner("Adding artifacts to runs")
	printer.Config(cfg)

	// ============================================================================
	// Wiring
	// ============================================================================

	httpClient := transport.NewHTTPClient(&cfg.Tracking, "")
	tracking := mlflow.NewTrackingClient(&cfg.Tracking, httpClient)
	modelStore := localfs.NewModelStore(cfg.Attach.ModelsDir)
	workDir := localfs.NewWorkDir(cfg.Attach.WorkDir)

	discoverySvc := services.NewDiscoveryService(tracking)
	attachmentSvc := services.NewAttachmentService(tracking, modelStore, workDir, printer, services.AttachmentOptions{
		ResumeRun: cfg.Attach.ResumeRun,
	})
	verificationSvc := services.NewVerificationService(tracking, cfg.Attach.VerifyRecursive)

	// ============================================================================
	// Phases
	// ============================================================================

	printer.Banner("Fetching runs")
	exp, runs, err := discoverySvc.FindRuns(ctx, cfg.Attach.ExperimentName)
	if err != nil {
		log.WithError(err).WithField("experiment", cfg.Attach.ExperimentName).Error("run discovery failed")
		printer.Fatal(err)
		return err
	}
	printer.Runs(exp, runs)

	printer.Banner("Adding artifacts")
	summary := attachmentSvc.AttachAll(ctx, runs)
	printer.Summary(summary)
	log.WithFields(log.Fields{
		"attached":  summary.Attached,
		"skipped":   summary.Skipped,
		"failed":    summary.Failed,
		"artifacts": summary.Artifacts,
	}).Info("artifact attachment finished")

	printer.Banner("Verifying artifacts")
	results, err := verificationSvc.Verify(ctx, exp.ID)
	printer.Verification(results)
	if err != nil {
		log.WithError(err).Error("artifact verification failed")
		printer.VerificationFailed(err)
	}

	return nil
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
