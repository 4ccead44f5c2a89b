package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lunaml/luna16/internal/config"
	"github.com/lunaml/luna16/internal/datasets"
	"github.com/lunaml/luna16/internal/hyperparams"
	"github.com/lunaml/luna16/internal/messaging"
	"github.com/lunaml/luna16/internal/models"
	"github.com/lunaml/luna16/internal/pkg/logger"
	"github.com/lunaml/luna16/internal/registry"
	"github.com/lunaml/luna16/internal/training"

	"github.com/lunaml/luna16/internal/bootstrap"
)

var (
	trainName    string
	trainVersion string
	trainEpochs  int
	batchSize    int
	learningRate float64
	momentum     float64
	sampleCount  int
	featureDim   int
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Run a training with experiment tracking",
	Long: `Run a training with experiment tracking.

The run opens its tracking backends up front, emits progress messages
throughout the loop, and tears every backend down at the end.

Example:
  luna16 train --name classification --version v3 --epochs 10`,
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().StringVar(&trainName, "name", "classification", "Training name used for the run and checkpoints")
	trainCmd.Flags().StringVar(&trainVersion, "version", "v1", "Version tag for the resulting model")
	trainCmd.Flags().IntVar(&trainEpochs, "epochs", 0, "Number of epochs (overrides config)")
	trainCmd.Flags().IntVar(&batchSize, "batch-size", 0, "Mini-batch size (overrides config)")
	trainCmd.Flags().Float64Var(&learningRate, "lr", 0, "Learning rate (overrides config)")
	trainCmd.Flags().Float64Var(&momentum, "momentum", 0, "SGD momentum (overrides config)")
	trainCmd.Flags().IntVar(&sampleCount, "samples", 2000, "Number of synthetic samples")
	trainCmd.Flags().IntVar(&featureDim, "dim", 16, "Number of features per sample")
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlagOverrides(cfg)

	if err := logger.Init(logger.Config(cfg.Log)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	params := hyperparams.New()
	params.Set("epochs", cfg.Training.Epochs)
	params.Set("batch_size", cfg.Training.BatchSize)
	params.Set("learning_rate", cfg.Training.LearningRate)
	params.Set("momentum", cfg.Training.Momentum)
	params.Set("validation_cadence", cfg.Training.ValidationCadence)
	params.Set("seed", cfg.Training.Seed)

	promReg := prometheus.NewRegistry()
	reg, dispatcher, err := bootstrap.NewRegistry(cfg, promReg, params)
	if err != nil {
		return fmt.Errorf("failed to build registry: %w", err)
	}

	if cfg.Metrics.Enabled {
		serveMetrics(cfg.Metrics.Addr, promReg)
	}

	model := models.NewLinear(featureDim, cfg.Training.LearningRate, cfg.Training.Momentum)
	data := datasets.NewSynthetic(sampleCount, featureDim, cfg.Training.BatchSize, cfg.Training.Seed)
	trainer := training.New(trainName, trainVersion, dispatcher, cfg.Training.ValidationCadence)

	scores, fitErr := trainer.Fit(context.Background(), model, data, cfg.Training.Epochs)

	// Teardown always runs; a dispatch failure and a cleanup failure are
	// reported independently, neither masks the other.
	closeErr := reg.CloseAll()

	if fitErr != nil {
		var handlerErr *messaging.HandlerError
		if errors.As(fitErr, &handlerErr) {
			logger.Error("training aborted, observability backend failed", zap.Error(fitErr))
		} else {
			logger.Error("training failed", zap.Error(fitErr))
		}
	}
	if closeErr != nil {
		var cleanup *registry.CleanupError
		if errors.As(closeErr, &cleanup) {
			for _, failure := range cleanup.Failures {
				logger.Error("service cleanup failed",
					zap.String("service", string(failure.Key)),
					zap.Error(failure.Err),
				)
			}
		} else {
			logger.Error("teardown failed", zap.Error(closeErr))
		}
	}

	if fitErr != nil {
		return fitErr
	}
	if closeErr != nil {
		return closeErr
	}

	for name, value := range scores {
		logger.Info("final score", zap.String("metric", name), zap.Float64("value", value))
	}
	return nil
}

func applyFlagOverrides(cfg *config.Config) {
	if trainEpochs > 0 {
		cfg.Training.Epochs = trainEpochs
	}
	if batchSize > 0 {
		cfg.Training.BatchSize = batchSize
	}
	if learningRate > 0 {
		cfg.Training.LearningRate = learningRate
	}
	if momentum > 0 {
		cfg.Training.Momentum = momentum
	}
}

// serveMetrics exposes the Prometheus collectors for the lifetime of the
// training process. Errors only get logged; a dead scrape endpoint is no
// reason to stop a run.
func serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("serving metrics", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", zap.Error(err))
		}
	}()
}
