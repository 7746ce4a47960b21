package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yithril/docpipeline/internal/bootstrap"
	"github.com/yithril/docpipeline/internal/config"
	"github.com/yithril/docpipeline/internal/core/domain"
	"github.com/yithril/docpipeline/internal/observability/logging"
	"github.com/yithril/docpipeline/internal/observability/metrics"
)

const serviceName = "docpipeline-worker"

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		logger.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("metrics server listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsServer.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		logger.Info("worker subscribed", "subject", cfg.NATSSubject)
		return app.Queue.Subscribe(gctx, func(handlerCtx context.Context, input domain.PipelineInput) error {
			start := time.Now()
			workerMetrics.StartRun()

			res, err := app.Pipeline.Run(handlerCtx, input)
			outcome := ""
			if res != nil {
				outcome = string(res.Outcome)
			}
			workerMetrics.FinishRun(serviceName, outcome, time.Since(start), err)

			if err != nil {
				logger.Error("pipeline run failed",
					"workflow_id", input.WorkflowID(),
					"document_id", input.DocumentID,
					"error", err,
				)
				return err
			}
			logger.Info("pipeline run finished",
				"workflow_id", input.WorkflowID(),
				"document_id", input.DocumentID,
				"outcome", outcome,
				"status", string(res.Status),
				"reason", res.Reason,
				"duration", time.Since(start).String(),
			)
			return nil
		})
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("worker stopped")
}
