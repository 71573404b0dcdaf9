package main

import (
	"context"
	"time"

	"crypto-compare/src/interfaces"
	"crypto-compare/src/logger"
	"crypto-compare/src/metrics"
	"crypto-compare/src/models"
	"crypto-compare/src/server"
	"crypto-compare/src/utils"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// -----------------------------------------------------------------------------

// run wires every component and blocks until ctx is cancelled or the HTTP
// server fails
func run(ctx context.Context, config *models.MConfig, appLogger *logger.Logger) error {
	// 1. Storage
	backend, store, err := setupStore(config, appLogger)
	if err != nil {
		return err
	}
	defer backend.Close()

	// 2. Data source, metrics and controller
	m := metrics.New()
	source := setupDataSource(config)
	controller := setupController(config, source, store, m)

	// 3. Server
	var srv interfaces.IDataExchanger = server.NewDashboardServer(config, controller, m, logger.NewLogger(config, "Server"))
	controller.Subscribe(srv)

	// 4. Scheduler
	scheduler := utils.NewRefreshScheduler(
		utils.IntervalFromSeconds(config.DataSource.UpdateIntervalSeconds),
		controller.Refresh,
		logger.NewLogger(config, "Scheduler"),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Start()
	})

	g.Go(func() error {
		scheduler.Start(gctx)
		<-gctx.Done()
		scheduler.Stop()
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Stop(shutdownCtx)
	})

	return g.Wait()
}
