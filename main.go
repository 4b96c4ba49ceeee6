package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cbi/config"
	"cbi/database"
	"cbi/logger"
	"cbi/middleware"
	"cbi/server"
	"cbi/utils"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	zl, err := logger.New(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync()

	clock, err := utils.NewClock(cfg.Timezone)
	if err != nil {
		zl.Fatal("invalid timezone", zap.Error(err))
	}

	db, err := database.Open(database.OptionsFromConfig(cfg))
	if err != nil {
		zl.Fatal("failed to connect to the database", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	defer db.Close()
	zl.Info("connected to the database", zap.String("driver", cfg.DBDriver))

	creds, err := middleware.NewStaticCredentials(cfg.AdminUsername, cfg.AdminPassword, cfg.AdminPasswordHash, cfg.SaltRound)
	if err != nil {
		zl.Fatal("invalid admin credentials", zap.Error(err))
	}

	svc := server.NewServices(db, clock, zl)
	app := server.New(server.Deps{
		Config: cfg,
		Logger: zl,
		DB:     db,
		Clock:  clock,
		Auth:   creds,
	}, svc)

	scheduler, err := utils.StartSummaryScheduler(cfg.SummaryCron, clock, svc.Catalog, zl)
	if err != nil {
		zl.Fatal("invalid SUMMARY_CRON", zap.Error(err))
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	zl.Info("server is running", zap.String("port", cfg.Port))
	if err := serve(func() error { return app.Listen(":" + cfg.Port) }, quit); err != nil {
		zl.Fatal("server failed to start", zap.Error(err))
	}

	zl.Info("shutting down")
	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zl.Error("shutdown", zap.Error(err))
	}
}

// serve runs listen until it fails or a shutdown signal arrives. A nil error means a signal was
// received.
func serve(listen func() error, quit <-chan os.Signal) error {
	errs := make(chan error, 1)
	go func() { errs <- listen() }()

	select {
	case err := <-errs:
		if err == nil {
			return errors.New("listener closed unexpectedly")
		}
		return err
	case <-quit:
		return nil
	}
}
