package main

import (
	"context"
	"encoding/csv"
	"flag"
	"log"
	"os"

	"cbi/config"
	"cbi/database"
	"cbi/logger"
	"cbi/models"
	"cbi/services"
	"cbi/utils"

	"go.uber.org/zap"
)

func main() {
	path := flag.String("file", "submissions.csv", "CSV file to import")
	dryRun := flag.Bool("dry-run", false, "parse the file without writing")
	flag.Parse()

	// Load config and connect to database
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

	// Open CSV file
	file, err := os.Open(*path)
	if err != nil {
		zl.Fatal("failed to open CSV file", zap.String("file", *path), zap.Error(err))
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		zl.Fatal("failed to read CSV", zap.Error(err))
	}

	inputs, skipped, err := parseRecords(records, clock)
	if err != nil {
		zl.Fatal("failed to parse CSV", zap.Error(err))
	}
	zl.Info("rows parsed", zap.Int("submissions", len(inputs)), zap.Int("skipped", skipped))
	if *dryRun {
		return
	}

	db, err := database.Open(database.OptionsFromConfig(cfg))
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	recorder := &services.Recorder{DB: db, Clock: clock, Logger: zl}
	inserted, failed := importAll(context.Background(), recorder, inputs, zl)

	zl.Info("import complete",
		zap.Int("inserted", inserted),
		zap.Int("failed", failed),
		zap.Int("skipped", skipped),
	)
	if failed > 0 {
		os.Exit(1)
	}
}

// recorder is the part of services.Recorder the import needs.
type recorder interface {
	Record(ctx context.Context, in services.SubmissionInput) (*models.Submission, error)
}

// importAll records every input in file order so later rows receive larger ids.
func importAll(ctx context.Context, r recorder, inputs []services.SubmissionInput, zl *zap.Logger) (inserted, failed int) {
	for i, in := range inputs {
		if i%1000 == 0 {
			zl.Debug("processing row", zap.Int("row", i+1))
		}
		if _, err := r.Record(ctx, in); err != nil {
			zl.Error("error inserting submission", zap.String("ticker", in.Ticker), zap.Error(err))
			failed++
			continue
		}
		inserted++
	}
	return inserted, failed
}
