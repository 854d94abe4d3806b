package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/jmukasa/savings-challenge-engine/internal/config"
	"github.com/jmukasa/savings-challenge-engine/internal/events"
	eventskafka "github.com/jmukasa/savings-challenge-engine/internal/events/kafka"
	"github.com/jmukasa/savings-challenge-engine/internal/logging"
	"github.com/jmukasa/savings-challenge-engine/internal/repository"
	"github.com/jmukasa/savings-challenge-engine/internal/service"
)

// Batch entrypoint for the two scheduled jobs: the daily maturity sweep and
// the end-of-year interest accrual. Both are idempotent, so a crashed run is
// restarted rather than resumed.
func main() {
	var (
		job    = flag.String("job", "maturity-sweep", "job to run: maturity-sweep or annual-interest")
		year   = flag.Int("year", time.Now().UTC().Year(), "challenge year for annual-interest")
		dryRun = flag.Bool("dry-run", false, "compute the annual-interest report without posting")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("savings-sweeper", cfg.LogLevel, cfg.AppEnv)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := eventskafka.NewPublisher(cfg.KafkaBrokers)
		defer kp.Close()
		publisher = kp
	}

	entries := repository.NewEntryRepository(db)
	investments := repository.NewInvestmentRepository(db)

	recorder := service.NewRecorder(entries, publisher)
	investmentSvc := service.NewInvestmentService(investments, recorder, publisher, cfg.SweepConcurrency)
	annual := service.NewAnnualAccrual(entries, investments, recorder)

	switch *job {
	case "maturity-sweep":
		report, err := investmentSvc.SweepMaturity(ctx, time.Now().UTC())
		if err != nil {
			slog.Error("maturity sweep failed", "error", err)
			os.Exit(1)
		}
		slog.Info("maturity sweep finished",
			"checked", report.Checked,
			"matured", report.Matured,
			"failures", len(report.Failures),
		)
		for _, f := range report.Failures {
			slog.Error("maturity check failed", "investment_id", f.InvestmentID, "error", f.Err)
		}

	case "annual-interest":
		report, err := annual.Run(ctx, *year, *dryRun)
		if err != nil {
			slog.Error("annual interest run failed", "year", *year, "error", err)
			os.Exit(1)
		}
		slog.Info("annual interest run finished",
			"year", report.Year,
			"dry_run", report.DryRun,
			"posted", len(report.Posted),
			"skipped", report.Skipped,
			"zero_balance", report.ZeroBalance,
			"failures", len(report.Failures),
		)
		for _, f := range report.Failures {
			slog.Error("annual interest failed for account", "account_id", f.AccountID, "error", f.Err)
		}

	default:
		slog.Error("unknown job", "job", *job)
		os.Exit(2)
	}
}
