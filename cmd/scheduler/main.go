package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/shrawani1619/ykc-finserv-backoffice/internal/config"
	"github.com/shrawani1619/ykc-finserv-backoffice/internal/repository"
	"github.com/shrawani1619/ykc-finserv-backoffice/internal/service"
)

// The scheduler repairs drift between the cached disbursed totals on loans
// and the disbursement rows themselves. Drift should not happen, but the
// ledger's double cap check tolerates it and this job removes it.
func main() {
	_ = godotenv.Load()

	logger := logrus.New()
	logger.Info("Starting reconciliation scheduler...")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	loanRepo := repository.NewLoanRepository(db)
	trancheRepo := repository.NewTrancheRepository(db)
	svc := service.NewDisbursementService(loanRepo, trancheRepo, redisClient, cfg, nil, logger)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		logger.Fatalf("Invalid scheduler timezone %q: %v", cfg.Scheduler.Timezone, err)
	}

	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))

	_, err = c.AddFunc(cfg.Scheduler.ReconcileSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		logger.Info("Running loan totals reconciliation...")
		repaired, err := svc.ReconcileLoanTotals(ctx)
		if err != nil {
			logger.WithError(err).Error("Reconciliation failed")
			return
		}
		logger.Infof("Reconciliation finished, %d loans repaired", repaired)
	})
	if err != nil {
		logger.Fatalf("Error scheduling reconciliation job: %v", err)
	}

	c.Start()
	logger.Info("Scheduler started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down scheduler...")
	<-c.Stop().Done()
	logger.Info("Scheduler stopped")
}
