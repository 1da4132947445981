package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/shrawani1619/ykc-finserv-backoffice/internal/config"
	"github.com/shrawani1619/ykc-finserv-backoffice/internal/handler"
	"github.com/shrawani1619/ykc-finserv-backoffice/internal/notify"
	"github.com/shrawani1619/ykc-finserv-backoffice/internal/repository"
	"github.com/shrawani1619/ykc-finserv-backoffice/internal/service"
	"github.com/shrawani1619/ykc-finserv-backoffice/pkg/response"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := newLogger(cfg)

	db, err := initDB(cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	redisClient := initRedis(cfg)
	defer redisClient.Close()

	loanRepo := repository.NewLoanRepository(db)
	trancheRepo := repository.NewTrancheRepository(db)
	notifier := notify.NewSender(cfg.SMTP, logger)

	disbursementService := service.NewDisbursementService(loanRepo, trancheRepo, redisClient, cfg, notifier, logger)
	disbursementHandler := handler.NewDisbursementHandler(disbursementService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	router := setupRoutes(disbursementHandler, healthHandler, logger)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infof("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return logger
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(disbursementHandler *handler.DisbursementHandler, healthHandler *handler.HealthHandler, logger *logrus.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware(logger))
	router.Use(response.CORSMiddleware)

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/loans", disbursementHandler.CreateLoan).Methods("POST")
	api.HandleFunc("/loans/{loanNumber}", disbursementHandler.GetLoan).Methods("GET")
	api.HandleFunc("/loans/{loanNumber}/disbursements", disbursementHandler.AddDisbursement).Methods("POST")
	api.HandleFunc("/loans/{loanNumber}/disbursements/{trancheId}", disbursementHandler.EditDisbursement).Methods("PUT")
	api.HandleFunc("/loans/{loanNumber}/disbursements/{trancheId}", disbursementHandler.DeleteDisbursement).Methods("DELETE")
	api.HandleFunc("/invoices/figures", disbursementHandler.InvoiceFigures).Methods("POST")

	return router
}
