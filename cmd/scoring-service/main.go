package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/synaptica-ai/cvdrisk/pkg/common/config"
	"github.com/synaptica-ai/cvdrisk/pkg/common/database"
	"github.com/synaptica-ai/cvdrisk/pkg/common/kafka"
	"github.com/synaptica-ai/cvdrisk/pkg/common/logger"
	"github.com/synaptica-ai/cvdrisk/pkg/common/models"
	"github.com/synaptica-ai/cvdrisk/pkg/middleware"
	"github.com/synaptica-ai/cvdrisk/pkg/observability/metrics"
	"github.com/synaptica-ai/cvdrisk/pkg/risk"
	"github.com/synaptica-ai/cvdrisk/pkg/scoring"
	"github.com/synaptica-ai/cvdrisk/pkg/storage"
)

func main() {
	logger.Init()
	cfg := config.Load()

	catalog, err := risk.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load model catalog")
	}
	served, err := catalog.Build()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to build model catalog")
	}

	var repo *scoring.Repository
	if cfg.PersistScores {
		db, err := database.Open(cfg)
		if err != nil {
			logger.Log.WithError(err).Fatal("Failed to connect to database")
		}
		defer database.Close(db)

		repo = scoring.NewRepository(db)
		if err := repo.AutoMigrate(); err != nil {
			logger.Log.WithError(err).Fatal("Failed to migrate score log tables")
		}
	}

	redisClient := database.NewRedis(cfg)
	defer redisClient.Close()
	records := storage.NewRecordStore(redisClient, cfg.RecordPrefix, cfg.RecordTTL)

	var publisher scoring.Publisher
	var consumer *kafka.Consumer
	if cfg.KafkaEnabled {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaScoresTopic)
		defer producer.Close()
		publisher = producer

		consumer = kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaRecordsTopic, cfg.KafkaGroupID)
		defer consumer.Close()
	}

	service := scoring.NewService(served, repo, records, publisher, scoring.Settings{
		Workers:  cfg.BatchWorkers,
		MaxBatch: cfg.MaxBatchSize,
		Source:   "scoring-service",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if consumer != nil {
		go func() {
			err := consumer.Consume(ctx, recordHandler(service))
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Log.WithError(err).Error("Record consumer stopped")
			}
		}()
	}

	router := mux.NewRouter()
	router.Use(middleware.Recovery, middleware.Logging, middleware.CORS)
	router.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	router.HandleFunc("/health", healthCheck).Methods(http.MethodGet)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	scoring.NewHTTPHandler(service, cfg.MaxRequestBody).Register(router)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host":   cfg.ServerHost,
			"port":   cfg.ServerPort,
			"models": len(served),
			"kafka":  cfg.KafkaEnabled,
		}).Info("Scoring Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()

	logger.Log.Info("Shutting down Scoring Service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}

	logger.Log.Info("Scoring Service stopped")
}

// recordHandler scores clinical-record events. Events that fail validation
// are poison and get committed.
func recordHandler(service *scoring.Service) kafka.EventHandler {
	return func(ctx context.Context, event models.Event) error {
		if event.Type != "" && event.Type != models.EventClinicalRecord {
			metrics.ObserveEvent(metrics.StatusInvalid)
			return fmt.Errorf("%w: unexpected event type %q", kafka.ErrPoison, event.Type)
		}
		err := service.HandleRecordEvent(ctx, event)
		switch {
		case err == nil:
			metrics.ObserveEvent(metrics.StatusOK)
			return nil
		case scoring.IsValidationError(err):
			metrics.ObserveEvent(metrics.StatusInvalid)
			return fmt.Errorf("%w: %v", kafka.ErrPoison, err)
		default:
			metrics.ObserveEvent(metrics.StatusError)
			return err
		}
	}
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
