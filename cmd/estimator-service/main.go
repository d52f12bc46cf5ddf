package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/synaptica-ai/hospital-charges/pkg/common/config"
	"github.com/synaptica-ai/hospital-charges/pkg/common/database"
	"github.com/synaptica-ai/hospital-charges/pkg/common/logger"
	"github.com/synaptica-ai/hospital-charges/pkg/common/middleware"
	"github.com/synaptica-ai/hospital-charges/pkg/observability/metrics"
	"github.com/synaptica-ai/hospital-charges/pkg/serving"
	"github.com/synaptica-ai/hospital-charges/pkg/serving/predictor"
)

func main() {
	logger.Init()
	cfg := config.Load()

	model, err := predictor.Load(cfg.ModelArtifactPath)
	if err != nil {
		logger.Log.WithError(err).WithField("path", cfg.ModelArtifactPath).Fatal("Failed to load charge model")
	}
	logger.Log.WithFields(map[string]interface{}{
		"path":     cfg.ModelArtifactPath,
		"version":  model.Version(),
		"features": len(model.FeatureNames()),
	}).Info("Charge model loaded")

	m := metrics.New(nil)
	opts := []serving.Option{serving.WithMetrics(m)}

	if cfg.PredictionCacheEnabled {
		redisClient, err := database.OpenRedis(context.Background(), cfg)
		if err != nil {
			logger.Log.WithError(err).Warn("Prediction cache disabled; Redis is unreachable")
		} else {
			defer redisClient.Close()
			opts = append(opts, serving.WithCache(serving.NewRedisCache(redisClient, cfg.PredictionCacheTTL)))
		}
	}

	estimator, err := serving.NewEstimator(model, opts...)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to build estimator")
	}

	router := mux.NewRouter()
	router.Use(middleware.Recovery, middleware.Logging, middleware.BodyLimit(cfg.MaxRequestBody))
	router.HandleFunc("/health", healthCheck).Methods(http.MethodGet)
	router.HandleFunc("/ready", readyCheck(estimator)).Methods(http.MethodGet)
	router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	serving.NewHandler(estimator).Register(router)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.EstimatorPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.EstimatorPort,
		}).Info("Estimator Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Estimator Service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}

	logger.Log.Info("Estimator Service stopped")
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

func readyCheck(estimator *serving.Estimator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status":        "ready",
			"model_version": estimator.ModelVersion(),
		})
	}
}
