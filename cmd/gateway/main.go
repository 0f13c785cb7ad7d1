package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	httpHandlers "github.com/u66u/analytics-microservice/internal/adapters/http/handlers"
	kaf "github.com/u66u/analytics-microservice/internal/adapters/kafka"
	"github.com/u66u/analytics-microservice/internal/app/events"
	"github.com/u66u/analytics-microservice/internal/config"
	"github.com/u66u/analytics-microservice/internal/logging"
)

func main() {
	cfg := config.Load()
	logging.InitLogger()
	logging.LogInfo("starting event-gateway", logrus.Fields{
		"pid":  os.Getpid(),
		"port": cfg.HTTP.Port,
	})

	// один продюсер на процесс, его делят все обработчики
	prod := mustKafkaProducer(cfg)
	defer prod.Close()

	svc := events.NewService(prod)
	h := httpHandlers.NewEventHandlers(svc)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.StripSlashes)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{cfg.CORS.AllowedOrigin},
		AllowedMethods: []string{http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         cfg.CORS.MaxAge,
	}))
	r.Get("/health", httpHandlers.HealthHandler)
	r.Post("/event", h.IngestHandler)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logging.LogInfo("http server listening", logrus.Fields{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.LogError("http server ListenAndServe failed", err, logrus.Fields{"addr": srv.Addr})
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	logging.LogInfo("shutdown signal received", logrus.Fields{"signal": sig.String()})

	shCtx, shCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shCancel()
	if err := srv.Shutdown(shCtx); err != nil {
		logging.LogError("http server shutdown failed", err, logrus.Fields{})
	} else {
		logging.LogInfo("http server shutdown complete", logrus.Fields{})
	}
	logging.LogInfo("bye", logrus.Fields{})
}

func mustKafkaProducer(cfg config.Config) kaf.Producer {
	p, err := kaf.NewProducer(kaf.ProducerConfig{
		Brokers:        cfg.Kafka.Brokers,
		ClientID:       cfg.Kafka.ClientID,
		Topic:          cfg.Kafka.Topic,
		Acks:           cfg.Kafka.Acks,
		Compression:    cfg.Kafka.Compression,
		BatchBytes:     cfg.Kafka.BatchBytes,
		Linger:         cfg.Kafka.Linger,
		Retries:        cfg.Kafka.Retries,
		Idempotent:     cfg.Kafka.Idempotent,
		PublishTimeout: cfg.Kafka.PublishTimeout,
	})
	if err != nil {
		logging.LogError("kafka producer creation failed", err, logrus.Fields{
			"brokers": cfg.Kafka.Brokers,
		})
		os.Exit(1)
	}
	logging.LogInfo("kafka producer created", logrus.Fields{
		"brokers":    cfg.Kafka.Brokers,
		"topic":      cfg.Kafka.Topic,
		"client_id":  cfg.Kafka.ClientID,
		"acks":       cfg.Kafka.Acks,
		"idempotent": cfg.Kafka.Idempotent,
	})
	return p
}
