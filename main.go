package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/sirupsen/logrus"

	"formwizard-go/config"
	"formwizard-go/database"
	api "formwizard-go/handlers"
	"formwizard-go/logger"
	"formwizard-go/middleware"
	"formwizard-go/processing"
	"formwizard-go/session"
	"formwizard-go/utils"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFile, cfg.Environment)

	if err := config.Validate(cfg, log); err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}

	cipher, err := utils.NewCipher(cfg.EncryptionKey)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize encryption")
	}

	issuer, err := utils.NewTokenIssuer(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize session tokens")
	}

	db, err := database.Initialize(cfg.DatabaseURL, cfg.Environment == "development")
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := processing.NewClient(cfg.ProcessingBackendURL, cfg.ProcessingTimeout, cfg.ProcessingRetries, log)
	registry := session.NewRegistry(client, cfg.SessionTTL, log)
	go registry.Run(ctx, time.Minute)

	limiter := middleware.NewRateLimiter(10, 50, log)
	go limiter.Run(ctx)

	h := api.NewHandlers(db, cfg, registry, issuer, client, cipher, log)

	r := h.Router()
	r.Use(limiter.Middleware)

	accessLog := log.WithField("component", "http").WriterLevel(logrus.InfoLevel)
	defer accessLog.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.CORS(cfg.AllowedOrigins)(handlers.CombinedLoggingHandler(accessLog, r)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"port":     cfg.Port,
			"database": cfg.DatabaseURL,
			"backend":  cfg.ProcessingBackendURL,
		}).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ProcessingTimeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
}
