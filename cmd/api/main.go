package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brlegal/clausula-ai/internal/application"
	appanalysis "github.com/brlegal/clausula-ai/internal/application/analysis"
	"github.com/brlegal/clausula-ai/internal/config"
	aiclient "github.com/brlegal/clausula-ai/internal/infra/ai/openai"
	mongodb "github.com/brlegal/clausula-ai/internal/infra/db/mongo"
	"github.com/brlegal/clausula-ai/internal/infra/extract"
	"github.com/brlegal/clausula-ai/internal/infra/httpserver"
	stripegw "github.com/brlegal/clausula-ai/internal/infra/payment/stripe"
	"github.com/brlegal/clausula-ai/internal/middleware"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("service", "clausula-ai")

	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}
	cfg, err := config.Load(path)
	if err != nil {
		logger.Error("config load error", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()

	client, err := mongodb.Connect(ctx, cfg.Mongo.URI)
	if err != nil {
		logger.Error("mongo connect error", "err", err)
		os.Exit(1)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	repo := mongodb.NewAnalysisRepository(client, cfg.Mongo.Database, cfg.Mongo.Collection)

	llm := aiclient.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)

	gateway := stripegw.New(
		cfg.Stripe.SecretKey,
		cfg.Stripe.SuccessURL,
		cfg.Stripe.CancelURL,
		cfg.Stripe.UnitAmount,
		cfg.Stripe.Currency,
	)

	svc := &appanalysis.Service{
		Extractor:  extract.New(),
		Analyzer:   llm,
		Classifier: llm,
		Repo:       repo,
		Gateway:    gateway,
		Clock:      application.SystemClock{},
		Logger:     logger,
	}

	health := middleware.HealthHandler(map[string]middleware.HealthChecker{
		"mongo": middleware.CheckerFunc(func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		}),
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpserver.NewRouter(svc, cfg.Server.AllowedOrigins, health),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
			// unblock the shutdown path so deferred cleanup still runs
			stop <- os.Interrupt
		}
	}()

	<-stop
	logger.Info("shutting down server")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Error("shutdown error", "err", err)
	}
}
