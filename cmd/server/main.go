package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mdemidov/product_api/internal/authz"
	"github.com/mdemidov/product_api/internal/config"
	"github.com/mdemidov/product_api/internal/es"
	"github.com/mdemidov/product_api/internal/httpserver"
	"github.com/mdemidov/product_api/internal/logging"
	authmw "github.com/mdemidov/product_api/internal/middleware/auth"
	loggingmw "github.com/mdemidov/product_api/internal/middleware/logging"
	"github.com/mdemidov/product_api/internal/mykafka"
	"github.com/mdemidov/product_api/internal/repo"
	"github.com/mdemidov/product_api/internal/seed"
	"github.com/mdemidov/product_api/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LOG_LEVEL)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	ctx := context.Background()
	if err := seed.RBAC(ctx, db); err != nil {
		log.Fatalf("rbac seed: %v", err)
	}
	if err := authz.Validate(ctx, db); err != nil {
		log.Fatalf("rbac check: %v", err)
	}

	var prod *mykafka.Producer
	if cfg.KAFKA_ADDRESS != "" {
		prod = mykafka.NewProducer([]string{cfg.KAFKA_ADDRESS})
	} else {
		logger.Warn("kafka disabled", "reason", "KAFKA_ADDRESS not set")
	}

	var indexer *es.Indexer
	products := &httpserver.ProductHTTP{}
	if cfg.ES_URL != "" {
		esClient, err := es.NewClient(cfg)
		if err != nil {
			log.Fatalf("elasticsearch init: %v", err)
		}
		indexer = &es.Indexer{Client: esClient, Index: es.ProductIndex}
		products.ES = esClient
		products.ESIndex = es.ProductIndex
	} else {
		logger.Warn("search disabled", "reason", "ES_URL not set")
	}

	r := &repo.GormRepo{DB: db}
	products.Svc = &service.ProductService{Repo: r, Producer: prod, Indexer: indexer}

	deps := httpserver.Deps{
		Auth: &httpserver.AuthHTTP{Svc: &service.AuthService{
			Repo:            r,
			Producer:        prod,
			DefaultRoleSlug: config.DefaultRoleSlug,
		}},
		Products: products,
		AuthMW:   &authmw.Middleware{Repo: r},
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))

	httpserver.RegisterRoutes(e, deps)

	srv := &http.Server{
		Addr:         cfg.HTTP_ADDR,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("server starting", "addr", cfg.HTTP_ADDR)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if err := prod.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
