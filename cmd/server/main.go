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

	"github.com/snailmailtreasures/marketplace/internal/config"
	"github.com/snailmailtreasures/marketplace/internal/es"
	"github.com/snailmailtreasures/marketplace/internal/handlers"
	"github.com/snailmailtreasures/marketplace/internal/logging"
	loggingmw "github.com/snailmailtreasures/marketplace/internal/middleware/logging"
	"github.com/snailmailtreasures/marketplace/internal/mykafka"
	httpserver "github.com/snailmailtreasures/marketplace/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	config.MustNonEmpty(configuration.JWT_SECRET, "JWT_SECRET")

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	jwtSecret := []byte(configuration.JWT_SECRET)

	var prod *mykafka.Producer
	if brokers := configuration.KafkaBrokers(); len(brokers) > 0 {
		prod, err = mykafka.NewProducer(brokers)
		if err != nil {
			log.Fatal(err)
		}
	} else {
		logger.Warn("KAFKA_ADDRESS not set, event publishing disabled")
	}

	var searchHandler *handlers.SearchHandler
	if configuration.ES_URL != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			log.Fatal(err)
		}
		searchHandler = &handlers.SearchHandler{ES: esClient, Index: "items"}
	} else {
		logger.Warn("ES_URL not set, search disabled")
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), middleware.CORS())
	e.Use(loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		DB:            db,
		JWTSecret:     jwtSecret,
		AuthHandler:   &handlers.AuthHandler{DB: db, JWTSecret: jwtSecret, Producer: prod},
		ItemHandler:   &handlers.ItemHandler{DB: db, Producer: prod},
		UserHandler:   &handlers.UserHandler{DB: db, Producer: prod},
		SearchHandler: searchHandler,
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.SERVER_PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
