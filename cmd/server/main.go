package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace-service/config"
	"marketplace-service/internal/api"
	"marketplace-service/internal/broker"
	"marketplace-service/internal/redisclient"
	"marketplace-service/internal/service"
	"marketplace-service/internal/store"
	"marketplace-service/internal/util"
	"marketplace-service/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting marketplace service")

	tp, err := util.InitTracer("marketplace-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	var redisClient *redisclient.Client
	if cfg.Redis.Enabled {
		redisClient, err = redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		log.Println("Redis connected")
	}

	var eventPublisher *broker.EventPublisher
	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents)
		defer producer.Close()
		eventPublisher = broker.NewEventPublisher(producer)
		log.Println("Kafka producer initialized")
	}

	inventoryGuard := service.NewInventoryGuard(db, redisClient)
	catalogService := service.NewCatalogService(db, inventoryGuard, eventPublisher,
		api.ProductURIResolver(cfg.Server.BaseURL))
	cartService := service.NewCartService(db, catalogService)
	orderLedger := service.NewOrderLedger(db)
	checkoutService := service.NewCheckoutService(db, cartService, catalogService, orderLedger, eventPublisher)
	userService := service.NewUserService(db)

	ctx := context.Background()
	if err := inventoryGuard.SyncToCache(ctx); err != nil {
		log.Printf("Failed to sync stock to Redis: %v", err)
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var eventsWorker *worker.EventsWorker
	if cfg.Kafka.Enabled {
		consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents, cfg.Kafka.ConsumerGroup)
		eventsWorker = worker.NewEventsWorker(consumer)
		go func() {
			if err := eventsWorker.Start(workerCtx); err != nil {
				log.Printf("Events worker error: %v", err)
			}
		}()
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(userService, catalogService, cartService, checkoutService, orderLedger)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	if eventsWorker != nil {
		eventsWorker.Stop()
	}

	log.Println("Server exited")
}
