package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/expense-ledger-bot/internal/command_processor/consumer"
	"github.com/expense-ledger-bot/internal/command_processor/service"
	"github.com/expense-ledger-bot/internal/config"
	"github.com/expense-ledger-bot/internal/data/mongo"
	"github.com/expense-ledger-bot/internal/data/postgres"
	"github.com/expense-ledger-bot/internal/data/sheets"
	"github.com/expense-ledger-bot/internal/domain/audit"
	"github.com/expense-ledger-bot/internal/domain/ledger"
	"github.com/expense-ledger-bot/internal/interpreter"
	"github.com/expense-ledger-bot/internal/line"
	"github.com/expense-ledger-bot/internal/logger"
	"github.com/expense-ledger-bot/internal/platform/exchange"
	"github.com/expense-ledger-bot/internal/platform/messaging/consumers"
	"github.com/expense-ledger-bot/internal/platform/messaging/producers"
	"github.com/expense-ledger-bot/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("command_processor")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Command Processor",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
		"ledger_backend", cfg.Ledger.Backend,
	)

	// Initialize the ledger store for the configured backend
	var store ledger.Store
	var postgresDB *persistence.PostgresDB
	switch cfg.Ledger.Backend {
	case config.LedgerBackendPostgres:
		postgresDB, err = persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
		if err != nil {
			log.Error("Failed to initialize PostgreSQL", "error", err)
			os.Exit(1)
		}
		store = postgres.NewLedgerRepository(log, postgresDB)
	default:
		store, err = sheets.NewStore(appCtx, log, &cfg.Sheets)
		if err != nil {
			log.Error("Failed to initialize Google Sheets ledger", "error", err)
			os.Exit(1)
		}
	}

	// Initialize the optional MongoDB audit trail
	var auditRepo audit.Repository
	var mongoDB *persistence.MongoDB
	if cfg.Audit.Enabled {
		mongoDB, err = persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
		if err != nil {
			log.Error("Failed to initialize MongoDB", "error", err)
			os.Exit(1)
		}
		auditRepo = mongo.NewAuditRepository(log, mongoDB.Database())
	}

	// Initialize the rate feed and reply API clients
	rateClient := exchange.NewBOTClient(&cfg.Rate, log)
	lineClient := line.NewClient(cfg.Line.ReplyEndpoint, cfg.Line.ChannelAccessToken, cfg.Line.Timeout)

	// Initialize Kafka consumer
	kafkaConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka)

	// Initialize Kafka DLQ producer
	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}
	// dlqProducer might be nil if DLQTopic is not configured. Handler is nil-safe.

	// Wire the interpreter and processing pipeline
	interp := interpreter.New(log, &cfg.Ledger, store, rateClient)
	baseService := service.NewCommandProcessingService(log, interp, lineClient, auditRepo)

	workerPoolService, err := service.NewWorkerPoolProcessingService(
		baseService,
		service.WorkerPoolConfig{Size: cfg.WorkerPool.Size},
		log,
	)
	if err != nil {
		log.Error("Failed to initialize worker pool", "error", err)
		os.Exit(1)
	}

	// Initialize command event handler
	commandEventHandler := consumer.NewCommandEventHandler(
		log,
		workerPoolService,
		dlqProducer,
	)

	// Create error channel for service errors
	errChan := make(chan error, 1)

	// Create wait group for graceful shutdown
	var wg sync.WaitGroup

	// Start Kafka consumer in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting Kafka consumer",
			"topic", cfg.Kafka.CommandTopic,
			"group", cfg.Kafka.ConsumerGroup,
		)
		if err := kafkaConsumer.Subscribe(appCtx, cfg.Kafka.CommandTopic, cfg.Kafka.ConsumerGroup, commandEventHandler.HandleMessage); err != nil {
			errChan <- fmt.Errorf("kafka consumer error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Service error occurred", "error", err)
		serviceErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Shutdown the worker pool
	workerPoolService.Shutdown()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Wait for all goroutines to finish
	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()

	select {
	case <-wgChan:
		log.Info("All services stopped successfully")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	// Close DLQ Kafka producer
	if dlqProducer != nil { // dlqProducer can be nil if DLQTopic was not configured
		if err = dlqProducer.Close(); err != nil {
			log.Error("Error closing DLQ Kafka producer", "error", err)
		}
	}

	// Close Kafka consumer
	if err = kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}

	// Shutdown postgres connection pool
	if postgresDB != nil {
		postgresDB.Close()
	}

	// Close MongoDB connection
	if mongoDB != nil {
		if err = mongoDB.Close(shutdownCtx); err != nil {
			log.Error("Error closing MongoDB connection", "error", err)
		}
	}

	// Final status
	if serviceErr != nil {
		log.Error("Command Processor shutdown with errors", "error", serviceErr)
	}
	if err != nil {
		log.Error("Command Processor shutdown completed with errors")
	} else {
		log.Info("Command Processor shutdown completed successfully")
	}
}
