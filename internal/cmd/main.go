package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mcdev12/partytrivia/internal/bus"
	"github.com/mcdev12/partytrivia/internal/gateway"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	config, err := loadConfig(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	database, err := setupDatabase()
	if err != nil {
		log.Fatalf("Failed to setup database: %v", err)
	}
	defer database.Close()

	natsURL := getEnv("NATS_URL", "nats://localhost:4222")

	busConfig := bus.DefaultConfig()
	busConfig.URL = natsURL
	publisher, err := bus.NewNATSPublisher(busConfig)
	if err != nil {
		log.Fatalf("Failed to connect publisher: %v", err)
	}
	defer publisher.Close()

	connectionManager := gateway.NewConnectionManager(gateway.DefaultConnectionConfig())
	consumerConfig := gateway.DefaultConsumerConfig()
	consumerConfig.URL = natsURL
	consumer, err := gateway.NewEventConsumer(connectionManager, consumerConfig)
	if err != nil {
		log.Fatalf("Failed to create event consumer: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go connectionManager.Start(ctx)
	go func() {
		if err := consumer.Start(ctx); err != nil {
			log.Printf("Event consumer stopped: %v", err)
		}
	}()

	services := setupServices(database, publisher, config)
	wsHandler := gateway.NewHandler(connectionManager, services.Participants, services.Games)
	server := setupServer(services, wsHandler)

	go func() {
		log.Printf("Listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	if err := consumer.Stop(); err != nil {
		log.Printf("Consumer stop: %v", err)
	}
}
