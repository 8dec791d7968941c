package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"companion-counselling-be/internal/bootstrap"
	"companion-counselling-be/internal/config"
	"companion-counselling-be/internal/server"
	"companion-counselling-be/internal/tracer"
	"companion-counselling-be/pkg/database"
	"companion-counselling-be/pkg/events"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Tracer is a no-op unless OTEL_ENABLED=true
	shutdownTracer := tracer.InitTracer(cfg.Tracing, cfg.App.Environment)
	defer shutdownTracer(context.Background())

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.App.Environment == "development")
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}
	if os.Getenv("AUTO_MIGRATE") == "true" {
		if err := database.Migrate(gormDB); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
	}

	// 3. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(gormDB, cfg)
	if err != nil {
		log.Fatalf("Unable to build container: %v", err)
	}
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Start Background Services
	go container.WebSocketHub.Run(ctx)

	if err := container.ConsumerService.Consume(ctx); err != nil {
		log.Fatalf("Unable to start consumer: %v", err)
	}

	go container.ReaperService.Run(ctx, cfg.Video.ReaperInterval)

	if container.NatsSubscriber != nil {
		err := container.NatsSubscriber.Subscribe(ctx, events.PostApproved, "counselling-post-approved", container.IngestService.HandlePostApproved)
		if err != nil {
			log.Printf("[WARN] Failed to subscribe to %s: %v", events.PostApproved, err)
		}
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// 6. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
