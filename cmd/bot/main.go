package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/user/report-bot/internal/bot"
	"github.com/user/report-bot/internal/config"
	"github.com/user/report-bot/internal/db"
	"github.com/user/report-bot/internal/report"
	"github.com/user/report-bot/internal/scheduler"
	"github.com/user/report-bot/internal/schema"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	fieldSchema := schema.Default()

	dbManager, err := db.NewManager(cfg.DatabaseURL, fieldSchema, cfg.Location)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer dbManager.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := dbManager.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize database schema: %v", err)
	}

	// Assert that db.Manager implements the consumer interfaces
	var _ bot.Store = dbManager
	var _ report.ReportStore = dbManager

	b, err := bot.New(cfg, dbManager, dbManager, fieldSchema)
	if err != nil {
		log.Fatalf("Error creating bot: %v", err)
	}

	sched, err := scheduler.Start(b, cfg.Location, cfg.ReminderHour, cfg.ReminderMinute)
	if err != nil {
		log.Fatalf("Error starting reminder scheduler: %v", err)
	}

	go func() {
		log.Println("Starting bot...")
		if err := b.Start(); err != nil {
			log.Fatalf("Error starting bot: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down bot...")
	if err := sched.Shutdown(); err != nil {
		log.Printf("Error stopping scheduler: %v", err)
	}
	b.Stop()
	log.Println("Bot stopped")
}
