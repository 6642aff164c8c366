package cmd

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/alchrem-sys/botbotbbot/bot"
	"github.com/alchrem-sys/botbotbbot/config"
	"github.com/alchrem-sys/botbotbbot/database"
	"github.com/alchrem-sys/botbotbbot/repository"
	"github.com/alchrem-sys/botbotbbot/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting alpha ledger bot...")

	// Load configuration
	cfg := config.Get()

	// Initialize the ledger store
	var (
		ledgerRepo service.LedgerRepository
		db         *database.DB
		err        error
	)
	switch cfg.StorageBackend {
	case config.StoragePostgres:
		log.Println("Connecting to database...")
		db, err = database.NewConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		ledgerRepo = repository.NewLedgerRepository(db)
		log.Println("Database connection established successfully")
	case config.StorageFile:
		log.Printf("Opening ledger file %s...", cfg.DataFile)
		ledgerRepo, err = repository.NewFileRepository(cfg.DataFile)
		if err != nil {
			return fmt.Errorf("failed to open ledger file: %w", err)
		}
	default:
		return fmt.Errorf("unknown storage backend: %s", cfg.StorageBackend)
	}

	// Initialize services. One mutex guards all store mutations so entries,
	// resets and the scheduler's cycle reset never interleave.
	log.Println("Initializing services...")
	storeMu := &sync.Mutex{}
	ledgerService := service.NewLedgerService(ledgerRepo, storeMu)
	ackService := service.NewAckService(ledgerRepo, storeMu)

	// Initialize the Telegram bot
	log.Println("Initializing Telegram bot...")
	telegramBot, err := bot.New(bot.Config{Token: cfg.TelegramToken})
	if err != nil {
		return fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}

	broadcastService := service.NewBroadcastService(ledgerRepo, telegramBot)
	dispatcher := service.NewDispatcher(ledgerService, ackService, broadcastService, cfg.AdminID)

	// Start the daily reminder scheduler
	reminderConfig := service.ReminderConfig{
		Hour:                cfg.ReminderHour,
		Minute:              cfg.ReminderMinute,
		EscalationDelay:     cfg.EscalationDelay,
		EscalateUnackedOnly: cfg.EscalateUnackedOnly,
	}
	scheduler := service.NewReminderScheduler(reminderConfig, ledgerRepo, ackService, telegramBot)
	stopScheduler := scheduler.Start(ctx)

	// Consume updates until shutdown
	log.Printf("Bot is running in %s mode...", cfg.Environment)
	telegramBot.Run(ctx, dispatcher)

	// Cleanup resources
	log.Println("Shutting down bot...")
	stopScheduler()
	telegramBot.Close()

	// Give cleanup operations time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if db != nil {
		log.Println("Closing database connection...")
		db.Close()
	}

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}
