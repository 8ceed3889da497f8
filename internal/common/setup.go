package common

import (
	"context"
	"log"
	"strings"

	"coinvault/internal/config"
	"coinvault/internal/database"
	"coinvault/internal/events"
	"coinvault/internal/ledger"
	"coinvault/internal/models"
	"coinvault/internal/oracle"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Try to load .env file - if it doesn't exist, that's okay
	// Environment variables can be set via other means (shell export, docker, etc.)
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

type Services struct {
	DbService *database.Service
	Oracle    *oracle.Client
	Engine    *ledger.Engine
	Producer  *events.Producer
	Coins     *config.CoinSet
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	zap.L().Info("Loading supported coin set", zap.String("file", cfg.Ledger.CoinsFile))
	coins, err := config.LoadCoinSet(cfg.Ledger.CoinsFile)
	if err != nil {
		dbService.Close()
		return nil, err
	}

	oracleClient := oracle.NewClient(cfg.Oracle)

	var producer *events.Producer
	var publisher events.Publisher
	if cfg.Events.Enabled {
		producer = events.NewProducer(cfg.Events.Brokers, cfg.Events.Topic)
		publisher = producer
	}

	engine := ledger.NewEngine(dbService, oracleClient, coins, cfg.Ledger, publisher)

	return &Services{
		DbService: dbService,
		Oracle:    oracleClient,
		Engine:    engine,
		Producer:  producer,
		Coins:     coins,
	}, nil
}

// InitializeDatabaseOnly initializes just the database service without the
// price oracle or event stream. Useful for read-only operations.
func InitializeDatabaseOnly(ctx context.Context, cfg *models.Config) (*database.Service, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	return dbService, nil
}

func (cs *Services) Close() {
	if cs.Producer != nil {
		if err := cs.Producer.Close(); err != nil {
			zap.L().Warn("Failed to close event producer", zap.Error(err))
		}
	}
	if cs.DbService != nil {
		cs.DbService.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
