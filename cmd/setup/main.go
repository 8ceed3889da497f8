package main

import (
	"context"
	"flag"
	"fmt"

	"coinvault/internal/common"
	"coinvault/internal/config"
	"coinvault/internal/ledger"

	"go.uber.org/zap"
)

var demoUsers = []ledger.RegisterParams{
	{Username: "alicej", FirstName: "Alice", LastName: "Johnson", Email: "alice@example.com", Pin: "1234"},
	{Username: "bobsmith", FirstName: "Bob", LastName: "Smith", Email: "bob@example.com", Pin: "5678"},
	{Username: "carolw", FirstName: "Carol", LastName: "Williams", Email: "carol@example.com", Pin: "4321"},
}

func seedDemoUsers(ctx context.Context, services *common.Services) {
	var created, skipped int

	for _, params := range demoUsers {
		user, err := services.Engine.Register(ctx, params)
		if err != nil {
			// Re-running setup against an existing database is expected.
			zap.L().Info("Skipping demo user",
				zap.String("email", params.Email),
				zap.Error(err))
			skipped++
			continue
		}

		wallet, err := services.DbService.GetWallet(ctx, user.Id)
		if err != nil {
			zap.L().Error("Failed to read wallet for seeded user",
				zap.String("user_id", user.Id),
				zap.Error(err))
			continue
		}

		zap.L().Info("Created demo user",
			zap.String("id", user.Id),
			zap.String("name", user.Name()),
			zap.String("email", user.Email),
			zap.String("account_number", wallet.AccountNumber),
			zap.String("balance", wallet.Balance.String()))
		created++
	}

	zap.L().Info("Demo seed complete",
		zap.Int("created", created),
		zap.Int("skipped", skipped))
}

func printCoinSummary(services *common.Services) {
	coins := services.Coins.Ids()
	common.PrintHeader("SUPPORTED COINS", common.DefaultWidth)
	for i, coin := range coins {
		fmt.Printf("%s %s\n", common.BoxPrefix(i == len(coins)-1), coin)
	}
	common.PrintFooter(fmt.Sprintf("%d coins available for trading", len(coins)), common.DefaultWidth)
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	seedFlag := flag.Bool("seed", false, "Seed demo users after schema initialization")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	zap.L().Info("Setting up SQLite database", zap.String("path", cfg.Database.Path))
	if err := services.DbService.InitSchema(); err != nil {
		zap.L().Fatal("Failed to initialize schema", zap.Error(err))
	}
	zap.L().Info("Schema initialized")

	printCoinSummary(services)

	if *seedFlag || cfg.Database.SeedDemoUsers {
		zap.L().Info("Seeding demo users")
		seedDemoUsers(ctx, services)
	}

	zap.L().Info("Initialization complete")
}
