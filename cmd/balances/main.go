package main

import (
	"context"
	"flag"
	"fmt"

	"coinvault/internal/common"
	"coinvault/internal/config"
	"coinvault/internal/database"
	"coinvault/internal/models"

	"go.uber.org/zap"
)

type balanceStats struct {
	totalUsers        int
	totalHoldings     int
	usersWithHoldings int
}

func printHolding(holding models.Holding, isLast bool) {
	fmt.Printf("%s %-15s: %20s (updated: %s)\n",
		common.BoxPrefix(isLast),
		holding.Coin,
		holding.Amount.String(),
		holding.UpdatedAt.Format("2006-01-02 15:04:05"))
}

func printUserHeader(user common.UserInfo, wallet *models.Wallet, holdingCount int) {
	fmt.Printf("\n┌─ User: %s (%s)\n", user.Name, user.Email)
	fmt.Printf("│  ID: %s\n", user.Id)
	fmt.Printf("│  Account: %s\n", wallet.AccountNumber)
	fmt.Printf("│  Balance: %s USD (v%d)\n", wallet.Balance.String(), wallet.Version)
	fmt.Printf("│  Holdings: %d\n", holdingCount)
}

func processUser(ctx context.Context, user common.UserInfo, dbService *database.Service) (int, error) {
	wallet, err := dbService.GetWallet(ctx, user.Id)
	if err != nil {
		return 0, fmt.Errorf("failed to get wallet: %w", err)
	}

	holdings, err := dbService.GetHoldings(ctx, user.Id)
	if err != nil {
		return 0, fmt.Errorf("failed to get holdings: %w", err)
	}

	printUserHeader(user, wallet, len(holdings))
	for i, holding := range holdings {
		printHolding(holding, i == len(holdings)-1)
	}

	return len(holdings), nil
}

func processUsersAndGenerateReport(ctx context.Context, users []common.UserInfo, dbService *database.Service, logger *zap.Logger) balanceStats {
	stats := balanceStats{}

	for _, user := range users {
		stats.totalUsers++

		holdingCount, err := processUser(ctx, user, dbService)
		if err != nil {
			logger.Error("Failed to process user",
				zap.String("user_id", user.Id),
				zap.String("user_name", user.Name),
				zap.Error(err))
			continue
		}

		if holdingCount > 0 {
			stats.usersWithHoldings++
			stats.totalHoldings += holdingCount
		}
	}

	return stats
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	emailFlag := flag.String("email", "", "Filter by specific user email (optional)")
	flag.Parse()

	logger.Info("Starting balance query")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Read-only: no oracle or event stream needed.
	logger.Info("Connecting to database", zap.String("path", cfg.Database.Path))
	dbService, err := common.InitializeDatabaseOnly(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	users, err := common.InitializeUsers(ctx, dbService, *emailFlag, logger)
	if err != nil {
		logger.Fatal("Failed to initialize users", zap.Error(err))
	}

	common.PrintHeader("WALLET BALANCE REPORT", common.DefaultWidth)

	stats := processUsersAndGenerateReport(ctx, users, dbService, logger)

	summary := fmt.Sprintf("SUMMARY: %d users with holdings (%d total holdings across %d users queried)",
		stats.usersWithHoldings, stats.totalHoldings, stats.totalUsers)
	common.PrintFooter(summary, common.DefaultWidth)

	logger.Info("Balance query completed",
		zap.Int("users_queried", stats.totalUsers),
		zap.Int("users_with_holdings", stats.usersWithHoldings),
		zap.Int("total_holdings", stats.totalHoldings))
}
