package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"coinvault/internal/common"
	"coinvault/internal/config"
	"coinvault/internal/identity"
	"coinvault/internal/ledger"

	"go.uber.org/zap"
)

func parseAndValidateFlags() (*ledger.RegisterParams, error) {
	usernameFlag := flag.String("username", "", "Username, 4-20 letters and numbers (required)")
	firstNameFlag := flag.String("first-name", "", "First name (required)")
	lastNameFlag := flag.String("last-name", "", "Last name (required)")
	emailFlag := flag.String("email", "", "Email address (required)")
	pinFlag := flag.String("pin", "", "Transaction pin, at least 4 characters (required)")
	flag.Parse()

	if *usernameFlag == "" || *firstNameFlag == "" || *lastNameFlag == "" || *emailFlag == "" || *pinFlag == "" {
		return nil, fmt.Errorf("all flags are required: --username, --first-name, --last-name, --email, --pin")
	}

	return &ledger.RegisterParams{
		Username:  *usernameFlag,
		FirstName: *firstNameFlag,
		LastName:  *lastNameFlag,
		Email:     *emailFlag,
		Pin:       *pinFlag,
	}, nil
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	params, err := parseAndValidateFlags()
	if err != nil {
		zap.L().Fatal("Invalid flags", zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	user, err := services.Engine.Register(ctx, *params)
	if err != nil {
		common.PrintHeader("REGISTRATION FAILED", common.DefaultWidth)
		fmt.Printf("Error: %v\n", err)
		common.PrintSeparator("=", common.DefaultWidth)
		zap.L().Fatal("Registration failed", zap.String("email", params.Email), zap.Error(err))
	}

	wallet, err := services.DbService.GetWallet(ctx, user.Id)
	if err != nil {
		zap.L().Fatal("Failed to read wallet for new user", zap.Error(err))
	}
	addresses, err := services.DbService.GetAddresses(ctx, user.Id)
	if err != nil {
		zap.L().Fatal("Failed to read deposit addresses for new user", zap.Error(err))
	}

	common.PrintHeader("REGISTRATION SUCCESSFUL", common.DefaultWidth)
	fmt.Printf("User:           %s (%s)\n", user.Name(), user.Email)
	fmt.Printf("ID:             %s\n", user.Id)
	fmt.Printf("Account Number: %s\n", wallet.AccountNumber)
	fmt.Printf("Balance:        %s USD\n", wallet.Balance.String())
	fmt.Println("\nDeposit addresses:")
	for i, address := range addresses {
		fmt.Printf("%s %-15s: %s\n", common.BoxPrefix(i == len(addresses)-1), address.Coin, address.Address)
	}
	common.PrintSeparator("=", common.DefaultWidth)

	// Issue a credential for immediate use when verification is configured.
	if cfg.Identity.JWTSecret != "" {
		resolver, err := identity.NewResolver(cfg.Identity.JWTSecret)
		if err != nil {
			zap.L().Fatal("Failed to initialize credential resolver", zap.Error(err))
		}
		token, err := resolver.IssueToken(user.Id, 24*time.Hour)
		if err != nil {
			zap.L().Fatal("Failed to issue credential", zap.Error(err))
		}
		fmt.Printf("\nBearer token (valid 24h):\n%s\n\n", token)
	}

	zap.L().Info("User registered",
		zap.String("user_id", user.Id),
		zap.String("email", user.Email),
		zap.String("account_number", wallet.AccountNumber))
}
