package main

import (
	"context"
	"flag"
	"fmt"

	"coinvault/internal/common"
	"coinvault/internal/config"
	"coinvault/internal/models"

	"go.uber.org/zap"
)

func readMarker(read bool) string {
	if read {
		return " "
	}
	return "*"
}

func printHistory(entries []models.HistoryEntry) {
	if len(entries) == 0 {
		fmt.Println("No history entries.")
		return
	}
	for i, entry := range entries {
		fmt.Printf("%s%s [%-10s] %s  %s\n",
			common.BoxPrefix(i == len(entries)-1),
			readMarker(entry.Read),
			entry.Status,
			entry.CreatedAt.Format("2006-01-02 15:04:05"),
			entry.Message)
	}
}

func printNotifications(notifications []models.Notification) {
	if len(notifications) == 0 {
		fmt.Println("No notifications.")
		return
	}
	for i, notification := range notifications {
		fmt.Printf("%s%s %s  %s\n",
			common.BoxPrefix(i == len(notifications)-1),
			readMarker(notification.Status == models.NotificationRead),
			notification.CreatedAt.Format("2006-01-02 15:04:05"),
			notification.Message)
	}
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	emailFlag := flag.String("email", "", "User email")
	tokenFlag := flag.String("token", "", "Bearer token (alternative to --email)")
	markReadFlag := flag.Bool("mark-read", false, "Mark history and notifications as read after printing")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	user, err := common.ResolveUser(ctx, services.DbService, cfg, *emailFlag, *tokenFlag)
	if err != nil {
		logger.Fatal("Failed to resolve user", zap.Error(err))
	}

	entries, err := services.Engine.GetHistory(ctx, user.Id)
	if err != nil {
		logger.Fatal("Failed to get history", zap.Error(err))
	}
	notifications, err := services.Engine.GetNotifications(ctx, user.Id)
	if err != nil {
		logger.Fatal("Failed to get notifications", zap.Error(err))
	}

	common.PrintHeader(fmt.Sprintf("TRANSACTION HISTORY: %s (%s)", user.Name(), user.Email), common.DefaultWidth)
	printHistory(entries)

	common.PrintHeader("NOTIFICATIONS", common.DefaultWidth)
	printNotifications(notifications)
	fmt.Println()

	if *markReadFlag {
		if err := services.Engine.MarkHistoryRead(ctx, user.Id); err != nil {
			logger.Fatal("Failed to mark history read", zap.Error(err))
		}
		if err := services.Engine.MarkNotificationsRead(ctx, user.Id); err != nil {
			logger.Fatal("Failed to mark notifications read", zap.Error(err))
		}
		logger.Info("Marked history and notifications as read", zap.String("user_id", user.Id))
	}

	logger.Info("History query completed",
		zap.String("user_id", user.Id),
		zap.Int("history_entries", len(entries)),
		zap.Int("notifications", len(notifications)))
}
