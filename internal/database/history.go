package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"coinvault/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AppendHistory records one ledger operation attempt. It never rejects based
// on content; only storage failures propagate.
func (s *Service) AppendHistory(ctx context.Context, userId, status, message string) (*models.HistoryEntry, error) {
	entry := &models.HistoryEntry{}
	err := s.db.QueryRowContext(ctx, queryInsertHistory, uuid.New().String(), userId, status, message, time.Now()).
		Scan(&entry.Id, &entry.UserId, &entry.Status, &entry.Message, &entry.Read, &entry.CreatedAt)
	if err != nil {
		zap.L().Error("Failed to append history entry",
			zap.String("user_id", userId),
			zap.String("status", status),
			zap.Error(err))
		return nil, fmt.Errorf("unable to append history entry: %w", err)
	}
	return entry, nil
}

// ListHistory returns a user's transaction history in insertion order.
func (s *Service) ListHistory(ctx context.Context, userId string) ([]models.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, queryListHistory, userId)
	if err != nil {
		return nil, fmt.Errorf("unable to query history: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var entries []models.HistoryEntry
	for rows.Next() {
		var entry models.HistoryEntry
		if err := rows.Scan(&entry.Id, &entry.UserId, &entry.Status, &entry.Message, &entry.Read, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("unable to scan history row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history rows: %w", err)
	}

	return entries, nil
}

// MarkHistoryRead flips every unread history entry to read. Idempotent.
func (s *Service) MarkHistoryRead(ctx context.Context, userId string) error {
	if _, err := s.db.ExecContext(ctx, queryMarkHistoryRead, userId); err != nil {
		return fmt.Errorf("unable to mark history read: %w", err)
	}
	return nil
}

// AppendNotification records a counterparty notification.
func (s *Service) AppendNotification(ctx context.Context, userId, message string) (*models.Notification, error) {
	notification := &models.Notification{}
	err := s.db.QueryRowContext(ctx, queryInsertNotification, uuid.New().String(), userId, message, time.Now()).
		Scan(&notification.Id, &notification.UserId, &notification.Status, &notification.Message, &notification.CreatedAt)
	if err != nil {
		zap.L().Error("Failed to append notification",
			zap.String("user_id", userId),
			zap.Error(err))
		return nil, fmt.Errorf("unable to append notification: %w", err)
	}
	return notification, nil
}

// ListNotifications returns a user's notifications in insertion order.
func (s *Service) ListNotifications(ctx context.Context, userId string) ([]models.Notification, error) {
	rows, err := s.db.QueryContext(ctx, queryListNotifications, userId)
	if err != nil {
		return nil, fmt.Errorf("unable to query notifications: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var notifications []models.Notification
	for rows.Next() {
		var notification models.Notification
		if err := rows.Scan(&notification.Id, &notification.UserId, &notification.Status,
			&notification.Message, &notification.CreatedAt); err != nil {
			return nil, fmt.Errorf("unable to scan notification row: %w", err)
		}
		notifications = append(notifications, notification)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification rows: %w", err)
	}

	return notifications, nil
}

// MarkNotificationsRead bulk-flips unread notifications to read. Idempotent.
func (s *Service) MarkNotificationsRead(ctx context.Context, userId string) error {
	if _, err := s.db.ExecContext(ctx, queryMarkNotificationsRead, userId); err != nil {
		return fmt.Errorf("unable to mark notifications read: %w", err)
	}
	return nil
}
