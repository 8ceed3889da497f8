package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"coinvault/internal/models"
	"coinvault/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const identifierAttempts = 5

// CreateUser registers a user together with their wallet and one deposit
// address per supported coin, all in a single commit. Account numbers and
// addresses are generated randomly and uniqueness-checked against the store
// before insertion.
func (s *Service) CreateUser(ctx context.Context, params store.CreateUserParams) (*models.User, error) {
	username := strings.ToLower(params.Username)
	email := strings.ToLower(params.Email)

	zap.L().Info("Creating user",
		zap.String("username", username),
		zap.String("email", email))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existing string
	err = tx.QueryRowContext(ctx, `SELECT id FROM users WHERE username = ? OR email = ?`, username, email).Scan(&existing)
	if err == nil {
		return nil, store.ErrDuplicateUser
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to check for existing user: %w", err)
	}

	userId := uuid.New().String()
	if _, err := tx.ExecContext(ctx, queryInsertUser, userId, username, params.FirstName, params.LastName, email, params.PinHash); err != nil {
		return nil, fmt.Errorf("unable to insert user: %w", err)
	}

	accountNumber, err := s.uniqueAccountNumber(ctx, tx)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, queryInsertWallet, userId, accountNumber, params.StartingBalance.String()); err != nil {
		return nil, fmt.Errorf("unable to insert wallet: %w", err)
	}

	for _, coin := range params.Coins {
		coin = strings.ToLower(coin)
		address, err := s.uniqueDepositAddress(ctx, tx)
		if err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx, queryInsertAddress, userId, coin, address); err != nil {
			return nil, fmt.Errorf("unable to insert address for %s: %w", coin, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit user creation: %w", err)
	}

	zap.L().Info("User created successfully",
		zap.String("user_id", userId),
		zap.String("username", username),
		zap.String("account_number", accountNumber))

	return s.GetUserById(ctx, userId)
}

func (s *Service) uniqueAccountNumber(ctx context.Context, tx *sql.Tx) (string, error) {
	for attempt := 0; attempt < identifierAttempts; attempt++ {
		accountNumber, err := newAccountNumber()
		if err != nil {
			return "", err
		}
		var taken string
		err = tx.QueryRowContext(ctx, `SELECT user_id FROM wallets WHERE account_number = ?`, accountNumber).Scan(&taken)
		if errors.Is(err, sql.ErrNoRows) {
			return accountNumber, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check account number: %w", err)
		}
	}
	return "", fmt.Errorf("unable to generate a unique account number after %d attempts", identifierAttempts)
}

func (s *Service) uniqueDepositAddress(ctx context.Context, tx *sql.Tx) (string, error) {
	for attempt := 0; attempt < identifierAttempts; attempt++ {
		address, err := newDepositAddress()
		if err != nil {
			return "", err
		}
		var taken string
		err = tx.QueryRowContext(ctx, `SELECT user_id FROM addresses WHERE address = ?`, address).Scan(&taken)
		if errors.Is(err, sql.ErrNoRows) {
			return address, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check deposit address: %w", err)
		}
	}
	return "", fmt.Errorf("unable to generate a unique deposit address after %d attempts", identifierAttempts)
}

func (s *Service) GetUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, queryGetUsers)
	if err != nil {
		zap.L().Error("Failed to query users", zap.Error(err))
		return nil, fmt.Errorf("unable to query users: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.Id, &user.Username, &user.FirstName, &user.LastName,
			&user.Email, &user.PinHash, &user.Verified, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("unable to scan user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, nil
}

func (s *Service) GetUserById(ctx context.Context, userId string) (*models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx, queryGetUserById, userId).Scan(
		&user.Id, &user.Username, &user.FirstName, &user.LastName,
		&user.Email, &user.PinHash, &user.Verified, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		zap.L().Error("Failed to query user by ID", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("unable to query user by ID: %w", err)
	}
	return &user, nil
}

func (s *Service) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx, queryGetUserByEmail, strings.ToLower(email)).Scan(
		&user.Id, &user.Username, &user.FirstName, &user.LastName,
		&user.Email, &user.PinHash, &user.Verified, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		zap.L().Error("Failed to query user by email", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("unable to query user by email: %w", err)
	}
	return &user, nil
}
