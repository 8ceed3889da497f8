package ledger

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"coinvault/internal/models"
	"coinvault/internal/store"

	"golang.org/x/crypto/bcrypt"
)

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	digitsOnly      = regexp.MustCompile(`^[0-9]+$`)
)

// RegisterParams carries the inputs for creating a user and their wallet.
type RegisterParams struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
	Pin       string
}

// Register creates a user together with their wallet (starting balance,
// unique account number) and one deposit address per supported coin, as a
// single all-or-nothing commit.
func (e *Engine) Register(ctx context.Context, params RegisterParams) (*models.User, error) {
	if params.Username == "" || params.FirstName == "" || params.LastName == "" ||
		params.Email == "" || params.Pin == "" {
		return nil, &ValidationError{Reason: "please fill in all fields"}
	}
	if len(params.Username) < 4 || len(params.Username) > 20 {
		return nil, &ValidationError{Reason: "username must be between 4 and 20 characters long"}
	}
	if !usernamePattern.MatchString(params.Username) {
		return nil, &ValidationError{Reason: "username can only contain letters and numbers"}
	}
	if digitsOnly.MatchString(params.Username) {
		return nil, &ValidationError{Reason: "username cannot contain only numbers"}
	}
	if !emailPattern.MatchString(params.Email) {
		return nil, &ValidationError{Reason: "invalid email address"}
	}
	if len(params.Pin) < 4 {
		return nil, &ValidationError{Reason: "pin must be at least 4 characters long"}
	}

	pinHash, err := HashPin(params.Pin)
	if err != nil {
		return nil, fmt.Errorf("unable to hash pin: %w", err)
	}

	user, err := e.store.CreateUser(ctx, store.CreateUserParams{
		Username:        strings.ToLower(params.Username),
		FirstName:       params.FirstName,
		LastName:        params.LastName,
		Email:           strings.ToLower(params.Email),
		PinHash:         pinHash,
		StartingBalance: e.cfg.StartingBalance,
		Coins:           e.coins.Ids(),
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUser) {
			return nil, &ValidationError{Reason: "username or email already exists"}
		}
		return nil, &StorageError{Err: err}
	}
	return user, nil
}

// HashPin derives the stored bcrypt hash for a transaction pin.
func HashPin(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func verifyPin(pinHash, pin string) error {
	return bcrypt.CompareHashAndPassword([]byte(pinHash), []byte(pin))
}
