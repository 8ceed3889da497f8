package common

import (
	"context"
	"fmt"

	"coinvault/internal/identity"
	"coinvault/internal/models"
	"coinvault/internal/store"
)

// ResolveUser maps either a bearer token or an email to a user record.
// Exactly one of token and email must be provided; tokens require JWT_SECRET.
func ResolveUser(ctx context.Context, dbService store.LedgerStore, cfg *models.Config, email, token string) (*models.User, error) {
	if token != "" && email != "" {
		return nil, fmt.Errorf("provide either --email or --token, not both")
	}

	if token != "" {
		resolver, err := identity.NewResolver(cfg.Identity.JWTSecret)
		if err != nil {
			return nil, fmt.Errorf("credential verification unavailable: %w", err)
		}
		userId, err := resolver.Resolve(token)
		if err != nil {
			return nil, err
		}
		user, err := dbService.GetUserById(ctx, userId)
		if err != nil {
			return nil, fmt.Errorf("user not found for credential: %w", err)
		}
		return user, nil
	}

	if email == "" {
		return nil, fmt.Errorf("either --email or --token is required")
	}
	user, err := dbService.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	return user, nil
}
