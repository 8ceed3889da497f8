package ledger

import "fmt"

// ValidationError covers malformed or out-of-range input: non-positive
// amounts, amounts below the configured minimum, unsupported coins.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// NotFoundError covers missing wallets, users, and receivers.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

// InsufficientFundsError reports a balance or holding too low for the
// requested operation.
type InsufficientFundsError struct {
	Asset string
}

func (e *InsufficientFundsError) Error() string {
	return "insufficient " + e.Asset + " funds"
}

// UnauthorizedError covers bad transaction pins and self-transfers.
type UnauthorizedError struct {
	Reason string
}

func (e *UnauthorizedError) Error() string {
	return "unauthorized: " + e.Reason
}

// UpstreamError wraps a price oracle failure. Retryable by the caller; the
// ledger never falls back to a default price.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream failure: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// StorageError wraps a store failure after validation passed. The most
// severe class: it is logged distinctly and never silently discarded.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure: %v", e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
