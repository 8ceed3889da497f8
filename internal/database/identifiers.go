package database

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	accountNumberLength = 10
	addressLength       = 34

	addressAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// newAccountNumber generates a random 10-digit account number. The first
// digit is never zero so the number survives naive numeric round-trips.
// Uniqueness is enforced by the wallets.account_number index; callers retry
// on collision.
func newAccountNumber() (string, error) {
	digits := make([]byte, accountNumberLength)
	for i := range digits {
		max := int64(10)
		if i == 0 {
			max = 9
		}
		n, err := rand.Int(rand.Reader, big.NewInt(max))
		if err != nil {
			return "", fmt.Errorf("unable to generate account number: %w", err)
		}
		if i == 0 {
			digits[i] = byte('1' + n.Int64())
		} else {
			digits[i] = byte('0' + n.Int64())
		}
	}
	return string(digits), nil
}

// newDepositAddress generates a synthetic 34-character deposit address.
// Uniqueness is enforced by the addresses.address index; callers retry on
// collision.
func newDepositAddress() (string, error) {
	chars := make([]byte, addressLength)
	alphabetLen := big.NewInt(int64(len(addressAlphabet)))
	for i := range chars {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("unable to generate deposit address: %w", err)
		}
		chars[i] = addressAlphabet[n.Int64()]
	}
	return string(chars), nil
}
