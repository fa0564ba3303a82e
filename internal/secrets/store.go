package secrets

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

// Store hands out named random tokens that stay stable across restarts.
// The first Obtain for a name generates and persists a value; every later call,
// in this process or a later one, returns the persisted value.
type Store interface {
	Obtain(ctx context.Context, name string) (string, error)
}

// Generator produces a fresh random token.
type Generator func() (string, error)

// TokenLength is the length of generated tokens.
const TokenLength = 20

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// ErrInvalidName is returned for names that cannot be used as a storage key.
var ErrInvalidName = errors.New("invalid secret name")

// GenerateToken returns TokenLength characters drawn uniformly from [A-Za-z0-9],
// safe to embed in URLs and unquoted shell words.
func GenerateToken() (string, error) {
	limit := big.NewInt(int64(len(tokenAlphabet)))
	buf := make([]byte, TokenLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to read random source: %w", err)
		}
		buf[i] = tokenAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// validName accepts the characters environment variable names are made of.
func validName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-', r == '.':
		default:
			return fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
	}
	if name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
