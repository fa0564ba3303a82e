// Package accounts turns EMAIL{n}/PASSWORD{n} pairs from the environment into the
// static password entries of the identity provider's configuration.
package accounts

import (
	"bytes"
	"fmt"
	"strconv"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"omnibus/pkg/logging"
)

// HashCost is the bcrypt cost used for account passwords.
const HashCost = 10

// Lookuper reads environment variables.
type Lookuper interface {
	Lookup(name string) (string, bool)
}

// Hasher hashes a password for storage in the identity provider's configuration.
type Hasher interface {
	Hash(password string) (string, error)
}

// BcryptHasher hashes with bcrypt at HashCost.
type BcryptHasher struct{}

// Hash implements Hasher.
func (BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Account is one static login.
type Account struct {
	Email string `yaml:"email"`
	Hash  string `yaml:"hash"`
}

type passwordDB struct {
	EnablePasswordDB bool      `yaml:"enablePasswordDB"`
	StaticPasswords  []Account `yaml:"staticPasswords"`
}

// Collect scans the slots "", "0", "1", then "2", "3", ... and stops at the first
// numbered slot from 2 on whose EMAIL is unset. An EMAIL without PASSWORD is
// skipped with a warning.
func Collect(env Lookuper, hasher Hasher) ([]Account, error) {
	var accounts []Account

	// visit reports whether the slot had an email.
	visit := func(suffix string) (bool, error) {
		emailKey, passwordKey := "EMAIL"+suffix, "PASSWORD"+suffix
		email, _ := env.Lookup(emailKey)
		if email == "" {
			return false, nil
		}
		password, _ := env.Lookup(passwordKey)
		if password == "" {
			logging.Warn("Accounts", "Found %s without a matching %s, skipping", emailKey, passwordKey)
			return true, nil
		}
		hash, err := hasher.Hash(password)
		if err != nil {
			return false, fmt.Errorf("failed to hash %s: %w", passwordKey, err)
		}
		accounts = append(accounts, Account{Email: email, Hash: hash})
		return true, nil
	}

	for _, suffix := range []string{"", "0", "1"} {
		if _, err := visit(suffix); err != nil {
			return nil, err
		}
	}
	for i := 2; ; i++ {
		found, err := visit(strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		if !found {
			break
		}
	}

	logging.Debug("Accounts", "Collected %d static account(s)", len(accounts))
	return accounts, nil
}

// Block renders the accounts found in env as a YAML fragment that can be appended
// to a Dex configuration. Without accounts it returns "".
func Block(env Lookuper, hasher Hasher) (string, error) {
	accounts, err := Collect(env, hasher)
	if err != nil {
		return "", err
	}
	if len(accounts) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(passwordDB{EnablePasswordDB: true, StaticPasswords: accounts}); err != nil {
		return "", fmt.Errorf("failed to encode accounts: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode accounts: %w", err)
	}
	buf.WriteString("\n")
	return buf.String(), nil
}
