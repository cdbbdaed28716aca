// Package auth holds the operator password and login sessions.
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"campusguard/internal/model"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordNotSet is returned by Verify before a password was configured.
var ErrPasswordNotSet = errors.New("admin password is not set")

// CredentialStore keeps a single bcrypt hash of the admin password in a file.
type CredentialStore struct {
	path string
	cost int
	mu   sync.RWMutex
}

func NewCredentialStore(path string) *CredentialStore {
	return &CredentialStore{path: path, cost: bcrypt.DefaultCost}
}

// IsSet reports whether a password has been stored.
func (s *CredentialStore) IsSet() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hash, err := s.read()
	return err == nil && len(hash) > 0
}

// Set replaces the stored password.
func (s *CredentialStore) Set(password string) error {
	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("%w: password must not be empty", model.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("%w: hash password: %v", model.ErrInvalidInput, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("%w: %v", model.ErrPersistence, err)
		}
	}
	if err := os.WriteFile(s.path, hash, 0600); err != nil {
		return fmt.Errorf("%w: write password file: %v", model.ErrPersistence, err)
	}
	return nil
}

// Verify compares password with the stored hash.
func (s *CredentialStore) Verify(password string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hash, err := s.read()
	if errors.Is(err, os.ErrNotExist) || (err == nil && len(hash) == 0) {
		return false, ErrPasswordNotSet
	}
	if err != nil {
		return false, fmt.Errorf("%w: read password file: %v", model.ErrPersistence, err)
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil, nil
}

func (s *CredentialStore) read() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	return []byte(strings.TrimSpace(string(data))), nil
}
