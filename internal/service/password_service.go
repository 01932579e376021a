package service

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/Olprog59/go-carehome/internal/config"
)

// PasswordService handles password hashing / Gère le hachage des mots de passe
// Plaintext passwords exist only on the way into this service; the store
// only ever sees bcrypt hashes.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a password service with the configured bcrypt cost.
func NewPasswordService(conf *config.Config) (*PasswordService, error) {
	cost := conf.Security.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &PasswordService{cost: cost}, nil
}

// Hash validates strength and returns the bcrypt hash / Valide la robustesse et retourne le hash bcrypt
func (s *PasswordService) Hash(password string) (string, error) {
	if !isStrongPassword(password) {
		return "", ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether the password matches the stored hash.
func (s *PasswordService) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
