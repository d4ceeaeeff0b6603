// Package auth guards developer-only endpoints with a static access key.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DevKeyHeader is sent by the web client.
	DevKeyHeader = "X-Dev-Key"
	// DevKeyQueryParam is accepted for links and curl.
	DevKeyQueryParam = "x_dev_key"

	// DevKeyLength is the length of generated keys in bytes (hex encoded).
	DevKeyLength = 32

	// BcryptCost is the bcrypt cost factor used to hold the key in memory.
	BcryptCost = bcrypt.DefaultCost
)

// ErrInvalidDevKey is returned when the presented key is missing or wrong.
var ErrInvalidDevKey = errors.New("invalid dev key")

// DevKeyService checks requests against the configured key. Only a bcrypt
// hash of the key is retained.
type DevKeyService struct {
	hash []byte
}

// NewDevKeyService hashes key. bcrypt limits keys to 72 bytes.
func NewDevKeyService(key string) (*DevKeyService, error) {
	if key == "" {
		return nil, fmt.Errorf("dev key cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(key), BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash dev key: %w", err)
	}
	return &DevKeyService{hash: hash}, nil
}

// Check compares a presented key with the configured one.
func (s *DevKeyService) Check(key string) error {
	if key == "" {
		return ErrInvalidDevKey
	}
	if err := bcrypt.CompareHashAndPassword(s.hash, []byte(key)); err != nil {
		return ErrInvalidDevKey
	}
	return nil
}

// Validate reads the key from the X-Dev-Key header, falling back to the
// x_dev_key query parameter, and checks it.
func (s *DevKeyService) Validate(r *http.Request) error {
	return s.Check(KeyFromRequest(r))
}

// KeyFromRequest extracts the presented dev key, header first.
func KeyFromRequest(r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get(DevKeyHeader)); key != "" {
		return key
	}
	return strings.TrimSpace(r.URL.Query().Get(DevKeyQueryParam))
}

// GenerateDevKey creates a new cryptographically secure key.
func GenerateDevKey() (string, error) {
	bytes := make([]byte, DevKeyLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate dev key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
