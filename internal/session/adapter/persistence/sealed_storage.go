package persistence

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"workly-web/internal/session/domain/repository"
	apperrors "workly-web/internal/shared/errors"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const sealInfo = "workly-web session v1"

var _ repository.SessionStorage = (*SealedStorage)(nil)

// SealedStorage encrypts records with XChaCha20-Poly1305 before handing them
// to the wrapped storage. The storage key is bound as additional data, so a
// record copied under another key fails to open.
type SealedStorage struct {
	inner repository.SessionStorage
	aead  cipher.AEAD
}

// NewSealedStorage derives the sealing key from secret with HKDF-SHA256.
func NewSealedStorage(inner repository.SessionStorage, secret string) (*SealedStorage, error) {
	if secret == "" {
		return nil, errors.New("session secret cannot be empty")
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(sealInfo)), key); err != nil {
		return nil, fmt.Errorf("failed to derive session key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create session cipher: %w", err)
	}
	return &SealedStorage{inner: inner, aead: aead}, nil
}

func (s *SealedStorage) Load(ctx context.Context, key string) ([]byte, error) {
	sealed, err := s.inner.Load(ctx, key)
	if err != nil {
		return nil, err
	}

	nonceSize := s.aead.NonceSize()
	if len(sealed) < nonceSize+s.aead.Overhead() {
		return nil, fmt.Errorf("%w: %s: record too short", apperrors.ErrSessionCorrupt, key)
	}
	plain, err := s.aead.Open(nil, sealed[:nonceSize], sealed[nonceSize:], []byte(key))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrSessionCorrupt, key, err)
	}
	return plain, nil
}

func (s *SealedStorage) Save(ctx context.Context, key string, data []byte) error {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(data)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}
	return s.inner.Save(ctx, key, s.aead.Seal(nonce, nonce, data, []byte(key)))
}

func (s *SealedStorage) Remove(ctx context.Context, key string) error {
	return s.inner.Remove(ctx, key)
}
