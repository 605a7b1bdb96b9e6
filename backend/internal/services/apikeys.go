package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/muhuuh/todo-organisor-sub000/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type APIKeyService interface {
	// CreateKey mints a new key for the user and returns the raw secret.
	// The secret is not stored and cannot be recovered later.
	CreateKey(ctx context.Context, userID uuid.UUID, label string) (models.APIKey, string, error)
	ListKeys(ctx context.Context, userID uuid.UUID) ([]models.APIKey, error)
	RevokeKey(ctx context.Context, id, userID uuid.UUID) error
	// Resolve maps a presented raw key to its owner and stamps last_used_at.
	Resolve(ctx context.Context, rawKey string) (uuid.UUID, error)
}

type APIKeyServiceImpl struct {
	db *gorm.DB
}

func NewAPIKeyService(db *gorm.DB) *APIKeyServiceImpl {
	return &APIKeyServiceImpl{db: db}
}

func digestKey(rawKey string) string {
	sum := sha256.Sum256([]byte(rawKey))
	return hex.EncodeToString(sum[:])
}

func (s *APIKeyServiceImpl) CreateKey(ctx context.Context, userID uuid.UUID, label string) (models.APIKey, string, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return models.APIKey{}, "", fmt.Errorf("failed to generate key material: %w", err)
	}
	rawKey := "tok_" + hex.EncodeToString(secret)

	key := models.APIKey{
		ID:        uuid.Must(uuid.NewV4()),
		UserID:    userID,
		Label:     label,
		KeyDigest: digestKey(rawKey),
	}
	if err := s.db.WithContext(ctx).Create(&key).Error; err != nil {
		return models.APIKey{}, "", err
	}
	return key, rawKey, nil
}

func (s *APIKeyServiceImpl) ListKeys(ctx context.Context, userID uuid.UUID) ([]models.APIKey, error) {
	var keys []models.APIKey
	result := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&keys)
	return keys, result.Error
}

func (s *APIKeyServiceImpl) RevokeKey(ctx context.Context, id, userID uuid.UUID) error {
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.APIKey{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *APIKeyServiceImpl) Resolve(ctx context.Context, rawKey string) (uuid.UUID, error) {
	var key models.APIKey
	err := s.db.WithContext(ctx).Where("key_digest = ?", digestKey(rawKey)).First(&key).Error
	if err != nil {
		return uuid.Nil, err
	}

	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(&key).Update("last_used_at", now).Error; err != nil {
		return uuid.Nil, err
	}
	return key.UserID, nil
}
