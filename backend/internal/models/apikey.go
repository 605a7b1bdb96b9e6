package models

import (
	"time"

	"github.com/gofrs/uuid"
)

// APIKey authorises the ingest endpoint for one user. Only a sha256 digest of
// the key is stored; the raw key is shown once at creation time.
type APIKey struct {
	ID         uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	UserID     uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	Label      string     `json:"label" gorm:"not null"`
	KeyDigest  string     `json:"-" gorm:"uniqueIndex;not null"`
	LastUsedAt *time.Time `json:"last_used_at"`
	CreatedAt  time.Time  `json:"created_at"`
}
