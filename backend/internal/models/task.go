package models

import (
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// Importance levels accepted for a task.
const (
	ImportanceLow    = "Low"
	ImportanceMedium = "Medium"
	ImportanceHigh   = "High"
)

// Buckets are the timeframe tags a task can live in. A task belongs to
// exactly one bucket at a time.
const (
	BucketToday     = "Today"
	BucketTomorrow  = "Tomorrow"
	BucketShortTerm = "Short-Term"
	BucketMidTerm   = "Mid-Term"
	BucketLongTerm  = "Long-Term"
	BucketOnHold    = "On Hold"
)

// Buckets lists every valid bucket tag.
var Buckets = []string{
	BucketToday,
	BucketTomorrow,
	BucketShortTerm,
	BucketMidTerm,
	BucketLongTerm,
	BucketOnHold,
}

// ValidBucket reports whether b is a known bucket tag.
func ValidBucket(b string) bool {
	for _, known := range Buckets {
		if b == known {
			return true
		}
	}
	return false
}

// ValidImportance reports whether s is a known importance level.
func ValidImportance(s string) bool {
	return s == ImportanceLow || s == ImportanceMedium || s == ImportanceHigh
}

// Task is one organiser item. SubTask is the title; MainTask is the optional
// project label grouping related tasks inside a bucket. SortOrder is a dense
// per-bucket display position and is nil until the bucket containing the task
// has been flattened.
type Task struct {
	ID           uuid.UUID      `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	UserID       uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;index"`
	SubTask      string         `json:"sub_task" gorm:"not null"`
	MainTask     string         `json:"main_task"`
	Category     string         `json:"category"`
	Importance   string         `json:"importance" gorm:"not null;default:'Low'"`
	TimeEstimate *int           `json:"time_estimate"`
	Bucket       string         `json:"bucket" gorm:"not null;default:'Today';index"`
	SortOrder    *int           `json:"sort_order"`
	Completed    bool           `json:"completed" gorm:"not null;default:false"`
	IsArchived   bool           `json:"is_archived" gorm:"not null;default:false;index"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}
