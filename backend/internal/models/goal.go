package models

import (
	"time"

	"github.com/gofrs/uuid"
)

// Goal kinds tracked per user. One row per user and goal type.
const (
	GoalTypeFocusHours     = "focus_hours"
	GoalTypeCompletedTasks = "completed_tasks"
)

// Goal is a per-user weekly target backing the progress charts.
type Goal struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_goals_user_type"`
	GoalType  string    `json:"goal_type" gorm:"not null;uniqueIndex:idx_goals_user_type"`
	Target    int       `json:"target" gorm:"not null"`
	Period    string    `json:"period" gorm:"not null;default:'week'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
