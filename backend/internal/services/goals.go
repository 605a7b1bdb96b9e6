package services

import (
	"context"

	"github.com/muhuuh/todo-organisor-sub000/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GoalService interface {
	UpsertGoal(ctx context.Context, userID uuid.UUID, goalType string, target int) (models.Goal, error)
	GetGoals(ctx context.Context, userID uuid.UUID) ([]models.Goal, error)
	DeleteGoal(ctx context.Context, userID uuid.UUID, goalType string) error
}

type GoalServiceImpl struct {
	db *gorm.DB
}

func NewGoalService(db *gorm.DB) *GoalServiceImpl {
	return &GoalServiceImpl{db: db}
}

// UpsertGoal writes the user's target for one goal type, replacing any
// previous target. One row per user and type.
func (s *GoalServiceImpl) UpsertGoal(ctx context.Context, userID uuid.UUID, goalType string, target int) (models.Goal, error) {
	goal := models.Goal{
		ID:       uuid.Must(uuid.NewV4()),
		UserID:   userID,
		GoalType: goalType,
		Target:   target,
		Period:   "week",
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "goal_type"}},
		DoUpdates: clause.AssignmentColumns([]string{"target", "updated_at"}),
	}).Create(&goal).Error
	if err != nil {
		return models.Goal{}, err
	}

	var stored models.Goal
	if err := s.db.WithContext(ctx).Where("user_id = ? AND goal_type = ?", userID, goalType).First(&stored).Error; err != nil {
		return models.Goal{}, err
	}
	return stored, nil
}

func (s *GoalServiceImpl) GetGoals(ctx context.Context, userID uuid.UUID) ([]models.Goal, error) {
	var goals []models.Goal
	result := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("goal_type").Find(&goals)
	return goals, result.Error
}

func (s *GoalServiceImpl) DeleteGoal(ctx context.Context, userID uuid.UUID, goalType string) error {
	result := s.db.WithContext(ctx).Where("user_id = ? AND goal_type = ?", userID, goalType).Delete(&models.Goal{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
