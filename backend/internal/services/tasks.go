package services

import (
	"context"
	"fmt"
	"time"

	"github.com/muhuuh/todo-organisor-sub000/backend/internal/board"
	"github.com/muhuuh/todo-organisor-sub000/backend/internal/models"
	"github.com/muhuuh/todo-organisor-sub000/backend/internal/store"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// TaskService is the persistence layer for tasks. It satisfies store.Remote
// so a TaskStore can sit in front of it, and adds the direct lookups the
// HTTP handlers need.
type TaskService interface {
	store.Remote
	GetTaskByID(ctx context.Context, id, userID uuid.UUID) (models.Task, error)
	ListBucket(ctx context.Context, userID uuid.UUID, bucket string) ([]models.Task, error)
	CountCompletedSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error)
}

type TaskServiceImpl struct {
	db *gorm.DB
}

func NewTaskService(db *gorm.DB) *TaskServiceImpl {
	return &TaskServiceImpl{db: db}
}

func (s *TaskServiceImpl) ListTasks(ctx context.Context, userID uuid.UUID, archived bool) ([]models.Task, error) {
	var tasks []models.Task
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND is_archived = ?", userID, archived).
		Order("created_at DESC").
		Find(&tasks)
	return tasks, result.Error
}

func (s *TaskServiceImpl) ListBucket(ctx context.Context, userID uuid.UUID, bucket string) ([]models.Task, error) {
	var tasks []models.Task
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND is_archived = ? AND bucket = ?", userID, false, bucket).
		Order("created_at DESC").
		Find(&tasks)
	return tasks, result.Error
}

func (s *TaskServiceImpl) GetTaskByID(ctx context.Context, id, userID uuid.UUID) (models.Task, error) {
	var task models.Task
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&task)
	return task, result.Error
}

func (s *TaskServiceImpl) InsertTask(ctx context.Context, task models.Task) (models.Task, error) {
	if task.ID == uuid.Nil {
		task.ID = uuid.Must(uuid.NewV4())
	}
	if err := s.db.WithContext(ctx).Create(&task).Error; err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (s *TaskServiceImpl) UpdateTaskFields(ctx context.Context, id, userID uuid.UUID, patch map[string]interface{}) error {
	result := s.db.WithContext(ctx).Model(&models.Task{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(patch)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpsertSortOrders writes a batch of ordering changes in one transaction so a
// drop never persists half-applied.
func (s *TaskServiceImpl) UpsertSortOrders(ctx context.Context, userID uuid.UUID, updates []board.SortUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			result := tx.Model(&models.Task{}).
				Where("id = ? AND user_id = ?", u.ID, userID).
				Updates(map[string]interface{}{
					"bucket":     u.Bucket,
					"sort_order": u.SortOrder,
					"updated_at": time.Now().UTC(),
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("sort update for unknown task %s: %w", u.ID, gorm.ErrRecordNotFound)
			}
		}
		return nil
	})
}

func (s *TaskServiceImpl) DeleteTask(ctx context.Context, id, userID uuid.UUID) error {
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *TaskServiceImpl) CountCompletedSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	var total int64
	result := s.db.WithContext(ctx).Model(&models.Task{}).
		Where("user_id = ? AND completed = ? AND updated_at >= ?", userID, true, since).
		Count(&total)
	return total, result.Error
}
