package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/muhuuh/todo-organisor-sub000/backend/internal/board"
	"github.com/muhuuh/todo-organisor-sub000/backend/internal/cache"
	"github.com/muhuuh/todo-organisor-sub000/backend/internal/models"

	"github.com/gofrs/uuid"
)

const taskListTTL = 2 * time.Minute

// CachedTaskService decorates a TaskService with a read-through cache on the
// task lists. Every mutation drops the owner's cached lists; a cache failure
// is logged and the database answers instead.
type CachedTaskService struct {
	inner TaskService
	cache cache.Cache
}

func NewCachedTaskService(inner TaskService, c cache.Cache) *CachedTaskService {
	return &CachedTaskService{inner: inner, cache: c}
}

func taskListKey(userID uuid.UUID, archived bool) string {
	if archived {
		return fmt.Sprintf("tasks:%s:archived", userID)
	}
	return fmt.Sprintf("tasks:%s:active", userID)
}

func (s *CachedTaskService) invalidate(userID uuid.UUID) {
	if err := s.cache.DeletePattern(fmt.Sprintf("tasks:%s:*", userID)); err != nil {
		log.Printf("⚠️  Cache invalidation failed for user %s: %v", userID, err)
	}
}

func (s *CachedTaskService) ListTasks(ctx context.Context, userID uuid.UUID, archived bool) ([]models.Task, error) {
	key := taskListKey(userID, archived)

	var cached []models.Task
	if err := s.cache.Get(key, &cached); err == nil {
		return cached, nil
	} else if err != cache.ErrCacheMiss {
		log.Printf("⚠️  Cache read failed for %s: %v", key, err)
	}

	tasks, err := s.inner.ListTasks(ctx, userID, archived)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(key, tasks, taskListTTL); err != nil {
		log.Printf("⚠️  Cache write failed for %s: %v", key, err)
	}
	return tasks, nil
}

func (s *CachedTaskService) ListBucket(ctx context.Context, userID uuid.UUID, bucket string) ([]models.Task, error) {
	return s.inner.ListBucket(ctx, userID, bucket)
}

func (s *CachedTaskService) GetTaskByID(ctx context.Context, id, userID uuid.UUID) (models.Task, error) {
	return s.inner.GetTaskByID(ctx, id, userID)
}

func (s *CachedTaskService) InsertTask(ctx context.Context, task models.Task) (models.Task, error) {
	created, err := s.inner.InsertTask(ctx, task)
	if err != nil {
		return models.Task{}, err
	}
	s.invalidate(created.UserID)
	return created, nil
}

func (s *CachedTaskService) UpdateTaskFields(ctx context.Context, id, userID uuid.UUID, patch map[string]interface{}) error {
	if err := s.inner.UpdateTaskFields(ctx, id, userID, patch); err != nil {
		return err
	}
	s.invalidate(userID)
	return nil
}

func (s *CachedTaskService) UpsertSortOrders(ctx context.Context, userID uuid.UUID, updates []board.SortUpdate) error {
	if err := s.inner.UpsertSortOrders(ctx, userID, updates); err != nil {
		return err
	}
	s.invalidate(userID)
	return nil
}

func (s *CachedTaskService) DeleteTask(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.inner.DeleteTask(ctx, id, userID); err != nil {
		return err
	}
	s.invalidate(userID)
	return nil
}

func (s *CachedTaskService) CountCompletedSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	return s.inner.CountCompletedSince(ctx, userID, since)
}
