package rollover

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/muhuuh/todo-organisor-sub000/backend/internal/board"
	"github.com/muhuuh/todo-organisor-sub000/backend/internal/models"
	"github.com/muhuuh/todo-organisor-sub000/backend/internal/services"
	"github.com/muhuuh/todo-organisor-sub000/backend/internal/store"

	"github.com/gofrs/uuid"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Scheduler moves every user's Tomorrow tasks into Today on a cron schedule,
// appending them after the tasks already in Today.
type Scheduler struct {
	db     *gorm.DB
	tasks  services.TaskService
	stores *store.Manager
	cron   *cron.Cron
}

func NewScheduler(db *gorm.DB, tasks services.TaskService, stores *store.Manager) *Scheduler {
	return &Scheduler{db: db, tasks: tasks, stores: stores}
}

// Start schedules the nightly run. The schedule is standard 5-field cron
// syntax evaluated in the given timezone.
func (s *Scheduler) Start(schedule, timezone string) error {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return fmt.Errorf("invalid rollover timezone %q: %w", timezone, err)
	}

	s.cron = cron.New(cron.WithLocation(loc))
	_, err = s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := s.RunOnce(ctx); err != nil {
			log.Printf("❌ Rollover run failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid rollover schedule %q: %w", schedule, err)
	}

	s.cron.Start()
	log.Printf("🔄 Rollover scheduled: %s (%s)", schedule, timezone)
	return nil
}

// Stop waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 Rollover scheduler stopped")
}

// RunOnce rolls Tomorrow into Today for every user that has tasks waiting.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	var userIDs []uuid.UUID
	err := s.db.WithContext(ctx).Model(&models.Task{}).
		Where("bucket = ? AND is_archived = ?", models.BucketTomorrow, false).
		Distinct("user_id").
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return fmt.Errorf("failed to find users with pending tasks: %w", err)
	}

	var failed int
	for _, userID := range userIDs {
		if err := s.rolloverUser(ctx, userID); err != nil {
			log.Printf("⚠️  Rollover failed for user %s: %v", userID, err)
			failed++
		}
	}

	if len(userIDs) > 0 {
		log.Printf("✅ Rollover complete: %d users processed, %d failed", len(userIDs), failed)
	}
	if failed > 0 {
		return fmt.Errorf("rollover failed for %d of %d users", failed, len(userIDs))
	}
	return nil
}

func (s *Scheduler) rolloverUser(ctx context.Context, userID uuid.UUID) error {
	active, err := s.tasks.ListTasks(ctx, userID, false)
	if err != nil {
		return err
	}

	var tomorrow []models.Task
	for _, t := range active {
		if t.Bucket == models.BucketTomorrow {
			tomorrow = append(tomorrow, t)
		}
	}
	if len(tomorrow) == 0 {
		return nil
	}

	next := board.NextSortOrder(active, models.BucketToday)
	updates := make([]board.SortUpdate, 0, len(tomorrow))
	for i, t := range board.SortByOrder(tomorrow) {
		updates = append(updates, board.SortUpdate{
			ID:        t.ID,
			Bucket:    models.BucketToday,
			SortOrder: next + i,
		})
	}

	if err := s.tasks.UpsertSortOrders(ctx, userID, updates); err != nil {
		return err
	}

	// Any cached store for this user now holds stale buckets.
	s.stores.Evict(userID)
	return nil
}
