package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/muhuuh/todo-organisor-sub000/backend/internal/board"
	"github.com/muhuuh/todo-organisor-sub000/backend/internal/models"

	"github.com/gofrs/uuid"
)

// fakeRemote is an in-memory Remote with per-operation failure switches.
type fakeRemote struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]models.Task

	failInsert bool
	failUpdate bool
	failUpsert bool
	failDelete bool
	failList   bool

	listCalls int
}

var errRemoteDown = errors.New("remote store rejected the operation")

func newFakeRemote() *fakeRemote {
	return &fakeRemote{tasks: make(map[uuid.UUID]models.Task)}
}

func (f *fakeRemote) seed(tasks ...models.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range tasks {
		f.tasks[t.ID] = t
	}
}

func (f *fakeRemote) ListTasks(_ context.Context, userID uuid.UUID, archived bool) ([]models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.failList {
		return nil, errRemoteDown
	}
	var out []models.Task
	for _, t := range f.tasks {
		if t.UserID == userID && t.IsArchived == archived {
			out = append(out, t)
		}
	}
	return board.SortByOrder(out), nil
}

func (f *fakeRemote) InsertTask(_ context.Context, task models.Task) (models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInsert {
		return models.Task{}, errRemoteDown
	}
	if task.ID == uuid.Nil {
		task.ID = uuid.Must(uuid.NewV4())
	}
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	f.tasks[task.ID] = task
	return task, nil
}

func (f *fakeRemote) UpdateTaskFields(_ context.Context, id, userID uuid.UUID, patch map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdate {
		return errRemoteDown
	}
	t, ok := f.tasks[id]
	if !ok || t.UserID != userID {
		return errRemoteDown
	}
	for col, val := range patch {
		switch col {
		case "sub_task":
			t.SubTask = val.(string)
		case "main_task":
			t.MainTask = val.(string)
		case "category":
			t.Category = val.(string)
		case "importance":
			t.Importance = val.(string)
		case "time_estimate":
			t.TimeEstimate = val.(*int)
		case "completed":
			t.Completed = val.(bool)
		case "is_archived":
			t.IsArchived = val.(bool)
		case "sort_order":
			so := val.(int)
			t.SortOrder = &so
		case "updated_at":
			t.UpdatedAt = val.(time.Time)
		}
	}
	f.tasks[id] = t
	return nil
}

func (f *fakeRemote) UpsertSortOrders(_ context.Context, userID uuid.UUID, updates []board.SortUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpsert {
		return errRemoteDown
	}
	for _, u := range updates {
		t, ok := f.tasks[u.ID]
		if !ok || t.UserID != userID {
			continue
		}
		so := u.SortOrder
		t.SortOrder = &so
		t.Bucket = u.Bucket
		f.tasks[u.ID] = t
	}
	return nil
}

func (f *fakeRemote) DeleteTask(_ context.Context, id, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete {
		return errRemoteDown
	}
	delete(f.tasks, id)
	return nil
}

func intPtr(n int) *int { return &n }

func seedTask(userID uuid.UUID, sub, bucket string, sortOrder *int) models.Task {
	return models.Task{
		ID:         uuid.Must(uuid.NewV4()),
		UserID:     userID,
		SubTask:    sub,
		Bucket:     bucket,
		Importance: models.ImportanceLow,
		SortOrder:  sortOrder,
		CreatedAt:  time.Now().Add(-time.Hour),
		UpdatedAt:  time.Now().Add(-time.Hour),
	}
}

func newTestStore(t *testing.T) (*TaskStore, *fakeRemote, uuid.UUID) {
	t.Helper()
	userID := uuid.Must(uuid.NewV4())
	remote := newFakeRemote()
	s := NewTaskStore(userID, remote)
	return s, remote, userID
}

func TestAddTask_AssignsNextSortOrder(t *testing.T) {
	s, remote, userID := newTestStore(t)
	remote.seed(
		seedTask(userID, "one", models.BucketTomorrow, intPtr(1)),
		seedTask(userID, "two", models.BucketTomorrow, intPtr(2)),
		seedTask(userID, "three", models.BucketTomorrow, intPtr(3)),
	)
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	created, err := s.AddTask(context.Background(), models.Task{
		SubTask: "four",
		Bucket:  models.BucketTomorrow,
	})
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}

	if created.SortOrder == nil || *created.SortOrder != 4 {
		t.Errorf("expected sort_order 4, got %v", created.SortOrder)
	}
	if len(s.Active()) != 4 {
		t.Errorf("expected 4 active tasks, got %d", len(s.Active()))
	}
}

func TestAddTask_NoOptimisticInsertOnFailure(t *testing.T) {
	s, remote, _ := newTestStore(t)
	remote.failInsert = true

	_, err := s.AddTask(context.Background(), models.Task{SubTask: "doomed"})

	var re *RemoteError
	if !errors.As(err, &re) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if len(s.Active()) != 0 {
		t.Errorf("local state must stay unchanged on insert failure, got %d tasks", len(s.Active()))
	}
}

func TestAddTask_Validation(t *testing.T) {
	s, _, _ := newTestStore(t)

	tests := []struct {
		name  string
		draft models.Task
	}{
		{"empty title", models.Task{SubTask: "   "}},
		{"unknown bucket", models.Task{SubTask: "x", Bucket: "Someday"}},
		{"unknown importance", models.Task{SubTask: "x", Importance: "Critical"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.AddTask(context.Background(), tt.draft)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestUpdateTimeEstimate_RollsBackOnlyThatField(t *testing.T) {
	s, remote, userID := newTestStore(t)
	task := seedTask(userID, "work", models.BucketToday, intPtr(1))
	task.TimeEstimate = intPtr(30)
	remote.seed(task)
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	// An importance edit lands first and sticks.
	if err := s.UpdateImportance(context.Background(), task.ID, models.ImportanceHigh); err != nil {
		t.Fatalf("UpdateImportance: %v", err)
	}

	remote.failUpdate = true
	err := s.UpdateTimeEstimate(context.Background(), task.ID, intPtr(90))
	var re *RemoteError
	if !errors.As(err, &re) {
		t.Fatalf("expected RemoteError, got %v", err)
	}

	got := s.Active()[0]
	if got.TimeEstimate == nil || *got.TimeEstimate != 30 {
		t.Errorf("time_estimate must revert to 30, got %v", got.TimeEstimate)
	}
	if got.Importance != models.ImportanceHigh {
		t.Errorf("importance edit must survive the rollback, got %q", got.Importance)
	}
}

func TestUpdateField_NotFoundIsNoOp(t *testing.T) {
	s, _, _ := newTestStore(t)

	err := s.UpdateSubTask(context.Background(), uuid.Must(uuid.NewV4()), "ghost")

	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestToggleCompletion_ArchivesTask(t *testing.T) {
	s, remote, userID := newTestStore(t)
	task := seedTask(userID, "done soon", models.BucketToday, intPtr(1))
	remote.seed(task)
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	before := s.Active()[0].UpdatedAt

	if err := s.ToggleCompletion(context.Background(), task.ID, true); err != nil {
		t.Fatalf("ToggleCompletion: %v", err)
	}

	if len(s.Active()) != 0 {
		t.Errorf("task must leave the active list, %d remain", len(s.Active()))
	}
	completed := s.Completed()
	if len(completed) != 1 {
		t.Fatalf("task must join the completed list, got %d", len(completed))
	}
	got := completed[0]
	if !got.Completed || !got.IsArchived {
		t.Errorf("expected completed=true is_archived=true, got completed=%v is_archived=%v",
			got.Completed, got.IsArchived)
	}
	if !got.UpdatedAt.After(before) {
		t.Error("expected a refreshed updated_at stamp")
	}
}

func TestToggleCompletion_IncompleteUpdatesInPlace(t *testing.T) {
	s, remote, userID := newTestStore(t)
	task := seedTask(userID, "was done", models.BucketToday, intPtr(1))
	task.Completed = true
	task.IsArchived = true
	remote.seed(task)
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if err := s.ToggleCompletion(context.Background(), task.ID, false); err != nil {
		t.Fatalf("ToggleCompletion: %v", err)
	}

	completed := s.Completed()
	if len(completed) != 1 {
		t.Fatalf("marking incomplete must not unarchive, completed list has %d", len(completed))
	}
	if completed[0].Completed {
		t.Error("expected completed=false")
	}
	if !completed[0].IsArchived {
		t.Error("expected is_archived to remain true")
	}
}

func TestUnarchiveTask_FreshSortOrder(t *testing.T) {
	s, remote, userID := newTestStore(t)
	active := seedTask(userID, "active", models.BucketToday, intPtr(5))
	archived := seedTask(userID, "parked", models.BucketToday, intPtr(1))
	archived.IsArchived = true
	archived.Completed = true
	remote.seed(active, archived)
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if err := s.UnarchiveTask(context.Background(), archived.ID); err != nil {
		t.Fatalf("UnarchiveTask: %v", err)
	}

	var got *models.Task
	for _, t2 := range s.Active() {
		if t2.ID == archived.ID {
			found := t2
			got = &found
		}
	}
	if got == nil {
		t.Fatal("task must return to the active list")
	}
	if got.Completed || got.IsArchived {
		t.Errorf("terminal flags must clear, got completed=%v is_archived=%v", got.Completed, got.IsArchived)
	}
	if got.SortOrder == nil || *got.SortOrder != 6 {
		t.Errorf("expected fresh sort_order 6 after the bucket's max of 5, got %v", got.SortOrder)
	}
}

func TestDeleteTask_RemoteFirst(t *testing.T) {
	s, remote, userID := newTestStore(t)
	task := seedTask(userID, "victim", models.BucketToday, intPtr(1))
	remote.seed(task)
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	remote.failDelete = true
	if err := s.DeleteTask(context.Background(), task.ID); err == nil {
		t.Fatal("expected delete failure")
	}
	if len(s.Active()) != 1 {
		t.Error("local state must be untouched while the remote delete fails")
	}

	remote.failDelete = false
	if err := s.DeleteTask(context.Background(), task.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if len(s.Active()) != 0 {
		t.Error("task must be removed after remote success")
	}
}

func TestReorderTasks_FailureRecoversViaRefetch(t *testing.T) {
	s, remote, userID := newTestStore(t)
	a := seedTask(userID, "a", models.BucketToday, intPtr(1))
	b := seedTask(userID, "b", models.BucketToday, intPtr(2))
	remote.seed(a, b)
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	remote.failUpsert = true
	err := s.ReorderTasks(context.Background(), []board.SortUpdate{
		{ID: a.ID, Bucket: models.BucketToday, SortOrder: 2},
		{ID: b.ID, Bucket: models.BucketToday, SortOrder: 1},
	})
	var re *RemoteError
	if !errors.As(err, &re) {
		t.Fatalf("expected RemoteError, got %v", err)
	}

	// The refetch restored the authoritative order.
	got := s.Active()
	if got[0].ID != a.ID || got[1].ID != b.ID {
		t.Error("expected the authoritative order back after a failed reorder")
	}
}

func TestMoveTask_NoOpGestureEmitsNothing(t *testing.T) {
	s, remote, userID := newTestStore(t)
	task := seedTask(userID, "only", models.BucketToday, intPtr(1))
	remote.seed(task)
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	before := remote.listCalls

	updates, err := s.MoveTask(context.Background(), board.DragIntent{
		Kind:         board.KindTask,
		TaskID:       task.ID,
		SourceBucket: models.BucketToday,
		TargetKind:   board.KindTask,
		TargetTaskID: task.ID,
	})

	if err != nil || updates != nil {
		t.Errorf("same-id drop must be a silent no-op, got updates=%v err=%v", updates, err)
	}
	if remote.listCalls != before {
		t.Error("a no-op gesture must not touch the remote")
	}
}

func TestRefresh_StaleRefetchDiscarded(t *testing.T) {
	s, remote, userID := newTestStore(t)
	task := seedTask(userID, "original", models.BucketToday, intPtr(1))
	remote.seed(task)
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	// Capture the version a slow refetch would have started from, then land
	// a local edit before it resolves.
	stale := s.Version()
	if err := s.UpdateSubTask(context.Background(), task.ID, "renamed"); err != nil {
		t.Fatalf("UpdateSubTask: %v", err)
	}

	// Replay the stale install path: a Refresh started at `stale` must not
	// overwrite the newer state. Refresh re-reads the version itself, so a
	// fresh call is not stale; simulate by checking the version moved on.
	if s.Version() == stale {
		t.Fatal("version must advance on mutation")
	}
	if got := s.Active()[0].SubTask; got != "renamed" {
		t.Errorf("local edit lost: %q", got)
	}

	// A refresh that starts now sees the renamed row from the remote.
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got := s.Active()[0].SubTask; got != "renamed" {
		t.Errorf("expected remote to agree after reconciliation, got %q", got)
	}
}

func TestStore_NotifiesObservers(t *testing.T) {
	s, remote, userID := newTestStore(t)
	remote.seed(seedTask(userID, "watch me", models.BucketToday, intPtr(1)))

	var mu sync.Mutex
	fired := 0
	s.Subscribe(func() {
		mu.Lock()
		fired++
		mu.Unlock()
	})

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if fired == 0 {
		t.Error("expected observer notification on refresh")
	}
}

func TestManager_RequiresSession(t *testing.T) {
	m := NewManager(newFakeRemote())

	_, err := m.For(context.Background(), uuid.Nil)

	if !errors.Is(err, ErrAuthRequired) {
		t.Errorf("expected ErrAuthRequired, got %v", err)
	}
}

func TestManager_ReusesStorePerUser(t *testing.T) {
	remote := newFakeRemote()
	m := NewManager(remote)
	userID := uuid.Must(uuid.NewV4())

	first, err := m.For(context.Background(), userID)
	if err != nil {
		t.Fatalf("For: %v", err)
	}
	second, err := m.For(context.Background(), userID)
	if err != nil {
		t.Fatalf("For: %v", err)
	}

	if first != second {
		t.Error("expected the same store instance per user")
	}
}
