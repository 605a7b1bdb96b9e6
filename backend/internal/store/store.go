package store

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/muhuuh/todo-organisor-sub000/backend/internal/board"
	"github.com/muhuuh/todo-organisor-sub000/backend/internal/models"

	"github.com/gofrs/uuid"
)

// TaskStore owns one user's in-memory task state: the active list and the
// completed (archived) list, kept in sync with the Remote. Mutations apply
// optimistically where the contract allows it and reconcile with the remote
// on failure. A version counter makes refetches safe to run concurrently
// with mutations: a refetch that resolves after the state it read from has
// moved on is discarded instead of clobbering newer local edits.
type TaskStore struct {
	userID uuid.UUID
	remote Remote

	mu        sync.Mutex
	active    []models.Task
	completed []models.Task
	version   uint64

	obsMu     sync.Mutex
	observers []func()
}

// NewTaskStore builds an empty store for one user. Call Refresh to load
// state before serving reads.
func NewTaskStore(userID uuid.UUID, remote Remote) *TaskStore {
	return &TaskStore{userID: userID, remote: remote}
}

// Subscribe registers fn to run after every observable state change.
func (s *TaskStore) Subscribe(fn func()) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.observers = append(s.observers, fn)
}

func (s *TaskStore) notify() {
	s.obsMu.Lock()
	observers := make([]func(), len(s.observers))
	copy(observers, s.observers)
	s.obsMu.Unlock()

	for _, fn := range observers {
		fn()
	}
}

// Active returns a copy of the active task list.
func (s *TaskStore) Active() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Task, len(s.active))
	copy(out, s.active)
	return out
}

// Completed returns a copy of the completed task list.
func (s *TaskStore) Completed() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Task, len(s.completed))
	copy(out, s.completed)
	return out
}

// Version returns the current state version. It advances on every local
// change, including rollbacks.
func (s *TaskStore) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Refresh refetches both lists from the remote and installs them, unless the
// local state has moved on since the refetch began; a stale refetch is
// silently dropped so the newer local edits win.
func (s *TaskStore) Refresh(ctx context.Context) error {
	s.mu.Lock()
	startVersion := s.version
	s.mu.Unlock()

	active, err := s.remote.ListTasks(ctx, s.userID, false)
	if err != nil {
		return remoteErr("refresh active tasks", err)
	}
	completed, err := s.remote.ListTasks(ctx, s.userID, true)
	if err != nil {
		return remoteErr("refresh completed tasks", err)
	}

	s.mu.Lock()
	if s.version != startVersion {
		s.mu.Unlock()
		return nil
	}
	s.active = active
	s.completed = completed
	s.version++
	s.mu.Unlock()

	s.notify()
	return nil
}

// refreshBestEffort reconciles after archival transitions. Failures only log;
// the optimistic state already reflects the user's action.
func (s *TaskStore) refreshBestEffort(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil {
		log.Printf("⚠️  Task store refetch failed for user %s: %v", s.userID, err)
	}
}

// AddTask validates the draft, assigns the next sort_order in the target
// bucket, and inserts remotely. There is no optimistic add: local state only
// changes once the remote returns the persisted row.
func (s *TaskStore) AddTask(ctx context.Context, draft models.Task) (models.Task, error) {
	if strings.TrimSpace(draft.SubTask) == "" {
		return models.Task{}, &ValidationError{Field: "sub_task", Message: "must not be empty"}
	}
	if draft.Bucket == "" {
		draft.Bucket = models.BucketToday
	}
	if !models.ValidBucket(draft.Bucket) {
		return models.Task{}, &ValidationError{Field: "bucket", Message: fmt.Sprintf("unknown bucket %q", draft.Bucket)}
	}
	if draft.Importance == "" {
		draft.Importance = models.ImportanceLow
	}
	if !models.ValidImportance(draft.Importance) {
		return models.Task{}, &ValidationError{Field: "importance", Message: fmt.Sprintf("unknown level %q", draft.Importance)}
	}

	draft.UserID = s.userID
	draft.Completed = false
	draft.IsArchived = false

	s.mu.Lock()
	next := board.NextSortOrder(s.active, draft.Bucket)
	s.mu.Unlock()
	draft.SortOrder = &next

	created, err := s.remote.InsertTask(ctx, draft)
	if err != nil {
		return models.Task{}, remoteErr("add task", err)
	}

	s.mu.Lock()
	s.active = append(s.active, created)
	s.version++
	s.mu.Unlock()

	s.notify()
	return created, nil
}

// fieldEdit captures one optimistic single-field change and how to undo it.
type fieldEdit struct {
	column string
	value  interface{}
	apply  func(*models.Task)
	undo   func(*models.Task)
}

func editFor(t models.Task, column string, value interface{}) (fieldEdit, error) {
	edit := fieldEdit{column: column, value: value}
	switch column {
	case "sub_task":
		v, ok := value.(string)
		if !ok || strings.TrimSpace(v) == "" {
			return edit, &ValidationError{Field: column, Message: "must be a non-empty string"}
		}
		prev := t.SubTask
		edit.apply = func(t *models.Task) { t.SubTask = v }
		edit.undo = func(t *models.Task) { t.SubTask = prev }
	case "main_task":
		v, ok := value.(string)
		if !ok {
			return edit, &ValidationError{Field: column, Message: "must be a string"}
		}
		prev := t.MainTask
		edit.apply = func(t *models.Task) { t.MainTask = v }
		edit.undo = func(t *models.Task) { t.MainTask = prev }
	case "category":
		v, ok := value.(string)
		if !ok {
			return edit, &ValidationError{Field: column, Message: "must be a string"}
		}
		prev := t.Category
		edit.apply = func(t *models.Task) { t.Category = v }
		edit.undo = func(t *models.Task) { t.Category = prev }
	case "importance":
		v, ok := value.(string)
		if !ok || !models.ValidImportance(v) {
			return edit, &ValidationError{Field: column, Message: "must be Low, Medium or High"}
		}
		prev := t.Importance
		edit.apply = func(t *models.Task) { t.Importance = v }
		edit.undo = func(t *models.Task) { t.Importance = prev }
	case "time_estimate":
		v, ok := value.(*int)
		if !ok {
			return edit, &ValidationError{Field: column, Message: "must be minutes or null"}
		}
		if v != nil && *v < 0 {
			return edit, &ValidationError{Field: column, Message: "must not be negative"}
		}
		prev := t.TimeEstimate
		edit.apply = func(t *models.Task) { t.TimeEstimate = v }
		edit.undo = func(t *models.Task) { t.TimeEstimate = prev }
	default:
		return edit, &ValidationError{Field: column, Message: "not an editable field"}
	}
	return edit, nil
}

// UpdateField applies one field edit optimistically and persists it. On
// persistence failure only that field rolls back, so concurrent edits to
// other fields survive.
func (s *TaskStore) UpdateField(ctx context.Context, id uuid.UUID, column string, value interface{}) error {
	s.mu.Lock()
	t := s.findActive(id)
	if t == nil {
		s.mu.Unlock()
		return ErrNotFound
	}
	edit, err := editFor(*t, column, value)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	edit.apply(t)
	t.UpdatedAt = time.Now()
	s.version++
	s.mu.Unlock()
	s.notify()

	err = s.remote.UpdateTaskFields(ctx, id, s.userID, map[string]interface{}{column: value})
	if err != nil {
		s.mu.Lock()
		if cur := s.findActive(id); cur != nil {
			edit.undo(cur)
		}
		s.version++
		s.mu.Unlock()
		s.notify()
		return remoteErr("update "+column, err)
	}
	return nil
}

// UpdateSubTask renames a task.
func (s *TaskStore) UpdateSubTask(ctx context.Context, id uuid.UUID, subTask string) error {
	return s.UpdateField(ctx, id, "sub_task", subTask)
}

// UpdateImportance changes a task's importance level.
func (s *TaskStore) UpdateImportance(ctx context.Context, id uuid.UUID, importance string) error {
	return s.UpdateField(ctx, id, "importance", importance)
}

// UpdateTimeEstimate changes a task's minute estimate; nil clears it.
func (s *TaskStore) UpdateTimeEstimate(ctx context.Context, id uuid.UUID, minutes *int) error {
	return s.UpdateField(ctx, id, "time_estimate", minutes)
}

// ToggleCompletion marks a task complete or incomplete. Completing a task
// archives it: completed tasks are archived tasks, kept in lockstep here
// rather than by a database constraint. Marking incomplete updates the row
// in place without moving it back to the active list.
func (s *TaskStore) ToggleCompletion(ctx context.Context, id uuid.UUID, completed bool) error {
	if completed {
		return s.moveToArchive(ctx, id, true)
	}

	s.mu.Lock()
	t := s.findCompleted(id)
	if t == nil {
		s.mu.Unlock()
		return ErrNotFound
	}
	prev := t.Completed
	t.Completed = false
	t.UpdatedAt = time.Now()
	s.version++
	s.mu.Unlock()
	s.notify()

	err := s.remote.UpdateTaskFields(ctx, id, s.userID, map[string]interface{}{"completed": false})
	if err != nil {
		s.mu.Lock()
		if cur := s.findCompleted(id); cur != nil {
			cur.Completed = prev
		}
		s.version++
		s.mu.Unlock()
		s.notify()
		return remoteErr("mark incomplete", err)
	}
	return nil
}

// ArchiveTask soft-terminates a task without marking it complete.
func (s *TaskStore) ArchiveTask(ctx context.Context, id uuid.UUID) error {
	return s.moveToArchive(ctx, id, false)
}

// moveToArchive transfers a task from the active list to the completed list
// optimistically, persists the flags, then refetches both lists to reconcile
// drift from concurrent mutations. On persistence failure the refetch is the
// rollback: state is re-derived from the remote.
func (s *TaskStore) moveToArchive(ctx context.Context, id uuid.UUID, completed bool) error {
	now := time.Now()

	s.mu.Lock()
	idx := s.activeIndex(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	t := s.active[idx]
	t.IsArchived = true
	t.Completed = t.Completed || completed
	t.UpdatedAt = now
	s.active = append(s.active[:idx], s.active[idx+1:]...)
	s.completed = append(s.completed, t)
	s.version++
	s.mu.Unlock()
	s.notify()

	patch := map[string]interface{}{"is_archived": true, "updated_at": now}
	if completed {
		patch["completed"] = true
	}
	op := "archive task"
	if completed {
		op = "complete task"
	}

	if err := s.remote.UpdateTaskFields(ctx, id, s.userID, patch); err != nil {
		s.refreshBestEffort(ctx)
		return remoteErr(op, err)
	}

	s.refreshBestEffort(ctx)
	return nil
}

// UnarchiveTask returns a task to the active set with a fresh sort_order at
// the end of its bucket, clearing both terminal flags.
func (s *TaskStore) UnarchiveTask(ctx context.Context, id uuid.UUID) error {
	now := time.Now()

	s.mu.Lock()
	idx := s.completedIndex(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	t := s.completed[idx]
	next := board.NextSortOrder(s.active, t.Bucket)
	t.IsArchived = false
	t.Completed = false
	t.SortOrder = &next
	t.UpdatedAt = now
	s.completed = append(s.completed[:idx], s.completed[idx+1:]...)
	s.active = append(s.active, t)
	s.version++
	s.mu.Unlock()
	s.notify()

	patch := map[string]interface{}{
		"is_archived": false,
		"completed":   false,
		"sort_order":  next,
		"updated_at":  now,
	}
	if err := s.remote.UpdateTaskFields(ctx, id, s.userID, patch); err != nil {
		s.refreshBestEffort(ctx)
		return remoteErr("unarchive task", err)
	}

	s.refreshBestEffort(ctx)
	return nil
}

// DeleteTask is remote-first: local state only changes after the remote
// confirms the row is gone.
func (s *TaskStore) DeleteTask(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	known := s.activeIndex(id) >= 0 || s.completedIndex(id) >= 0
	s.mu.Unlock()
	if !known {
		return ErrNotFound
	}

	if err := s.remote.DeleteTask(ctx, id, s.userID); err != nil {
		return remoteErr("delete task", err)
	}

	s.mu.Lock()
	if idx := s.activeIndex(id); idx >= 0 {
		s.active = append(s.active[:idx], s.active[idx+1:]...)
	}
	if idx := s.completedIndex(id); idx >= 0 {
		s.completed = append(s.completed[:idx], s.completed[idx+1:]...)
	}
	s.version++
	s.mu.Unlock()

	s.notify()
	return nil
}

// ReorderTasks applies a batched ordering update optimistically and persists
// it in one upsert. There is no granular rollback: on failure the affected
// buckets are re-derived with a full refetch.
func (s *TaskStore) ReorderTasks(ctx context.Context, updates []board.SortUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	s.mu.Lock()
	for _, u := range updates {
		if t := s.findActive(u.ID); t != nil {
			so := u.SortOrder
			t.SortOrder = &so
			t.Bucket = u.Bucket
			t.UpdatedAt = time.Now()
		}
	}
	s.version++
	s.mu.Unlock()
	s.notify()

	if err := s.remote.UpsertSortOrders(ctx, s.userID, updates); err != nil {
		s.refreshBestEffort(ctx)
		return remoteErr("reorder tasks", err)
	}
	return nil
}

// MoveTask interprets a drag gesture and persists the resulting order. An
// unresolvable gesture is a no-op and returns nil updates with no error.
func (s *TaskStore) MoveTask(ctx context.Context, intent board.DragIntent) ([]board.SortUpdate, error) {
	updates := board.Resolve(s.Active(), intent)
	if updates == nil {
		return nil, nil
	}
	if err := s.ReorderTasks(ctx, updates); err != nil {
		return nil, err
	}
	return updates, nil
}

func (s *TaskStore) findActive(id uuid.UUID) *models.Task {
	if idx := s.activeIndex(id); idx >= 0 {
		return &s.active[idx]
	}
	return nil
}

func (s *TaskStore) findCompleted(id uuid.UUID) *models.Task {
	if idx := s.completedIndex(id); idx >= 0 {
		return &s.completed[idx]
	}
	return nil
}

func (s *TaskStore) activeIndex(id uuid.UUID) int {
	for i := range s.active {
		if s.active[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *TaskStore) completedIndex(id uuid.UUID) int {
	for i := range s.completed {
		if s.completed[i].ID == id {
			return i
		}
	}
	return -1
}
