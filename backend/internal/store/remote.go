package store

import (
	"context"

	"github.com/muhuuh/todo-organisor-sub000/backend/internal/board"
	"github.com/muhuuh/todo-organisor-sub000/backend/internal/models"

	"github.com/gofrs/uuid"
)

// Remote is the persistent-store collaborator behind a TaskStore. All calls
// are scoped to one owner; implementations enforce the per-user filter.
type Remote interface {
	// ListTasks returns the user's tasks, active (archived=false) or
	// archived (archived=true), in stored display order.
	ListTasks(ctx context.Context, userID uuid.UUID, archived bool) ([]models.Task, error)

	// InsertTask stores a new task and returns the row as persisted
	// (id and timestamps filled in).
	InsertTask(ctx context.Context, task models.Task) (models.Task, error)

	// UpdateTaskFields applies a column patch to one task.
	UpdateTaskFields(ctx context.Context, id, userID uuid.UUID, patch map[string]interface{}) error

	// UpsertSortOrders applies a batched ordering update in one round trip.
	UpsertSortOrders(ctx context.Context, userID uuid.UUID, updates []board.SortUpdate) error

	// DeleteTask removes the row entirely.
	DeleteTask(ctx context.Context, id, userID uuid.UUID) error
}
