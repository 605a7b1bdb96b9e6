package board

import (
	"sort"

	"github.com/muhuuh/todo-organisor-sub000/backend/internal/models"

	"github.com/gofrs/uuid"
)

// Ungrouped is the reserved group key for tasks without a project label. It
// always renders before named groups and never takes part in explicit group
// ordering. The underscores keep it from colliding with a real project name.
const Ungrouped = "__ungrouped__"

// SortUpdate is one persisted ordering change: task ID, the bucket it ends up
// in, and its new dense position within that bucket.
type SortUpdate struct {
	ID        uuid.UUID `json:"id"`
	Bucket    string    `json:"bucket"`
	SortOrder int       `json:"sort_order"`
}

// GroupKey returns the display-group key for a task: its project label, or
// the ungrouped sentinel when the label is empty.
func GroupKey(t models.Task) string {
	if t.MainTask == "" {
		return Ungrouped
	}
	return t.MainTask
}

// taskLess is the shared display-order comparator: assigned sort_order
// ascending, unassigned after all assigned, unassigned among themselves by
// creation time descending (newest first).
func taskLess(a, b models.Task) bool {
	switch {
	case a.SortOrder != nil && b.SortOrder != nil:
		return *a.SortOrder < *b.SortOrder
	case a.SortOrder != nil:
		return true
	case b.SortOrder != nil:
		return false
	default:
		return a.CreatedAt.After(b.CreatedAt)
	}
}

// SortByOrder returns a new slice with tasks in display order. The input is
// not mutated and the sort is stable.
func SortByOrder(tasks []models.Task) []models.Task {
	out := make([]models.Task, len(tasks))
	copy(out, tasks)
	sort.SliceStable(out, func(i, j int) bool {
		return taskLess(out[i], out[j])
	})
	return out
}

// Groups partitions one bucket's tasks by project label. Member lists are
// kept in display order; keys remember first-encounter order so group
// ordering ties stay deterministic.
type Groups struct {
	byKey map[string][]models.Task
	keys  []string
}

// GroupByProject partitions tasks into display groups keyed by project label
// (the ungrouped sentinel for tasks without one). Each group's members come
// back sorted via SortByOrder.
func GroupByProject(tasks []models.Task) Groups {
	g := Groups{byKey: make(map[string][]models.Task)}
	for _, t := range tasks {
		key := GroupKey(t)
		if _, seen := g.byKey[key]; !seen {
			g.keys = append(g.keys, key)
		}
		g.byKey[key] = append(g.byKey[key], t)
	}
	for key, members := range g.byKey {
		g.byKey[key] = SortByOrder(members)
	}
	return g
}

// Get returns the member tasks for key, in display order.
func (g Groups) Get(key string) []models.Task {
	return g.byKey[key]
}

// Has reports whether key holds at least one task.
func (g Groups) Has(key string) bool {
	_, ok := g.byKey[key]
	return ok
}

// Keys returns every group key in first-encounter order, including the
// ungrouped sentinel when present.
func (g Groups) Keys() []string {
	out := make([]string, len(g.keys))
	copy(out, g.keys)
	return out
}

// Len returns the total number of tasks across all groups.
func (g Groups) Len() int {
	n := 0
	for _, members := range g.byKey {
		n += len(members)
	}
	return n
}

// GroupDisplayOrder returns the named group keys (sentinel excluded) ordered
// by each group's lead task, using the same comparator as SortByOrder. Ties
// keep first-encounter order.
func GroupDisplayOrder(g Groups) []string {
	var keys []string
	for _, key := range g.keys {
		if key != Ungrouped {
			keys = append(keys, key)
		}
	}
	sort.SliceStable(keys, func(i, j int) bool {
		return taskLess(g.byKey[keys[i]][0], g.byKey[keys[j]][0])
	})
	return keys
}

// Flatten concatenates the ungrouped tasks first, then each named group in
// groupOrder, and reassigns sort_order as a dense 1-based sequence matching
// final position. This is the only place sort_order values are computed:
// after any reorder the bucket comes out gap-free and duplicate-free. Only
// sort_order changes on the returned copies.
func Flatten(g Groups, groupOrder []string) []models.Task {
	out := make([]models.Task, 0, g.Len())
	out = append(out, g.byKey[Ungrouped]...)
	for _, key := range groupOrder {
		out = append(out, g.byKey[key]...)
	}
	for i := range out {
		pos := i + 1
		out[i].SortOrder = &pos
	}
	return out
}

// FlattenBucket groups and flattens tasks in one step, preserving the
// bucket's current display order.
func FlattenBucket(tasks []models.Task) []models.Task {
	g := GroupByProject(tasks)
	return Flatten(g, GroupDisplayOrder(g))
}

// NextSortOrder returns the sort_order an appended task should take in
// bucket: one past the highest assigned value, starting at 1.
func NextSortOrder(tasks []models.Task, bucket string) int {
	max := 0
	for _, t := range tasks {
		if t.Bucket == bucket && t.SortOrder != nil && *t.SortOrder > max {
			max = *t.SortOrder
		}
	}
	return max + 1
}
