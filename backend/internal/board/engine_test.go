package board

import (
	"testing"
	"time"

	"github.com/muhuuh/todo-organisor-sub000/backend/internal/models"

	"github.com/gofrs/uuid"
)

var testBase = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func newTask(sub, main, bucket string, order *int, created time.Time) models.Task {
	return models.Task{
		ID:        uuid.Must(uuid.NewV4()),
		UserID:    uuid.Must(uuid.NewV4()),
		SubTask:   sub,
		MainTask:  main,
		Bucket:    bucket,
		SortOrder: order,
		CreatedAt: created,
	}
}

func order(n int) *int {
	return &n
}

func TestSortByOrder_AssignedBeforeUnassigned(t *testing.T) {
	tasks := []models.Task{
		newTask("no order", "", models.BucketToday, nil, testBase),
		newTask("third", "", models.BucketToday, order(3), testBase),
		newTask("first", "", models.BucketToday, order(1), testBase),
		newTask("second", "", models.BucketToday, order(2), testBase),
	}

	sorted := SortByOrder(tasks)

	want := []string{"first", "second", "third", "no order"}
	for i, title := range want {
		if sorted[i].SubTask != title {
			t.Errorf("position %d: got %q, want %q", i, sorted[i].SubTask, title)
		}
	}
}

func TestSortByOrder_FallbackNewestFirst(t *testing.T) {
	// Bucket "Today": A created 09:00, B created 10:00, both without
	// sort_order. Expected display order is [B, A].
	a := newTask("A", "", models.BucketToday, nil, testBase)
	b := newTask("B", "", models.BucketToday, nil, testBase.Add(time.Hour))

	sorted := SortByOrder([]models.Task{a, b})

	if sorted[0].SubTask != "B" || sorted[1].SubTask != "A" {
		t.Errorf("expected [B, A], got [%s, %s]", sorted[0].SubTask, sorted[1].SubTask)
	}
}

func TestSortByOrder_DoesNotMutateInput(t *testing.T) {
	tasks := []models.Task{
		newTask("b", "", models.BucketToday, order(2), testBase),
		newTask("a", "", models.BucketToday, order(1), testBase),
	}

	_ = SortByOrder(tasks)

	if tasks[0].SubTask != "b" {
		t.Error("SortByOrder mutated its input")
	}
}

func TestGroupByProject_SentinelAndGroups(t *testing.T) {
	tasks := []models.Task{
		newTask("loose", "", models.BucketToday, order(1), testBase),
		newTask("alpha 1", "Alpha", models.BucketToday, order(2), testBase),
		newTask("alpha 2", "Alpha", models.BucketToday, order(3), testBase),
		newTask("solo", "Zeta", models.BucketToday, order(4), testBase),
	}

	g := GroupByProject(tasks)

	if got := len(g.Keys()); got != 3 {
		t.Fatalf("expected 3 groups, got %d", got)
	}
	if len(g.Get(Ungrouped)) != 1 {
		t.Errorf("expected 1 ungrouped task, got %d", len(g.Get(Ungrouped)))
	}
	if len(g.Get("Alpha")) != 2 {
		t.Errorf("expected 2 Alpha tasks, got %d", len(g.Get("Alpha")))
	}
	// A project matching no other task still forms a singleton group.
	if len(g.Get("Zeta")) != 1 {
		t.Errorf("expected singleton Zeta group, got %d tasks", len(g.Get("Zeta")))
	}
}

func TestGroupByProject_EmptyBucket(t *testing.T) {
	g := GroupByProject(nil)

	if len(g.Keys()) != 0 {
		t.Errorf("expected no groups for empty bucket, got %v", g.Keys())
	}
	if got := Flatten(g, GroupDisplayOrder(g)); len(got) != 0 {
		t.Errorf("expected empty flatten result, got %d tasks", len(got))
	}
}

func TestGroupDisplayOrder_ByLeadTask(t *testing.T) {
	tasks := []models.Task{
		newTask("z1", "Zeta", models.BucketOnHold, order(1), testBase),
		newTask("a1", "Alpha", models.BucketOnHold, order(2), testBase),
		newTask("a2", "Alpha", models.BucketOnHold, order(3), testBase),
		newTask("loose", "", models.BucketOnHold, order(4), testBase),
	}

	g := GroupByProject(tasks)
	got := GroupDisplayOrder(g)

	want := []string{"Zeta", "Alpha"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestGroupDisplayOrder_ExcludesSentinel(t *testing.T) {
	tasks := []models.Task{
		newTask("loose", "", models.BucketToday, order(1), testBase),
		newTask("a", "Alpha", models.BucketToday, order(2), testBase),
	}

	for _, key := range GroupDisplayOrder(GroupByProject(tasks)) {
		if key == Ungrouped {
			t.Fatal("ungrouped sentinel must not appear in group display order")
		}
	}
}

func TestFlatten_DenseSequence(t *testing.T) {
	tests := []struct {
		name  string
		tasks []models.Task
	}{
		{
			name: "mixed groups and loose tasks",
			tasks: []models.Task{
				newTask("a1", "Alpha", models.BucketToday, order(5), testBase),
				newTask("loose", "", models.BucketToday, nil, testBase),
				newTask("z1", "Zeta", models.BucketToday, order(9), testBase),
				newTask("a2", "Alpha", models.BucketToday, order(7), testBase),
			},
		},
		{
			name: "all unassigned",
			tasks: []models.Task{
				newTask("x", "", models.BucketToday, nil, testBase),
				newTask("y", "P", models.BucketToday, nil, testBase.Add(time.Minute)),
				newTask("z", "P", models.BucketToday, nil, testBase.Add(2*time.Minute)),
			},
		},
		{
			name:  "single task",
			tasks: []models.Task{newTask("only", "", models.BucketToday, order(42), testBase)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := GroupByProject(tt.tasks)
			flat := Flatten(g, GroupDisplayOrder(g))

			if len(flat) != len(tt.tasks) {
				t.Fatalf("flatten changed length: got %d, want %d", len(flat), len(tt.tasks))
			}
			for i, task := range flat {
				if task.SortOrder == nil || *task.SortOrder != i+1 {
					t.Errorf("position %d: expected sort_order %d, got %v", i, i+1, task.SortOrder)
				}
			}
		})
	}
}

func TestFlatten_UngroupedFirst(t *testing.T) {
	tasks := []models.Task{
		newTask("a1", "Alpha", models.BucketToday, order(1), testBase),
		newTask("loose 1", "", models.BucketToday, order(2), testBase),
		newTask("loose 2", "", models.BucketToday, order(3), testBase),
	}

	flat := FlattenBucket(tasks)

	if flat[0].MainTask != "" || flat[1].MainTask != "" {
		t.Error("ungrouped tasks must occupy the lowest sort_order values")
	}
	if flat[2].MainTask != "Alpha" {
		t.Errorf("expected Alpha task last, got %q", flat[2].MainTask)
	}
}

func TestFlatten_Idempotent(t *testing.T) {
	tasks := []models.Task{
		newTask("a1", "Alpha", models.BucketToday, order(4), testBase),
		newTask("loose", "", models.BucketToday, nil, testBase),
		newTask("z1", "Zeta", models.BucketToday, order(2), testBase),
		newTask("a2", "Alpha", models.BucketToday, order(6), testBase),
	}

	first := FlattenBucket(tasks)
	second := FlattenBucket(first)

	if len(first) != len(second) {
		t.Fatalf("length changed between passes: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("position %d: task order changed between passes", i)
		}
		if *first[i].SortOrder != *second[i].SortOrder {
			t.Errorf("position %d: sort_order changed between passes (%d vs %d)",
				i, *first[i].SortOrder, *second[i].SortOrder)
		}
	}
}

func TestFlatten_OnlyTouchesSortOrder(t *testing.T) {
	est := 45
	task := newTask("a1", "Alpha", models.BucketToday, order(9), testBase)
	task.TimeEstimate = &est
	task.Importance = models.ImportanceHigh

	flat := FlattenBucket([]models.Task{task})

	got := flat[0]
	if got.SubTask != task.SubTask || got.MainTask != task.MainTask ||
		got.Importance != task.Importance || got.TimeEstimate != task.TimeEstimate ||
		got.Bucket != task.Bucket || got.ID != task.ID {
		t.Error("flatten must replace sort_order only")
	}
	if *got.SortOrder != 1 {
		t.Errorf("expected sort_order 1, got %d", *got.SortOrder)
	}
}

func TestNextSortOrder(t *testing.T) {
	tests := []struct {
		name   string
		tasks  []models.Task
		bucket string
		want   int
	}{
		{
			name: "dense bucket appends at end",
			tasks: []models.Task{
				newTask("1", "", models.BucketTomorrow, order(1), testBase),
				newTask("2", "", models.BucketTomorrow, order(2), testBase),
				newTask("3", "", models.BucketTomorrow, order(3), testBase),
			},
			bucket: models.BucketTomorrow,
			want:   4,
		},
		{
			name:   "empty bucket starts at 1",
			tasks:  nil,
			bucket: models.BucketToday,
			want:   1,
		},
		{
			name: "other buckets are ignored",
			tasks: []models.Task{
				newTask("elsewhere", "", models.BucketOnHold, order(7), testBase),
			},
			bucket: models.BucketToday,
			want:   1,
		},
		{
			name: "unassigned orders do not count",
			tasks: []models.Task{
				newTask("pending", "", models.BucketToday, nil, testBase),
				newTask("placed", "", models.BucketToday, order(2), testBase),
			},
			bucket: models.BucketToday,
			want:   3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextSortOrder(tt.tasks, tt.bucket); got != tt.want {
				t.Errorf("NextSortOrder() = %d, want %d", got, tt.want)
			}
		})
	}
}
