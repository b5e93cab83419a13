package service

import (
	"testing"
	"time"

	"github.com/matryer/is"
	"mtasks/internal/domain/entity"
	"mtasks/internal/domain/valueobject"
)

var now = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type taskOpt func(*entity.TaskState)

func withPriority(p valueobject.Priority) taskOpt {
	return func(s *entity.TaskState) { s.Priority = p }
}

func withCategory(c valueobject.Category) taskOpt {
	return func(s *entity.TaskState) { s.Category = c }
}

func withDue(d time.Time) taskOpt {
	return func(s *entity.TaskState) { s.DueDate = &d }
}

func withDescription(d string) taskOpt {
	return func(s *entity.TaskState) { s.Description = d }
}

func withCreated(c time.Time) taskOpt {
	return func(s *entity.TaskState) { s.CreatedAt = c }
}

func completed() taskOpt {
	return func(s *entity.TaskState) { s.Completed = true }
}

func newTask(t *testing.T, id, title string, opts ...taskOpt) *entity.Task {
	t.Helper()
	state := entity.TaskState{
		ID:        id,
		Title:     title,
		Category:  valueobject.CategoryPersonal,
		Priority:  valueobject.PriorityMedium,
		UserID:    "u1",
		CreatedAt: now.Add(-24 * time.Hour),
		UpdatedAt: now.Add(-24 * time.Hour),
	}
	for _, opt := range opts {
		opt(&state)
	}
	task, err := entity.RestoreTask(state)
	if err != nil {
		t.Fatalf("restore %s: %v", id, err)
	}
	return task
}

func ids(tasks []*entity.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.ID()
	}
	return out
}

func fixture(t *testing.T) []*entity.Task {
	return []*entity.Task{
		newTask(t, "1", "Buy Groceries", withCategory(valueobject.CategoryPersonal)),
		newTask(t, "2", "Write report", withCategory(valueobject.CategoryWork), withPriority(valueobject.PriorityHigh),
			withDescription("include groceries budget")),
		newTask(t, "3", "Call plumber", withCategory(valueobject.CategoryUrgent), withPriority(valueobject.PriorityHigh), completed()),
		newTask(t, "4", "Read book", withPriority(valueobject.PriorityLow)),
		newTask(t, "5", "grocery list", withCategory(valueobject.CategoryWork)),
	}
}

func TestFilterTasks_Search(t *testing.T) {
	is := is.New(t)
	got := FilterTasks(fixture(t), valueobject.TaskFilter{SearchQuery: "groceries"})
	is.Equal(ids(got), []string{"1", "2"})

	got = FilterTasks(fixture(t), valueobject.TaskFilter{SearchQuery: "GROCERIES"})
	is.Equal(ids(got), []string{"1", "2"})
}

func TestFilterTasks_Conjunction(t *testing.T) {
	is := is.New(t)
	tasks := fixture(t)

	filter := valueobject.TaskFilter{Category: valueobject.CategoryWork, Priority: valueobject.PriorityHigh}
	is.Equal(ids(FilterTasks(tasks, filter)), []string{"2"})

	filter = valueobject.TaskFilter{Priority: valueobject.PriorityHigh}.WithCompleted(false)
	is.Equal(ids(FilterTasks(tasks, filter)), []string{"2"})

	filter = valueobject.TaskFilter{Category: valueobject.CategoryAll, Priority: valueobject.PriorityAll}
	is.Equal(len(FilterTasks(tasks, filter)), len(tasks))

	filter = valueobject.TaskFilter{}.WithCompleted(true)
	is.Equal(ids(FilterTasks(tasks, filter)), []string{"3"})
}

func TestFilterTasks_Idempotent(t *testing.T) {
	is := is.New(t)
	tasks := fixture(t)
	filters := []valueobject.TaskFilter{
		{},
		{SearchQuery: "re"},
		{Category: valueobject.CategoryWork},
		{Priority: valueobject.PriorityHigh, SearchQuery: "o"},
		valueobject.TaskFilter{Category: valueobject.CategoryPersonal}.WithCompleted(false),
	}
	for _, f := range filters {
		once := FilterTasks(tasks, f)
		twice := FilterTasks(once, f)
		is.Equal(ids(once), ids(twice))
	}
}

func TestFilterTasks_DoesNotMutateInput(t *testing.T) {
	is := is.New(t)
	tasks := fixture(t)
	before := ids(tasks)
	_ = FilterTasks(tasks, valueobject.TaskFilter{Category: valueobject.CategoryUrgent})
	is.Equal(ids(tasks), before)
}

func TestSortTasks_Example(t *testing.T) {
	is := is.New(t)
	a := newTask(t, "A", "a", withPriority(valueobject.PriorityHigh), withDue(now.AddDate(0, 0, 1)))
	b := newTask(t, "B", "b", withPriority(valueobject.PriorityLow))
	c := newTask(t, "C", "c", withPriority(valueobject.PriorityMedium), withDue(now.AddDate(0, 0, -1)), completed())

	is.Equal(ids(SortTasks([]*entity.Task{c, b, a})), []string{"A", "B", "C"})
	is.Equal(ids(SortTasks([]*entity.Task{a, b, c})), []string{"A", "B", "C"})
}

func TestSortTasks_Keys(t *testing.T) {
	is := is.New(t)
	tasks := []*entity.Task{
		newTask(t, "low-old", "x", withPriority(valueobject.PriorityLow), withCreated(now.Add(-48*time.Hour))),
		newTask(t, "high", "x", withPriority(valueobject.PriorityHigh)),
		newTask(t, "low-new", "x", withPriority(valueobject.PriorityLow), withCreated(now.Add(-time.Hour))),
		newTask(t, "due-late", "x", withDue(now.AddDate(0, 0, 5))),
		newTask(t, "due-soon", "x", withDue(now.AddDate(0, 0, 2))),
	}
	is.Equal(ids(SortTasks(tasks)), []string{"due-soon", "due-late", "high", "low-new", "low-old"})
}

func TestSortTasks_PermutationAndStable(t *testing.T) {
	is := is.New(t)
	tasks := fixture(t)
	once := SortTasks(tasks)
	is.Equal(len(once), len(tasks))

	seen := map[string]int{}
	for _, task := range once {
		seen[task.ID()]++
	}
	for _, task := range tasks {
		is.Equal(seen[task.ID()], 1)
	}

	is.Equal(ids(SortTasks(once)), ids(once))
}

func TestIsOverdueAt(t *testing.T) {
	is := is.New(t)

	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	endOfToday := startOfToday.Add(23*time.Hour + 59*time.Minute)
	is.True(!IsOverdueAt(newTask(t, "1", "x", withDue(startOfToday)), now))
	is.True(!IsOverdueAt(newTask(t, "2", "x", withDue(endOfToday)), now))

	yesterday := now.AddDate(0, 0, -1)
	is.True(IsOverdueAt(newTask(t, "3", "x", withDue(yesterday)), now))
	is.True(!IsOverdueAt(newTask(t, "4", "x", withDue(yesterday), completed()), now))
	is.True(!IsOverdueAt(newTask(t, "5", "x"), now))
	is.True(!IsOverdueAt(nil, now))
}
