package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"mtasks/internal/application/adapter"
	"mtasks/internal/application/dto"
	"mtasks/internal/domain/entity"
	"mtasks/internal/domain/service"
	"mtasks/internal/infrastructure/persistence/memory"
)

type staticIdentity struct {
	user *entity.User
}

func (s staticIdentity) CurrentUser(ctx context.Context) (*entity.User, error) {
	if s.user == nil {
		return nil, entity.ErrNotAuthenticated
	}
	return s.user, nil
}

func (s staticIdentity) WatchAuthState(ctx context.Context) (<-chan *entity.User, error) {
	ch := make(chan *entity.User, 1)
	ch <- s.user
	return ch, nil
}

func newStore() *adapter.TaskStore {
	return adapter.NewTaskStore(
		memory.NewTaskRepository(),
		staticIdentity{user: &entity.User{ID: "u1"}},
		service.NewValidationService(),
		zerolog.Nop(),
	)
}

func ptr[T any](v T) *T { return &v }

func TestCreateAndListTasks(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	store := newStore()
	palette := service.DefaultPriorityPalette()
	create := NewCreateTaskUseCase(store, palette)
	list := NewListTasksUseCase(store, palette)

	tomorrow := time.Now().AddDate(0, 0, 1)
	_, err := create.Execute(ctx, dto.CreateTaskRequest{Title: "Buy groceries", Category: "personal", Priority: "low"})
	is.NoErr(err)
	report, err := create.Execute(ctx, dto.CreateTaskRequest{
		Title:    "Quarterly report",
		Category: "work",
		Priority: "high",
		DueDate:  &tomorrow,
		SubTasks: []string{"Collect numbers"},
	})
	is.NoErr(err)
	is.Equal(report.PriorityColor, "#FF3B30")
	is.Equal(len(report.SubTasks), 1)
	is.True(!report.IsOverdue)

	all, err := list.Execute(ctx, dto.ListTasksRequest{})
	is.NoErr(err)
	is.Equal(len(all), 2)
	is.Equal(all[0].Title, "Quarterly report") // due date sorts first

	work, err := list.Execute(ctx, dto.ListTasksRequest{Category: "Work"})
	is.NoErr(err)
	is.Equal(len(work), 1)

	found, err := list.Execute(ctx, dto.ListTasksRequest{Category: "all", Search: "GROCER"})
	is.NoErr(err)
	is.Equal(len(found), 1)
	is.Equal(found[0].Title, "Buy groceries")

	_, err = list.Execute(ctx, dto.ListTasksRequest{Priority: "urgent"})
	is.True(err != nil)
}

func TestCreateTask_InvalidCategory(t *testing.T) {
	is := is.New(t)
	create := NewCreateTaskUseCase(newStore(), service.DefaultPriorityPalette())

	_, err := create.Execute(context.Background(), dto.CreateTaskRequest{Title: "x", Category: "hobby"})
	is.True(errors.Is(err, entity.ErrInvalidCategory))
}

func TestUpdateToggleAndStatistics(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	store := newStore()
	palette := service.DefaultPriorityPalette()

	created, err := NewCreateTaskUseCase(store, palette).Execute(ctx, dto.CreateTaskRequest{Title: "Draft"})
	is.NoErr(err)

	update := NewUpdateTaskUseCase(store)
	is.True(errors.Is(update.Execute(ctx, created.ID, dto.UpdateTaskRequest{}), entity.ErrRequiredField))
	is.NoErr(update.Execute(ctx, created.ID, dto.UpdateTaskRequest{Title: ptr("Final"), Priority: ptr("High")}))

	toggled, err := NewToggleTaskUseCase(store, palette).Execute(ctx, created.ID)
	is.NoErr(err)
	is.True(toggled.Completed)
	is.True(toggled.CompletedAt != nil)
	is.Equal(toggled.Title, "Final")

	stats, err := NewGetStatisticsUseCase(store).Execute(ctx)
	is.NoErr(err)
	is.Equal(stats.Total, 1)
	is.Equal(stats.Completed, 1)
	is.Equal(stats.CompletionRate, 1.0)
	is.Equal(stats.PriorityDistribution["high"], 1)
	is.Equal(stats.CategoryDistribution["work"], 0)

	is.NoErr(NewDeleteTaskUseCase(store).Execute(ctx, created.ID))
	_, err = NewGetTaskUseCase(store, palette).Execute(ctx, created.ID)
	is.True(errors.Is(err, entity.ErrTaskNotFound))
}

func TestSubTaskUseCases(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	store := newStore()
	palette := service.DefaultPriorityPalette()

	created, err := NewCreateTaskUseCase(store, palette).Execute(ctx, dto.CreateTaskRequest{Title: "Trip"})
	is.NoErr(err)

	sub, err := NewAddSubTaskUseCase(store).Execute(ctx, created.ID, "Book flights")
	is.NoErr(err)
	is.NoErr(NewToggleSubTaskUseCase(store).Execute(ctx, created.ID, sub.ID))

	got, err := NewGetTaskUseCase(store, palette).Execute(ctx, created.ID)
	is.NoErr(err)
	is.Equal(got.SubTasks, []dto.SubTaskDTO{{ID: sub.ID, Title: "Book flights", Completed: true}})
}
