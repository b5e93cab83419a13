//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"mtasks/internal/application/adapter"
	"mtasks/internal/application/usecase/task"
	"mtasks/internal/domain/repository"
	"mtasks/internal/infrastructure/identity"
)

// InitializeContainer sets up all dependencies
func InitializeContainer(path ConfigPath) (*Container, func(), error) {
	wire.Build(
		// Config
		ProvideConfigLoader,
		ProvideConfig,
		ProvideLogger,

		// Repositories
		ProvideTaskRepository,
		ProvideMailer,
		ProvideIdentityProvider,
		wire.Bind(new(repository.IdentityProvider), new(*identity.LocalProvider)),

		// Domain Services
		ProvideValidationService,
		ProvidePriorityPalette,

		// Adapter
		adapter.NewTaskStore,
		wire.Bind(new(task.TaskStore), new(*adapter.TaskStore)),

		// Use Cases - Task
		task.NewListTasksUseCase,
		task.NewGetTaskUseCase,
		task.NewCreateTaskUseCase,
		task.NewUpdateTaskUseCase,
		task.NewDeleteTaskUseCase,
		task.NewToggleTaskUseCase,
		task.NewAddSubTaskUseCase,
		task.NewToggleSubTaskUseCase,
		task.NewGetStatisticsUseCase,

		// Wire the container
		wire.Struct(new(Container), "*"),
	)
	return nil, nil, nil
}
