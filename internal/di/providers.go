package di

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"mtasks/internal/application/adapter"
	"mtasks/internal/application/usecase/task"
	"mtasks/internal/daemon"
	"mtasks/internal/domain/repository"
	"mtasks/internal/domain/service"
	"mtasks/internal/infrastructure/config"
	"mtasks/internal/infrastructure/identity"
	"mtasks/internal/infrastructure/logging"
	"mtasks/internal/infrastructure/notify"
	"mtasks/internal/infrastructure/persistence/filesystem"
	"mtasks/internal/infrastructure/persistence/memory"
	"mtasks/internal/infrastructure/persistence/redis"
	"mtasks/internal/infrastructure/persistence/sqlite"
)

// Container holds all application dependencies
type Container struct {
	// Config
	Config       *config.Config
	ConfigLoader *config.Loader
	Logger       zerolog.Logger

	// Repositories
	TaskRepo repository.TaskRepository
	Identity *identity.LocalProvider

	// Domain Services
	ValidationService *service.ValidationService
	Palette           service.PriorityPalette

	// Adapter
	TaskStore *adapter.TaskStore

	// Use Cases - Task
	ListTasksUseCase     *task.ListTasksUseCase
	GetTaskUseCase       *task.GetTaskUseCase
	CreateTaskUseCase    *task.CreateTaskUseCase
	UpdateTaskUseCase    *task.UpdateTaskUseCase
	DeleteTaskUseCase    *task.DeleteTaskUseCase
	ToggleTaskUseCase    *task.ToggleTaskUseCase
	AddSubTaskUseCase    *task.AddSubTaskUseCase
	ToggleSubTaskUseCase *task.ToggleSubTaskUseCase
	GetStatisticsUseCase *task.GetStatisticsUseCase
}

// ConfigPath is an explicit config file location. Empty selects the default.
type ConfigPath string

// Provider functions

func ProvideConfigLoader(path ConfigPath) (*config.Loader, error) {
	if path == "" {
		return config.NewLoader()
	}
	return config.NewLoaderFrom(string(path))
}

func ProvideConfig(loader *config.Loader) (*config.Config, error) {
	return loader.Load()
}

func ProvideLogger(cfg *config.Config) zerolog.Logger {
	return logging.New(cfg.Logging.Level)
}

// ProvideTaskRepository opens the backend selected by storage.backend
func ProvideTaskRepository(cfg *config.Config, logger zerolog.Logger) (repository.TaskRepository, func(), error) {
	if cfg.Storage.Backend == config.BackendDaemon {
		return daemon.NewClient(daemon.GetSocketPath(cfg)), func() {}, nil
	}
	return OpenLocalRepository(cfg, cfg.Storage.Backend, logger)
}

// OpenLocalRepository opens an in-process backend. The returned cleanup
// releases its connections.
func OpenLocalRepository(cfg *config.Config, backend string, logger zerolog.Logger) (repository.TaskRepository, func(), error) {
	switch backend {
	case config.BackendMemory:
		return memory.NewTaskRepository(), func() {}, nil

	case config.BackendFilesystem, "":
		return filesystem.NewTaskRepository(cfg.Storage.TasksPath, logger), func() {}, nil

	case config.BackendSQLite:
		db, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if err := db.Close(); err != nil {
				logger.Error().Err(err).Msg("failed to close sqlite database")
			}
		}
		return sqlite.NewTaskRepository(db, logger), cleanup, nil

	case config.BackendRedis:
		client, err := redis.Connect(context.Background(), redis.Options{
			Address:  cfg.Storage.Redis.Address,
			Username: cfg.Storage.Redis.Username,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		return redis.NewTaskRepository(client, logger), client.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

func ProvideMailer(cfg *config.Config, logger zerolog.Logger) notify.Sender {
	return notify.NewMailer(cfg.Mail, logger)
}

func ProvideIdentityProvider(cfg *config.Config, mailer notify.Sender, logger zerolog.Logger) (*identity.LocalProvider, error) {
	if cfg.Identity.TokenSecret == "" {
		return nil, fmt.Errorf("identity.token_secret is not set")
	}
	return identity.NewLocalProvider(identity.Options{
		AccountsPath: cfg.Identity.AccountsPath,
		SessionPath:  cfg.Identity.SessionPath,
		Secret:       []byte(cfg.Identity.TokenSecret),
		SessionTTL:   cfg.Identity.SessionDuration(),
		ResetTTL:     cfg.Identity.ResetDuration(),
		SessionCheck: cfg.Identity.SessionCheckInterval(),
	}, mailer, logger), nil
}

func ProvideValidationService() *service.ValidationService {
	return service.NewValidationService()
}

// ProvidePriorityPalette maps the configured priority colours onto the
// default palette
func ProvidePriorityPalette(cfg *config.Config) service.PriorityPalette {
	colors := cfg.TUI.Styles.Priority
	return service.PriorityPalette{
		High:     colors.High,
		Medium:   colors.Medium,
		Low:      colors.Low,
		Fallback: colors.Default,
	}
}
