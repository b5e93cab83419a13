package task

import (
	"context"

	"mtasks/internal/application/dto"
	"mtasks/internal/domain/service"
)

// GetStatisticsUseCase summarises the current user's tasks
type GetStatisticsUseCase struct {
	store TaskStore
}

// NewGetStatisticsUseCase creates a new GetStatisticsUseCase
func NewGetStatisticsUseCase(store TaskStore) *GetStatisticsUseCase {
	return &GetStatisticsUseCase{store: store}
}

// Execute computes statistics over every task of the user
func (uc *GetStatisticsUseCase) Execute(ctx context.Context) (dto.StatisticsDTO, error) {
	tasks, err := uc.store.Load(ctx)
	if err != nil {
		return dto.StatisticsDTO{}, err
	}
	return dto.StatisticsToDTO(service.ComputeStatistics(tasks, uc.store.Now())), nil
}
