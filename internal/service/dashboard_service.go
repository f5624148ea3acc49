package service

import (
	"context"

	"github.com/unclebandit/edutour-mailer/internal/model"
	"github.com/unclebandit/edutour-mailer/internal/repository"
)

type DashboardService struct {
	StatsRepo repository.StatsRepositoryInterface
}

func (s *DashboardService) Stats(ctx context.Context) (*model.DashboardStats, error) {
	return s.StatsRepo.Dashboard(ctx)
}
