package service

import (
	"context"

	"delicioso/internal/model"
	"delicioso/internal/repository"

	"github.com/rs/zerolog"
)

type adminService struct {
	adminRepo repository.AdminRepository
	logger    zerolog.Logger
}

// NewAdminService creates a new admin service.
func NewAdminService(adminRepo repository.AdminRepository, logger zerolog.Logger) AdminService {
	return &adminService{
		adminRepo: adminRepo,
		logger:    logger.With().Str("service", "admin").Logger(),
	}
}

// ResetAll empties the order and stock ledgers.
func (s *adminService) ResetAll(ctx context.Context) (err error) {
	ctx, span := tracer.Start(ctx, "AdminService.ResetAll")
	defer func() { finishSpan(span, err) }()

	if err = s.adminRepo.ResetAll(ctx); err != nil {
		return model.NewPersistenceError("failed to reset ledgers", err)
	}
	s.logger.Info().Msg("ledgers reset")
	return nil
}
