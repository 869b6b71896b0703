package service

import (
	"context"

	"go.uber.org/zap"

	"voltswap/internal/models"
)

// GridService serves read-only pillar grid snapshots. The coordinator is the
// sole writer, so every fetch is a fresh read of the inventory; callers must
// treat any previous snapshot as invalid after a coordinator transition.
type GridService struct {
	grid   GridStore
	logger *zap.Logger
}

// NewGridService builds the service.
func NewGridService(grid GridStore, logger *zap.Logger) *GridService {
	return &GridService{grid: grid, logger: logger}
}

// FetchGrid returns the current slot grid for a pillar shaped rows x cols.
// Zero dimensions fall back to the pillar's configured layout.
func (s *GridService) FetchGrid(ctx context.Context, pillarID string, rows, cols int) (*models.SlotGrid, *models.Pillar, error) {
	pillar, err := s.grid.Pillar(ctx, pillarID)
	if err != nil {
		s.logger.Warn("pillar lookup failed", zap.String("pillar_id", pillarID), zap.Error(err))
		return nil, nil, Errf(KindGridUnavailable, "pillar %s is unavailable", pillarID)
	}
	if rows <= 0 {
		rows = pillar.Rows
	}
	if cols <= 0 {
		cols = pillar.Cols
	}

	slots, err := s.grid.PillarSlots(ctx, pillarID)
	if err != nil {
		s.logger.Warn("slot fetch failed", zap.String("pillar_id", pillarID), zap.Error(err))
		return nil, nil, Errf(KindGridUnavailable, "pillar %s is unavailable", pillarID)
	}

	grid, err := models.NewSlotGrid(pillarID, rows, cols, slots)
	if err != nil {
		s.logger.Error("inconsistent pillar layout", zap.String("pillar_id", pillarID), zap.Error(err))
		return nil, nil, Errf(KindGridUnavailable, "pillar %s layout is inconsistent", pillarID)
	}
	return grid, pillar, nil
}
