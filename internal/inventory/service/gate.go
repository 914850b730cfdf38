package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"evdms/internal/domain"
	"evdms/internal/dto"
	apperrors "evdms/internal/errors"

	"go.uber.org/zap"
)

type StockReader interface {
	FindByVehicleAndLocation(ctx context.Context, vehicleID int, location domain.StockLocation) (*domain.VehicleStock, error)
	FindForUpdate(ctx context.Context, tx *sql.Tx, vehicleID int, location domain.StockLocation) (*domain.VehicleStock, error)
}

// Gate answers "does this location hold enough unreserved stock for these
// lines". Results are advisory snapshots: stock may move between a check
// and the approval that relies on it, which is why approvals re-verify
// under row locks via SufficientForUpdate.
type Gate struct {
	stockRepo    StockReader
	logger       *zap.Logger
	checkTimeout time.Duration
}

func NewGate(stockRepo StockReader, logger *zap.Logger, checkTimeout time.Duration) *Gate {
	return &Gate{
		stockRepo:    stockRepo,
		logger:       logger,
		checkTimeout: checkTimeout,
	}
}

// CheckSufficiency runs the advisory check with a bounded wait. A timeout
// surfaces as InventoryCheckTimeoutError instead of blocking the caller.
func (g *Gate) CheckSufficiency(ctx context.Context, entity string, entityID uint, location domain.StockLocation, lines []dto.StockLine) (*dto.InventoryCheckResult, error) {
	checkCtx, cancel := context.WithTimeout(ctx, g.checkTimeout)
	defer cancel()

	var shortages []dto.StockShortage
	for _, line := range lines {
		stock, err := g.stockRepo.FindByVehicleAndLocation(checkCtx, line.VehicleID, location)
		if err != nil {
			if errors.Is(checkCtx.Err(), context.DeadlineExceeded) {
				g.logger.Warn("inventory check timed out",
					zap.String("entity", entity), zap.Uint("entityId", entityID), zap.String("location", string(location)))
				return nil, apperrors.NewInventoryCheckTimeoutError(entity, entityID, string(location))
			}
			if _, ok := apperrors.IsNotFoundError(err); ok {
				shortages = append(shortages, dto.StockShortage{
					VehicleID: line.VehicleID,
					Required:  line.Quantity,
					Available: 0,
				})
				continue
			}
			return nil, err
		}

		if stock.Available() < line.Quantity {
			shortages = append(shortages, dto.StockShortage{
				VehicleID: line.VehicleID,
				Required:  line.Quantity,
				Available: stock.Available(),
			})
		}
	}

	result := &dto.InventoryCheckResult{
		Sufficient: len(shortages) == 0,
		Location:   string(location),
		Message:    shortageMessage(location, shortages),
		CheckedAt:  time.Now().UTC(),
	}

	g.logger.Info("inventory checked",
		zap.String("entity", entity),
		zap.Uint("entityId", entityID),
		zap.String("location", string(location)),
		zap.Bool("sufficient", result.Sufficient),
		zap.Int("shortages", len(shortages)))

	return result, nil
}

// SufficientForUpdate re-verifies availability under row locks inside the
// caller's approval transaction. This is the commit-time check that closes
// the gap between checkInventory and approve.
func (g *Gate) SufficientForUpdate(ctx context.Context, tx *sql.Tx, location domain.StockLocation, lines []dto.StockLine) (bool, string, error) {
	var shortages []dto.StockShortage
	for _, line := range lines {
		stock, err := g.stockRepo.FindForUpdate(ctx, tx, line.VehicleID, location)
		if err != nil {
			if _, ok := apperrors.IsNotFoundError(err); ok {
				shortages = append(shortages, dto.StockShortage{VehicleID: line.VehicleID, Required: line.Quantity})
				continue
			}
			return false, "", err
		}
		if stock.Available() < line.Quantity {
			shortages = append(shortages, dto.StockShortage{
				VehicleID: line.VehicleID,
				Required:  line.Quantity,
				Available: stock.Available(),
			})
		}
	}

	return len(shortages) == 0, shortageMessage(location, shortages), nil
}

func shortageMessage(location domain.StockLocation, shortages []dto.StockShortage) string {
	if len(shortages) == 0 {
		return fmt.Sprintf("sufficient stock at %s location", location)
	}

	parts := make([]string, len(shortages))
	for i, s := range shortages {
		parts[i] = fmt.Sprintf("vehicle %d: need %d, have %d", s.VehicleID, s.Required, s.Available)
	}
	return fmt.Sprintf("insufficient stock at %s location: %s", location, strings.Join(parts, "; "))
}
