package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"voltswap/internal/models"
	"voltswap/internal/repository"
)

// RegisterBatteryInput carries a scanned or manually entered battery.
type RegisterBatteryInput struct {
	Serial       string
	Model        string
	Manufacturer string
	CapacityKWh  float64
	Voltage      float64
	SOH          float64
	Price        float64
}

// BatteryService handles battery registration outside the swap flow.
type BatteryService struct {
	batteries BatteryStore
	logger    *zap.Logger
}

// NewBatteryService builds the service.
func NewBatteryService(batteries BatteryStore, logger *zap.Logger) *BatteryService {
	return &BatteryService{batteries: batteries, logger: logger}
}

// Register creates a battery record for a new serial. Re-registering an
// existing serial returns the existing record unchanged.
func (s *BatteryService) Register(ctx context.Context, input RegisterBatteryInput) (*models.Battery, error) {
	serial := strings.TrimSpace(input.Serial)
	if serial == "" {
		return nil, errors.New("battery: serial is required")
	}
	existing, err := s.batteries.BySerial(ctx, serial)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrBatteryNotFound) {
		return nil, err
	}

	soh := input.SOH
	if soh <= 0 || soh > 100 {
		soh = 100
	}
	battery := &models.Battery{
		ID:           idGenerator(),
		Serial:       serial,
		Model:        input.Model,
		Manufacturer: input.Manufacturer,
		CapacityKWh:  input.CapacityKWh,
		Voltage:      input.Voltage,
		SOH:          soh,
		Price:        input.Price,
		Status:       models.BatteryStatusIdle,
	}
	if err := s.batteries.Create(ctx, battery); err != nil {
		return nil, err
	}

	s.logger.Info("battery registered",
		zap.String("battery_id", battery.ID),
		zap.String("serial", battery.Serial),
		zap.String("model", battery.Model),
	)
	return battery, nil
}
