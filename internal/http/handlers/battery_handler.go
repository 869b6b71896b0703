package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"voltswap/internal/service"
)

type registerBatteryRequest struct {
	Serial       string  `json:"serial"`
	Model        string  `json:"model"`
	Manufacturer string  `json:"manufacturer"`
	CapacityKWh  float64 `json:"capacity_kwh"`
	Voltage      float64 `json:"voltage"`
	SOH          float64 `json:"soh"`
	Price        float64 `json:"price"`
}

// NewRegisterBatteryHandler returns POST /batteries handler.
func NewRegisterBatteryHandler(svc *service.BatteryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerBatteryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if req.Serial == "" {
			writeError(w, http.StatusBadRequest, "serial is required")
			return
		}

		battery, err := svc.Register(r.Context(), service.RegisterBatteryInput{
			Serial:       req.Serial,
			Model:        req.Model,
			Manufacturer: req.Manufacturer,
			CapacityKWh:  req.CapacityKWh,
			Voltage:      req.Voltage,
			SOH:          req.SOH,
			Price:        req.Price,
		})
		if err != nil {
			logger.Error("register battery failed", zap.String("serial", req.Serial), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to register battery")
			return
		}
		writeJSON(w, http.StatusCreated, battery)
	}
}
