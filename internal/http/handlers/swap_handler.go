package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"voltswap/internal/http/middleware"
	"voltswap/internal/models"
	"voltswap/internal/service"
)

// SwapHandler exposes the swap session lifecycle.
type SwapHandler struct {
	coordinator *service.SwapCoordinator
	logger      *zap.Logger
}

// NewSwapHandler builds handler set.
func NewSwapHandler(coordinator *service.SwapCoordinator, logger *zap.Logger) *SwapHandler {
	return &SwapHandler{coordinator: coordinator, logger: logger}
}

type initiateRequest struct {
	BookingID string `json:"booking_id"`
	VehicleID string `json:"vehicle_id"`
}

type insertRequest struct {
	SlotID           string                 `json:"slot_id"`
	OldBatterySerial string                 `json:"old_battery_serial"`
	Battery          models.BatteryMetadata `json:"battery"`
}

// HandleInitiate handles POST /swaps.
func (h *SwapHandler) HandleInitiate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}

	var req initiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.BookingID == "" {
		writeError(w, http.StatusBadRequest, "booking_id is required")
		return
	}

	result, err := h.coordinator.Initiate(r.Context(), service.InitiateInput{
		UserID:    userID,
		BookingID: req.BookingID,
		VehicleID: req.VehicleID,
	})
	if err != nil {
		if writeServiceError(w, err) {
			return
		}
		h.logger.Error("initiate swap failed", zap.String("booking_id", req.BookingID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to initiate swap")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"swap_id":        result.Session.SwapID,
		"booked_battery": result.Session.BookedBattery,
		"empty_slot":     result.Session.EmptySlot,
		"expires_at":     result.Session.ExpiresAt,
		"instructions":   result.Instructions,
		"message":        result.Message,
	})
}

// HandleInsert handles POST /swaps/{swapID}/old-battery.
func (h *SwapHandler) HandleInsert(w http.ResponseWriter, r *http.Request) {
	swapID := mux.Vars(r)["swapID"]

	var req insertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.SlotID == "" || req.OldBatterySerial == "" {
		writeError(w, http.StatusBadRequest, "slot_id and old_battery_serial are required")
		return
	}

	result, err := h.coordinator.InsertOldBattery(r.Context(), service.InsertInput{
		SwapID:   swapID,
		SlotID:   req.SlotID,
		Serial:   req.OldBatterySerial,
		Metadata: req.Battery,
	})
	if err != nil {
		if writeServiceError(w, err) {
			return
		}
		h.logger.Error("insert old battery failed", zap.String("swap_id", swapID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to insert old battery")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"swap_id":   result.SwapID,
		"message":   result.Message,
		"next_step": result.NextStep,
	})
}

// HandleComplete handles POST /swaps/{swapID}/complete.
func (h *SwapHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	swapID := mux.Vars(r)["swapID"]

	result, err := h.coordinator.Complete(r.Context(), swapID)
	if err != nil {
		if writeServiceError(w, err) {
			return
		}
		h.logger.Error("complete swap failed", zap.String("swap_id", swapID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to complete swap")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": result.Message,
		"summary": map[string]interface{}{
			"old_battery":        result.Summary.OldBattery,
			"new_battery":        result.Summary.NewBattery,
			"new_battery_charge": result.Summary.NewBatteryCharge,
			"swap_duration_secs": result.Summary.SwapDuration.Seconds(),
		},
	})
}

// HandleGetSession handles GET /swaps/{swapID}.
func (h *SwapHandler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	swapID := mux.Vars(r)["swapID"]

	session, err := h.coordinator.Session(swapID)
	if err != nil {
		if writeServiceError(w, err) {
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch session")
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// HandleCheckSlot handles POST /swaps/{swapID}/slots/{slotID}/check.
func (h *SwapHandler) HandleCheckSlot(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.coordinator.CheckSlotAction(vars["swapID"], vars["slotID"]); err != nil {
		if writeServiceError(w, err) {
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to check slot")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"actionable": true})
}

// HandleHistory handles GET /swaps/me.
func (h *SwapHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}

	records, err := h.coordinator.History(r.Context(), userID, 50)
	if err != nil {
		h.logger.Error("fetch swap history failed", zap.Int64("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch swaps")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"swaps": records})
}
