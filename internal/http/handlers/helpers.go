package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"voltswap/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps a typed rejection to an HTTP status and echoes the
// machine-checkable code so clients can branch without parsing messages.
func writeServiceError(w http.ResponseWriter, err error) bool {
	var e *service.Error
	if !errors.As(err, &e) {
		return false
	}

	status := http.StatusConflict
	switch e.Kind {
	case service.KindSessionNotFound:
		status = http.StatusNotFound
	case service.KindSlotMismatch, service.KindWrongSlotSelected:
		status = http.StatusBadRequest
	case service.KindGridUnavailable:
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]string{
		"error": e.Message,
		"code":  string(e.Kind),
	})
	return true
}
