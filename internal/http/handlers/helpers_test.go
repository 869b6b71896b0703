package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"voltswap/internal/service"
)

func TestWriteServiceErrorMapsKinds(t *testing.T) {
	cases := []struct {
		kind   service.Kind
		status int
	}{
		{service.KindSessionNotFound, http.StatusNotFound},
		{service.KindSlotMismatch, http.StatusBadRequest},
		{service.KindWrongSlotSelected, http.StatusBadRequest},
		{service.KindGridUnavailable, http.StatusServiceUnavailable},
		{service.KindNoBatteryAvailable, http.StatusConflict},
		{service.KindNoEmptySlot, http.StatusConflict},
		{service.KindAlreadyInserted, http.StatusConflict},
		{service.KindOldBatteryNotInserted, http.StatusConflict},
		{service.KindBatteryMismatch, http.StatusConflict},
		{service.KindSessionAlreadyCompleted, http.StatusConflict},
		{service.KindInvalidBookingState, http.StatusConflict},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		handled := writeServiceError(rec, service.Errf(tc.kind, "boom"))
		if !handled {
			t.Fatalf("%s: expected typed error to be handled", tc.kind)
		}
		if rec.Code != tc.status {
			t.Fatalf("%s: expected status %d, got %d", tc.kind, tc.status, rec.Code)
		}

		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: decode body: %v", tc.kind, err)
		}
		if body["code"] != string(tc.kind) {
			t.Fatalf("%s: expected code echoed, got %q", tc.kind, body["code"])
		}
	}
}

func TestWriteServiceErrorIgnoresPlainErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	if writeServiceError(rec, errors.New("plain")) {
		t.Fatalf("plain error must not be handled as a typed rejection")
	}
}
