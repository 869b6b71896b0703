package httpserver

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Routes groups handlers.
type Routes struct {
	Health          http.HandlerFunc
	Grid            http.HandlerFunc
	GridStream      http.HandlerFunc
	InitiateSwap    http.HandlerFunc
	InsertBattery   http.HandlerFunc
	CompleteSwap    http.HandlerFunc
	GetSwap         http.HandlerFunc
	CheckSlot       http.HandlerFunc
	SwapHistory     http.HandlerFunc
	RegisterBattery http.HandlerFunc
}

// NewRouter registers endpoints. Everything except /health sits behind auth.
func NewRouter(routes Routes, auth func(http.Handler) http.Handler) http.Handler {
	r := mux.NewRouter()

	if routes.Health != nil {
		r.HandleFunc("/health", routes.Health).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/").Subrouter()
	if auth != nil {
		api.Use(auth)
	}
	if routes.Grid != nil {
		api.HandleFunc("/pillars/{pillarID}/grid", routes.Grid).Methods(http.MethodGet)
	}
	if routes.GridStream != nil {
		api.HandleFunc("/ws/pillars/{pillarID}", routes.GridStream).Methods(http.MethodGet)
	}
	if routes.InitiateSwap != nil {
		api.HandleFunc("/swaps", routes.InitiateSwap).Methods(http.MethodPost)
	}
	if routes.SwapHistory != nil {
		api.HandleFunc("/swaps/me", routes.SwapHistory).Methods(http.MethodGet)
	}
	if routes.GetSwap != nil {
		api.HandleFunc("/swaps/{swapID}", routes.GetSwap).Methods(http.MethodGet)
	}
	if routes.InsertBattery != nil {
		api.HandleFunc("/swaps/{swapID}/old-battery", routes.InsertBattery).Methods(http.MethodPost)
	}
	if routes.CompleteSwap != nil {
		api.HandleFunc("/swaps/{swapID}/complete", routes.CompleteSwap).Methods(http.MethodPost)
	}
	if routes.CheckSlot != nil {
		api.HandleFunc("/swaps/{swapID}/slots/{slotID}/check", routes.CheckSlot).Methods(http.MethodPost)
	}
	if routes.RegisterBattery != nil {
		api.HandleFunc("/batteries", routes.RegisterBattery).Methods(http.MethodPost)
	}

	return r
}
