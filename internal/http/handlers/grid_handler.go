package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"voltswap/internal/service"
)

// NewGridHandler returns GET /pillars/{pillarID}/grid handler.
func NewGridHandler(svc *service.GridService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pillarID := mux.Vars(r)["pillarID"]
		if pillarID == "" {
			writeError(w, http.StatusBadRequest, "pillar id is required")
			return
		}
		rows := queryInt(r, "rows")
		cols := queryInt(r, "cols")

		grid, pillar, err := svc.FetchGrid(r.Context(), pillarID, rows, cols)
		if err != nil {
			if writeServiceError(w, err) {
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to fetch grid")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"pillar": pillar,
			"stats":  grid.Stats,
			"rows":   grid.Rows,
			"cols":   grid.Cols,
			"slots":  grid.Layout(),
		})
	}
}

func queryInt(r *http.Request, key string) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}
