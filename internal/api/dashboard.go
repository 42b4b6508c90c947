package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/erazemk/sef/internal/store"
)

// maxRecentLimit caps the ?limit= override of the dashboard.
const maxRecentLimit = 100

// DashboardHandler serves the dashboards of one locker and of all lockers.
type DashboardHandler struct {
	DB          *sql.DB
	RecentLimit int
}

// Get handles GET /api/lockers/{id}/dashboard.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	lockerID, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid locker id")
		return
	}
	limit, ok := h.limit(w, r)
	if !ok {
		return
	}

	d, err := store.GetDashboard(r.Context(), h.DB, lockerID, limit)
	if err != nil {
		storeError(w, r, err, "load dashboard")
		return
	}
	jsonResponse(w, http.StatusOK, d)
}

// GetAll handles GET /api/dashboard.
func (h *DashboardHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.limit(w, r)
	if !ok {
		return
	}

	d, err := store.GetAllDashboard(r.Context(), h.DB, limit)
	if err != nil {
		storeError(w, r, err, "load dashboard")
		return
	}
	jsonResponse(w, http.StatusOK, d)
}

// limit reads ?limit=, falling back to the configured default. On a bad value
// it writes the error response and returns false.
func (h *DashboardHandler) limit(w http.ResponseWriter, r *http.Request) (int, bool) {
	s := r.URL.Query().Get("limit")
	if s == "" {
		return h.RecentLimit, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || n > maxRecentLimit {
		jsonError(w, http.StatusBadRequest, "invalid limit")
		return 0, false
	}
	return n, true
}
