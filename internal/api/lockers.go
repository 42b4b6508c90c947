package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/sef/internal/model"
	"github.com/erazemk/sef/internal/store"
)

// LockersHandler handles locker endpoints.
type LockersHandler struct {
	DB *sql.DB
}

type lockerRequest struct {
	Name         string `json:"name"`
	LocationName string `json:"location_name"`
	Address      string `json:"address"`
}

// List handles GET /api/lockers.
func (h *LockersHandler) List(w http.ResponseWriter, r *http.Request) {
	lockers, err := store.ListLockers(r.Context(), h.DB)
	if err != nil {
		storeError(w, r, err, "list lockers")
		return
	}
	if lockers == nil {
		lockers = []model.Locker{}
	}
	jsonResponse(w, http.StatusOK, lockers)
}

// Create handles POST /api/lockers.
func (h *LockersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req lockerRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	locker, err := store.CreateLocker(r.Context(), h.DB, req.Name, req.LocationName, req.Address)
	if err != nil {
		storeError(w, r, err, "create locker")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("locker created", "user", claims.Username, "locker", locker.Name, "id", locker.ID)
	jsonResponse(w, http.StatusCreated, locker)
}

// Get handles GET /api/lockers/{id}.
func (h *LockersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid locker id")
		return
	}

	locker, err := store.GetLocker(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err, "get locker")
		return
	}
	if locker == nil {
		jsonError(w, http.StatusNotFound, "locker not found")
		return
	}
	jsonResponse(w, http.StatusOK, locker)
}

// Update handles PUT /api/lockers/{id}.
func (h *LockersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid locker id")
		return
	}

	var req lockerRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.UpdateLocker(r.Context(), h.DB, id, req.Name, req.LocationName, req.Address); err != nil {
		storeError(w, r, err, "update locker")
		return
	}

	locker, err := store.GetLocker(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err, "get locker")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("locker updated", "user", claims.Username, "id", id)
	jsonResponse(w, http.StatusOK, locker)
}

// Delete handles DELETE /api/lockers/{id}. The locker's assets and their
// history are removed with it.
func (h *LockersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid locker id")
		return
	}

	if err := store.DeleteLocker(r.Context(), h.DB, id); err != nil {
		storeError(w, r, err, "delete locker")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("locker deleted", "user", claims.Username, "id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "locker deleted"})
}
