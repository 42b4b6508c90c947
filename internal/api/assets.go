package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/erazemk/sef/internal/model"
	"github.com/erazemk/sef/internal/store"
)

// AssetsHandler handles asset registry endpoints and the per-asset views of
// the ledger and edit log.
type AssetsHandler struct {
	DB *sql.DB
}

type createAssetRequest struct {
	Name           string              `json:"name"`
	Type           string              `json:"asset_type"`
	Worth          decimal.NullDecimal `json:"worth_on_creation"`
	Details        string              `json:"details"`
	CreationDate   string              `json:"creation_date"`
	MaterialType   string              `json:"material_type"`
	MaterialGrade  string              `json:"material_grade"`
	GiftingDetails string              `json:"gifting_details"`
	DocumentType   string              `json:"document_type"`
}

func (req createAssetRequest) asset(lockerID int64) model.Asset {
	return model.Asset{
		LockerID:     lockerID,
		Name:         req.Name,
		Type:         req.Type,
		Worth:        req.Worth,
		Details:      req.Details,
		CreationDate: req.CreationDate,
		Jewellery: &model.JewelleryDetails{
			MaterialType:   req.MaterialType,
			MaterialGrade:  req.MaterialGrade,
			GiftingDetails: req.GiftingDetails,
		},
		Document: &model.DocumentDetails{DocumentType: req.DocumentType},
	}
}

type statusResponse struct {
	AssetID int64             `json:"asset_id"`
	Status  model.AssetStatus `json:"status"`
}

// ListByLocker handles GET /api/lockers/{id}/assets.
func (h *AssetsHandler) ListByLocker(w http.ResponseWriter, r *http.Request) {
	lockerID, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid locker id")
		return
	}

	assets, err := store.ListAssetsByLocker(r.Context(), h.DB, lockerID)
	if err != nil {
		storeError(w, r, err, "list assets")
		return
	}
	if assets == nil {
		assets = []model.Asset{}
	}
	jsonResponse(w, http.StatusOK, assets)
}

// Create handles POST /api/lockers/{id}/assets.
func (h *AssetsHandler) Create(w http.ResponseWriter, r *http.Request) {
	lockerID, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid locker id")
		return
	}

	var req createAssetRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	asset, err := store.CreateAsset(r.Context(), h.DB, req.asset(lockerID))
	if err != nil {
		storeError(w, r, err, "create asset")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("asset created", "user", claims.Username, "asset", asset.Name, "id", asset.ID, "locker", lockerID)
	jsonResponse(w, http.StatusCreated, asset)
}

// Get handles GET /api/assets/{id}.
func (h *AssetsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	asset, err := store.GetAsset(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err, "get asset")
		return
	}
	if asset == nil {
		jsonError(w, http.StatusNotFound, "asset not found")
		return
	}
	jsonResponse(w, http.StatusOK, asset)
}

// Update handles PUT /api/assets/{id}. Only fields present in the body
// change; the acting user is recorded as the editor.
func (h *AssetsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	var patch model.AssetPatch
	if err := decodeJSON(r, &patch); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	_, updated, err := store.UpdateAsset(r.Context(), h.DB, id, claims.Username, patch)
	if err != nil {
		storeError(w, r, err, "update asset")
		return
	}

	slog.Info("asset updated", "user", claims.Username, "id", id)
	jsonResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/assets/{id}.
func (h *AssetsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	if err := store.DeleteAsset(r.Context(), h.DB, id); err != nil {
		storeError(w, r, err, "delete asset")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("asset deleted", "user", claims.Username, "id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "asset deleted"})
}

// Transactions handles GET /api/assets/{id}/transactions, oldest first.
func (h *AssetsHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	txs, err := store.ListAssetTransactions(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err, "list transactions")
		return
	}
	if txs == nil {
		txs = []model.Transaction{}
	}
	jsonResponse(w, http.StatusOK, txs)
}

// Status handles GET /api/assets/{id}/status.
func (h *AssetsHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	status, err := store.GetAssetStatus(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err, "get asset status")
		return
	}
	jsonResponse(w, http.StatusOK, statusResponse{AssetID: id, Status: status})
}

// EditHistory handles GET /api/assets/{id}/edit-history, oldest first.
func (h *AssetsHandler) EditHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	entries, err := store.ListEditHistory(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err, "list edit history")
		return
	}
	if entries == nil {
		entries = []model.EditLogEntry{}
	}
	jsonResponse(w, http.StatusOK, entries)
}
