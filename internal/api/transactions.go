package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/sef/internal/model"
	"github.com/erazemk/sef/internal/store"
)

// TransactionsHandler handles the transaction ledger endpoints.
type TransactionsHandler struct {
	DB *sql.DB
}

// Create handles POST /api/transactions.
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.NewTransaction
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tx, err := store.AppendTransaction(r.Context(), h.DB, req)
	if err != nil {
		storeError(w, r, err, "append transaction")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("transaction recorded", "user", claims.Username, "id", tx.ID, "asset", tx.AssetID, "type", tx.Kind)
	jsonResponse(w, http.StatusCreated, tx)
}

// Get handles GET /api/transactions/{id}.
func (h *TransactionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	tx, err := store.GetTransaction(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err, "get transaction")
		return
	}
	if tx == nil {
		jsonError(w, http.StatusNotFound, "transaction not found")
		return
	}
	jsonResponse(w, http.StatusOK, tx)
}

// Update handles PUT /api/transactions/{id}.
func (h *TransactionsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	var patch model.TransactionPatch
	if err := decodeJSON(r, &patch); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tx, err := store.UpdateTransaction(r.Context(), h.DB, id, patch)
	if err != nil {
		storeError(w, r, err, "update transaction")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("transaction updated", "user", claims.Username, "id", id)
	jsonResponse(w, http.StatusOK, tx)
}

// Delete handles DELETE /api/transactions/{id}.
func (h *TransactionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	if err := store.DeleteTransaction(r.Context(), h.DB, id); err != nil {
		storeError(w, r, err, "delete transaction")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("transaction deleted", "user", claims.Username, "id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "transaction deleted"})
}

// ListByLocker handles GET /api/lockers/{id}/transactions with optional
// asset_id and asset_type query filters, newest first.
func (h *TransactionsHandler) ListByLocker(w http.ResponseWriter, r *http.Request) {
	lockerID, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid locker id")
		return
	}

	var f model.TransactionFilter
	q := r.URL.Query()
	if s := q.Get("asset_id"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id <= 0 {
			jsonError(w, http.StatusBadRequest, "invalid asset_id")
			return
		}
		f.AssetID = id
	}
	f.AssetType = q.Get("asset_type")

	txs, err := store.ListLockerTransactions(r.Context(), h.DB, lockerID, f)
	if err != nil {
		storeError(w, r, err, "list transactions")
		return
	}
	if txs == nil {
		txs = []model.Transaction{}
	}
	jsonResponse(w, http.StatusOK, txs)
}
