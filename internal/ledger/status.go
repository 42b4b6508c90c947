// Package ledger derives custody state from an asset's transaction history.
//
// Everything here is a pure function of its arguments. Status and totals are
// recomputed from the stored transactions on every read and never cached, so
// edits and deletions anywhere in the history are reflected immediately.
package ledger

import (
	"sort"

	"github.com/erazemk/sef/internal/model"
)

// Latest returns the most recent transaction in ledger order (system
// timestamp, then id). The input order does not matter.
func Latest(txs []model.Transaction) (model.Transaction, bool) {
	if len(txs) == 0 {
		return model.Transaction{}, false
	}
	latest := txs[0]
	for _, t := range txs[1:] {
		if t.After(latest) {
			latest = t
		}
	}
	return latest, true
}

// DeriveStatus returns an asset's custody status. Only the kind of the most
// recent transaction matters; an asset without transactions is in the locker.
func DeriveStatus(txs []model.Transaction) model.AssetStatus {
	latest, ok := Latest(txs)
	if !ok {
		return model.StatusInLocker
	}
	return latest.Kind.Status()
}

// SortAscending orders txs oldest first.
func SortAscending(txs []model.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool { return txs[j].After(txs[i]) })
}

// SortDescending orders txs newest first.
func SortDescending(txs []model.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].After(txs[j]) })
}

// GroupByAsset buckets transactions by asset id.
func GroupByAsset(txs []model.Transaction) map[int64][]model.Transaction {
	out := make(map[int64][]model.Transaction)
	for _, t := range txs {
		out[t.AssetID] = append(out[t.AssetID], t)
	}
	return out
}
