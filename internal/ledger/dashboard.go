package ledger

import "github.com/erazemk/sef/internal/model"

// DefaultRecentLimit is how many transactions a dashboard shows.
const DefaultRecentLimit = 10

// Snapshot is a consistent point-in-time view of one locker, or of every
// locker when LockerID is zero: the assets and their transactions.
type Snapshot struct {
	LockerID     int64
	Assets       []model.Asset
	Transactions []model.Transaction
}

// BuildDashboard derives totals and the most recent activity from s. A
// non-positive limit means DefaultRecentLimit.
func BuildDashboard(s Snapshot, limit int) model.Dashboard {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	return model.Dashboard{
		LockerID:           s.LockerID,
		Totals:             ComputeTotals(s.Assets, s.Transactions),
		RecentTransactions: Recent(s.Transactions, s.Assets, limit),
	}
}

// Recent returns the limit newest transactions, each joined with its asset's
// name and type. A transaction whose asset is missing is kept and labelled as
// an unknown asset.
func Recent(txs []model.Transaction, assets []model.Asset, limit int) []model.Transaction {
	sorted := make([]model.Transaction, len(txs))
	copy(sorted, txs)
	SortDescending(sorted)
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	byID := make(map[int64]model.Asset, len(assets))
	for _, a := range assets {
		byID[a.ID] = a
	}

	for i := range sorted {
		if a, ok := byID[sorted[i].AssetID]; ok {
			sorted[i].AssetName = a.Name
			sorted[i].AssetType = a.Type
		} else {
			sorted[i].AssetName = model.UnknownAssetName
			sorted[i].AssetType = model.UnknownAssetType
		}
	}
	return sorted
}
