package ledger

import "github.com/erazemk/sef/internal/model"

// ComputeTotals counts a locker's assets by custody state. assets are the
// locker's registry records and txs any transactions that may belong to them;
// transactions of assets not in the list are ignored, as are assets without a
// single transaction.
func ComputeTotals(assets []model.Asset, txs []model.Transaction) model.LockerTotals {
	byAsset := GroupByAsset(txs)

	var totals model.LockerTotals
	for _, a := range assets {
		history := byAsset[a.ID]
		if len(history) == 0 {
			continue
		}

		if hasDeposit(history) {
			totals.TotalDeposited++
		}

		switch DeriveStatus(history) {
		case model.StatusInLocker:
			totals.CurrentlyInLocker++
		case model.StatusWithdrawn:
			totals.Withdrawn++
		case model.StatusPermanentlyRemoved:
			totals.PermanentlyRemoved++
		}
	}
	return totals
}

func hasDeposit(txs []model.Transaction) bool {
	for _, t := range txs {
		if t.Kind == model.KindDeposit {
			return true
		}
	}
	return false
}

// AttachStatus sets the derived status on each asset from txs.
func AttachStatus(assets []model.Asset, txs []model.Transaction) {
	byAsset := GroupByAsset(txs)
	for i := range assets {
		assets[i].Status = DeriveStatus(byAsset[assets[i].ID])
	}
}
