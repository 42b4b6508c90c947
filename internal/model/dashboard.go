package model

// LockerTotals are the custody counters of one locker, derived from the
// ledger. Assets without transactions are not counted.
type LockerTotals struct {
	TotalDeposited     int `json:"total_deposited"`
	CurrentlyInLocker  int `json:"currently_in_locker"`
	Withdrawn          int `json:"withdrawn"`
	PermanentlyRemoved int `json:"permanently_removed"`
}

// Dashboard is the read model shown on a locker's landing page. LockerID is
// zero for the dashboard across all lockers.
type Dashboard struct {
	LockerID           int64         `json:"locker_id,omitempty"`
	Totals             LockerTotals  `json:"totals"`
	RecentTransactions []Transaction `json:"recent_transactions"`
}

// Labels used when a transaction's asset can no longer be resolved.
const (
	UnknownAssetName = "Unknown asset"
	UnknownAssetType = "UNKNOWN"
)
