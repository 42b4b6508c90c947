package model

// AssetStatus is the custody status of an asset, derived from its
// transactions.
type AssetStatus string

// Asset statuses.
const (
	StatusInLocker           AssetStatus = "IN_LOCKER"
	StatusWithdrawn          AssetStatus = "WITHDRAWN"
	StatusPermanentlyRemoved AssetStatus = "PERMANENTLY_REMOVED"
)
