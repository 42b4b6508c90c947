package model

import (
	"strings"
	"time"
)

// TransactionKind is the custody event recorded by a transaction.
type TransactionKind string

// Transaction kinds.
const (
	KindDeposit           TransactionKind = "DEPOSIT"
	KindWithdraw          TransactionKind = "WITHDRAW"
	KindPermanentlyRemove TransactionKind = "PERMANENTLY_REMOVE"
)

// legacyPermanentRemove is the older spelling some clients still send.
const legacyPermanentRemove = "PERMANENT_REMOVE"

// ParseTransactionKind returns the canonical kind for s, accepting the legacy
// PERMANENT_REMOVE spelling. The second result is false for unknown kinds.
func ParseTransactionKind(s string) (TransactionKind, bool) {
	switch k := strings.ToUpper(strings.TrimSpace(s)); k {
	case string(KindDeposit), string(KindWithdraw), string(KindPermanentlyRemove):
		return TransactionKind(k), true
	case legacyPermanentRemove:
		return KindPermanentlyRemove, true
	}
	return "", false
}

// Status returns the asset status a transaction of this kind leaves behind
// when it is the most recent one.
func (k TransactionKind) Status() AssetStatus {
	switch k {
	case KindWithdraw:
		return StatusWithdrawn
	case KindPermanentlyRemove:
		return StatusPermanentlyRemoved
	default:
		return StatusInLocker
	}
}

// DateLayout is the calendar date format of transaction_date and creation_date.
const DateLayout = "2006-01-02"

// ValidDate reports whether s is a calendar date in DateLayout.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// Transaction is a single custody event against an asset.
type Transaction struct {
	ID                int64           `json:"id"`
	AssetID           int64           `json:"asset_id"`
	LockerID          int64           `json:"locker_id"`
	Kind              TransactionKind `json:"transaction_type"`
	Reason            string          `json:"reason,omitempty"`
	ResponsiblePerson string          `json:"responsible_person,omitempty"`
	TransactionDate   string          `json:"transaction_date"`
	CreatedAt         time.Time       `json:"created_at"`

	// Joined fields (not always populated).
	AssetName string `json:"asset_name,omitempty"`
	AssetType string `json:"asset_type,omitempty"`
}

// After reports whether t sorts after u in ledger order: by system timestamp,
// then by id.
func (t Transaction) After(u Transaction) bool {
	if !t.CreatedAt.Equal(u.CreatedAt) {
		return t.CreatedAt.After(u.CreatedAt)
	}
	return t.ID > u.ID
}

// NewTransaction holds the caller-supplied fields of an append.
type NewTransaction struct {
	AssetID           int64  `json:"asset_id"`
	LockerID          int64  `json:"locker_id,omitempty"`
	Kind              string `json:"transaction_type"`
	Reason            string `json:"reason"`
	ResponsiblePerson string `json:"responsible_person"`
	TransactionDate   string `json:"transaction_date"`
}

// TransactionPatch holds the mutable fields of a transaction. Nil fields are
// left unchanged; the asset and system timestamp never change.
type TransactionPatch struct {
	Kind              *string `json:"transaction_type"`
	Reason            *string `json:"reason"`
	ResponsiblePerson *string `json:"responsible_person"`
	TransactionDate   *string `json:"transaction_date"`
}

// TransactionFilter narrows a locker's transaction list. AssetID wins when
// both fields are set.
type TransactionFilter struct {
	AssetID   int64
	AssetType string
}
