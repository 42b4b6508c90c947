package store

import (
	"context"
	"database/sql"

	"github.com/erazemk/sef/internal/ledger"
	"github.com/erazemk/sef/internal/model"
)

// GetDashboard loads a locker's assets and transactions from one consistent
// snapshot and derives its totals and the limit most recent transactions.
func GetDashboard(ctx context.Context, db *sql.DB, lockerID int64, limit int) (*model.Dashboard, error) {
	snap := ledger.Snapshot{LockerID: lockerID}
	err := readTx(ctx, db, func(tx *sql.Tx) error {
		if err := lockerExists(ctx, tx, lockerID); err != nil {
			return err
		}

		var err error
		if snap.Assets, err = lockerAssets(ctx, tx, lockerID); err != nil {
			return err
		}
		snap.Transactions, err = lockerTransactions(ctx, tx, lockerID, model.TransactionFilter{})
		return err
	})
	if err != nil {
		return nil, err
	}

	d := ledger.BuildDashboard(snap, limit)
	return &d, nil
}

// GetAllDashboard is GetDashboard across every locker.
func GetAllDashboard(ctx context.Context, db *sql.DB, limit int) (*model.Dashboard, error) {
	var snap ledger.Snapshot
	err := readTx(ctx, db, func(tx *sql.Tx) error {
		var err error
		if snap.Assets, err = allAssets(ctx, tx); err != nil {
			return err
		}
		snap.Transactions, err = allTransactions(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	d := ledger.BuildDashboard(snap, limit)
	return &d, nil
}
