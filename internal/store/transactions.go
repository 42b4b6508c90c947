package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/erazemk/sef/internal/model"
)

const transactionSelect = `SELECT t.id, t.asset_id, t.locker_id, t.transaction_type, t.reason,
	       t.responsible_person, t.transaction_date, t.created_at, a.name, a.asset_type
	FROM transactions t
	LEFT JOIN assets a ON a.id = t.asset_id`

func scanTransaction(s scanner) (model.Transaction, error) {
	var t model.Transaction
	var kind string
	var createdAt int64
	var reason, person, assetName, assetType sql.NullString
	err := s.Scan(&t.ID, &t.AssetID, &t.LockerID, &kind, &reason,
		&person, &t.TransactionDate, &createdAt, &assetName, &assetType)
	if err != nil {
		return t, err
	}
	t.Kind = model.TransactionKind(kind)
	t.Reason = reason.String
	t.ResponsiblePerson = person.String
	t.CreatedAt = nanos(createdAt)

	if assetName.Valid {
		t.AssetName = assetName.String
		t.AssetType = assetType.String
	} else {
		t.AssetName = model.UnknownAssetName
		t.AssetType = model.UnknownAssetType
	}
	return t, nil
}

func queryTransactions(ctx context.Context, q querier, query string, args ...any) ([]model.Transaction, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func parseKind(s string) (model.TransactionKind, error) {
	if strings.TrimSpace(s) == "" {
		return "", invalid("transaction_type", "required")
	}
	kind, ok := model.ParseTransactionKind(s)
	if !ok {
		return "", invalid("transaction_type", "unknown kind %q", s)
	}
	return kind, nil
}

func parseDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", invalid("transaction_date", "required")
	}
	if !model.ValidDate(s) {
		return "", invalid("transaction_date", "must be a YYYY-MM-DD date")
	}
	return s, nil
}

// AppendTransaction records a custody event against an asset. The system
// timestamp is strictly greater than that of every earlier transaction of the
// same asset, even when the wall clock stalls or steps back. If nt.LockerID is
// set, the asset must be in that locker.
func AppendTransaction(ctx context.Context, db *sql.DB, nt model.NewTransaction) (*model.Transaction, error) {
	kind, err := parseKind(nt.Kind)
	if err != nil {
		return nil, err
	}
	date, err := parseDate(nt.TransactionDate)
	if err != nil {
		return nil, err
	}

	// One statement: the asset lookup, the timestamp and the insert cannot
	// interleave with another append.
	res, err := db.ExecContext(ctx,
		`INSERT INTO transactions (asset_id, locker_id, transaction_type, reason, responsible_person,
		                           transaction_date, created_at)
		 SELECT a.id, a.locker_id, ?, ?, ?, ?,
		        MAX(?, COALESCE((SELECT MAX(created_at) FROM transactions WHERE asset_id = a.id), 0) + 1)
		 FROM assets a
		 WHERE a.id = ? AND (? = 0 OR a.locker_id = ?)`,
		string(kind), nullString(nt.Reason), nullString(nt.ResponsiblePerson), date,
		time.Now().UnixNano(),
		nt.AssetID, nt.LockerID, nt.LockerID,
	)
	if err != nil {
		return nil, fmt.Errorf("appending transaction: %w", err)
	}
	if err := rowsAffected(res, "asset", nt.AssetID); err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting transaction id: %w", err)
	}

	return GetTransaction(ctx, db, id)
}

// GetTransaction returns a transaction joined with its asset, or nil if
// there is none.
func GetTransaction(ctx context.Context, db *sql.DB, id int64) (*model.Transaction, error) {
	t, err := scanTransaction(db.QueryRowContext(ctx, transactionSelect+` WHERE t.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting transaction: %w", err)
	}
	return &t, nil
}

// UpdateTransaction rewrites the mutable fields set in p. The asset and the
// system timestamp never change, so the transaction keeps its place in the
// ledger.
func UpdateTransaction(ctx context.Context, db *sql.DB, id int64, p model.TransactionPatch) (*model.Transaction, error) {
	var kind, date sql.NullString
	if p.Kind != nil {
		k, err := parseKind(*p.Kind)
		if err != nil {
			return nil, err
		}
		kind = sql.NullString{String: string(k), Valid: true}
	}
	if p.TransactionDate != nil {
		d, err := parseDate(*p.TransactionDate)
		if err != nil {
			return nil, err
		}
		date = sql.NullString{String: d, Valid: true}
	}

	res, err := db.ExecContext(ctx,
		`UPDATE transactions SET
		     transaction_type   = COALESCE(?, transaction_type),
		     reason             = COALESCE(?, reason),
		     responsible_person = COALESCE(?, responsible_person),
		     transaction_date   = COALESCE(?, transaction_date)
		 WHERE id = ?`,
		kind, setString(p.Reason), setString(p.ResponsiblePerson), date, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating transaction: %w", err)
	}
	if err := rowsAffected(res, "transaction", id); err != nil {
		return nil, err
	}

	return GetTransaction(ctx, db, id)
}

// DeleteTransaction removes a transaction. The asset's status is derived
// again on the next read and may change.
func DeleteTransaction(ctx context.Context, db *sql.DB, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}
	return rowsAffected(res, "transaction", id)
}

// ListAssetTransactions returns an asset's transactions oldest first.
func ListAssetTransactions(ctx context.Context, db *sql.DB, assetID int64) ([]model.Transaction, error) {
	var txs []model.Transaction
	err := readTx(ctx, db, func(tx *sql.Tx) error {
		if err := assetExists(ctx, tx, assetID); err != nil {
			return err
		}
		var err error
		txs, err = assetTransactions(ctx, tx, assetID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return txs, nil
}

func assetTransactions(ctx context.Context, q querier, assetID int64) ([]model.Transaction, error) {
	return queryTransactions(ctx, q,
		transactionSelect+` WHERE t.asset_id = ? ORDER BY t.created_at, t.id`, assetID,
	)
}

// ListLockerTransactions returns a locker's transactions newest first,
// narrowed by f. With f.AssetID set, the asset must belong to the locker and
// f.AssetType is ignored. An asset type filter matches the asset's current
// type.
func ListLockerTransactions(ctx context.Context, db *sql.DB, lockerID int64, f model.TransactionFilter) ([]model.Transaction, error) {
	if f.AssetID == 0 && f.AssetType != "" {
		f.AssetType = strings.ToUpper(strings.TrimSpace(f.AssetType))
		if !model.ValidAssetType(f.AssetType) {
			return nil, invalid("asset_type", "unknown type %q", f.AssetType)
		}
	}

	var txs []model.Transaction
	err := readTx(ctx, db, func(tx *sql.Tx) error {
		if err := lockerExists(ctx, tx, lockerID); err != nil {
			return err
		}
		if f.AssetID != 0 {
			ok, err := exists(ctx, tx, `SELECT 1 FROM assets WHERE id = ? AND locker_id = ?`, f.AssetID, lockerID)
			if err != nil {
				return fmt.Errorf("checking asset: %w", err)
			}
			if !ok {
				return fmt.Errorf("asset %d in locker %d: %w", f.AssetID, lockerID, ErrNotFound)
			}
		}

		var err error
		txs, err = lockerTransactions(ctx, tx, lockerID, f)
		return err
	})
	if err != nil {
		return nil, err
	}
	return txs, nil
}

func lockerTransactions(ctx context.Context, q querier, lockerID int64, f model.TransactionFilter) ([]model.Transaction, error) {
	const order = ` ORDER BY t.created_at DESC, t.id DESC`
	switch {
	case f.AssetID != 0:
		return queryTransactions(ctx, q,
			transactionSelect+` WHERE t.locker_id = ? AND t.asset_id = ?`+order, lockerID, f.AssetID)
	case f.AssetType != "":
		return queryTransactions(ctx, q,
			transactionSelect+` WHERE t.locker_id = ? AND a.asset_type = ?`+order, lockerID, f.AssetType)
	default:
		return queryTransactions(ctx, q,
			transactionSelect+` WHERE t.locker_id = ?`+order, lockerID)
	}
}

func allTransactions(ctx context.Context, q querier) ([]model.Transaction, error) {
	return queryTransactions(ctx, q, transactionSelect+` ORDER BY t.created_at DESC, t.id DESC`)
}
