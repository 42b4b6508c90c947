package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/sef/internal/audit"
	"github.com/erazemk/sef/internal/ledger"
	"github.com/erazemk/sef/internal/model"
)

const assetColumns = `id, locker_id, asset_type, name, worth_on_creation, details, creation_date,
	material_type, material_grade, gifting_details, document_type, created_at, updated_at`

// assetFields are the asset fields tracked by the edit log, in the order
// they are reported. Empty strings count as absent.
var assetFields = []audit.Field[model.Asset]{
	{Name: "name", Get: func(a model.Asset) any { return optional(a.Name) }},
	{Name: "asset_type", Get: func(a model.Asset) any { return optional(a.Type) }},
	{Name: "worth_on_creation", Get: func(a model.Asset) any {
		if !a.Worth.Valid {
			return nil
		}
		return a.Worth.Decimal
	}},
	{Name: "details", Get: func(a model.Asset) any { return optional(a.Details) }},
	{Name: "creation_date", Get: func(a model.Asset) any { return optional(a.CreationDate) }},
	{Name: "material_type", Get: func(a model.Asset) any { return optional(jewellery(a).MaterialType) }},
	{Name: "material_grade", Get: func(a model.Asset) any { return optional(jewellery(a).MaterialGrade) }},
	{Name: "gifting_details", Get: func(a model.Asset) any { return optional(jewellery(a).GiftingDetails) }},
	{Name: "document_type", Get: func(a model.Asset) any { return optional(document(a).DocumentType) }},
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func jewellery(a model.Asset) model.JewelleryDetails {
	if a.Jewellery == nil {
		return model.JewelleryDetails{}
	}
	return *a.Jewellery
}

func document(a model.Asset) model.DocumentDetails {
	if a.Document == nil {
		return model.DocumentDetails{}
	}
	return *a.Document
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAsset(s scanner) (model.Asset, error) {
	var a model.Asset
	var details, creationDate, materialType, materialGrade, gifting, documentType sql.NullString
	err := s.Scan(&a.ID, &a.LockerID, &a.Type, &a.Name, &a.Worth, &details, &creationDate,
		&materialType, &materialGrade, &gifting, &documentType, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return a, err
	}
	a.Details = details.String
	a.CreationDate = creationDate.String

	switch a.Type {
	case model.AssetTypeJewellery:
		a.Jewellery = &model.JewelleryDetails{
			MaterialType:   materialType.String,
			MaterialGrade:  materialGrade.String,
			GiftingDetails: gifting.String,
		}
	case model.AssetTypeDocument:
		a.Document = &model.DocumentDetails{DocumentType: documentType.String}
	}
	return a, nil
}

// cleanAsset trims and upper-cases the free-form identity fields and checks
// the result.
func cleanAsset(a *model.Asset) error {
	a.Name = strings.TrimSpace(a.Name)
	a.Type = strings.ToUpper(strings.TrimSpace(a.Type))
	a.CreationDate = strings.TrimSpace(a.CreationDate)

	if a.Name == "" {
		return invalid("name", "required")
	}
	if !model.ValidAssetType(a.Type) {
		return invalid("asset_type", "unknown type %q", a.Type)
	}
	if a.CreationDate != "" && !model.ValidDate(a.CreationDate) {
		return invalid("creation_date", "must be a YYYY-MM-DD date")
	}
	if a.Worth.Valid && a.Worth.Decimal.IsNegative() {
		return invalid("worth_on_creation", "must not be negative")
	}
	a.NormalizeDetails()
	return nil
}

// CreateAsset registers a new asset in an existing locker.
func CreateAsset(ctx context.Context, db *sql.DB, a model.Asset) (*model.Asset, error) {
	if err := cleanAsset(&a); err != nil {
		return nil, err
	}
	j, d := jewellery(a), document(a)

	res, err := db.ExecContext(ctx,
		`INSERT INTO assets (locker_id, asset_type, name, worth_on_creation, details, creation_date,
		                     material_type, material_grade, gifting_details, document_type)
		 SELECT id, ?, ?, ?, ?, ?, ?, ?, ?, ? FROM lockers WHERE id = ?`,
		a.Type, a.Name, a.Worth, nullString(a.Details), nullString(a.CreationDate),
		nullString(j.MaterialType), nullString(j.MaterialGrade), nullString(j.GiftingDetails),
		nullString(d.DocumentType), a.LockerID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating asset: %w", err)
	}
	if err := rowsAffected(res, "locker", a.LockerID); err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting asset id: %w", err)
	}

	return GetAsset(ctx, db, id)
}

// GetAsset returns an asset with its derived status, or nil if there is none.
func GetAsset(ctx context.Context, db *sql.DB, id int64) (*model.Asset, error) {
	var asset *model.Asset
	err := readTx(ctx, db, func(tx *sql.Tx) error {
		a, err := getAsset(ctx, tx, id)
		if err != nil || a == nil {
			return err
		}
		a.Status, err = assetStatus(ctx, tx, id)
		asset = a
		return err
	})
	if err != nil {
		return nil, err
	}
	return asset, nil
}

func getAsset(ctx context.Context, q querier, id int64) (*model.Asset, error) {
	a, err := scanAsset(q.QueryRowContext(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting asset: %w", err)
	}
	return &a, nil
}

// GetAssetStatus derives an asset's custody status from its transactions.
func GetAssetStatus(ctx context.Context, db *sql.DB, id int64) (model.AssetStatus, error) {
	var status model.AssetStatus
	err := readTx(ctx, db, func(tx *sql.Tx) error {
		if err := assetExists(ctx, tx, id); err != nil {
			return err
		}
		var err error
		status, err = assetStatus(ctx, tx, id)
		return err
	})
	return status, err
}

func assetStatus(ctx context.Context, q querier, id int64) (model.AssetStatus, error) {
	txs, err := assetTransactions(ctx, q, id)
	if err != nil {
		return "", err
	}
	return ledger.DeriveStatus(txs), nil
}

// ListAssetsByLocker returns a locker's assets with their derived status.
func ListAssetsByLocker(ctx context.Context, db *sql.DB, lockerID int64) ([]model.Asset, error) {
	var assets []model.Asset
	err := readTx(ctx, db, func(tx *sql.Tx) error {
		if err := lockerExists(ctx, tx, lockerID); err != nil {
			return err
		}

		var err error
		assets, err = lockerAssets(ctx, tx, lockerID)
		if err != nil {
			return err
		}
		txs, err := lockerTransactions(ctx, tx, lockerID, model.TransactionFilter{})
		if err != nil {
			return err
		}
		ledger.AttachStatus(assets, txs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return assets, nil
}

func lockerAssets(ctx context.Context, q querier, lockerID int64) ([]model.Asset, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE locker_id = ? ORDER BY name, id`, lockerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing assets: %w", err)
	}
	defer rows.Close()

	var assets []model.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning asset: %w", err)
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

func allAssets(ctx context.Context, q querier) ([]model.Asset, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+assetColumns+` FROM assets ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("listing assets: %w", err)
	}
	defer rows.Close()

	var assets []model.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning asset: %w", err)
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

// UpdateAsset applies patch to an asset and records the change in its edit
// log, both in one database transaction. It returns the asset as it was
// before and after the update. When the patch changes nothing, no edit log
// entry is written and both snapshots are equal.
func UpdateAsset(ctx context.Context, db *sql.DB, id int64, editor string, patch model.AssetPatch) (old, updated *model.Asset, err error) {
	editor = strings.TrimSpace(editor)
	if editor == "" {
		return nil, nil, invalid("edited_by", "required")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Take the write lock before reading so the old snapshot is the one we
	// overwrite.
	res, err := tx.ExecContext(ctx, `UPDATE assets SET id = id WHERE id = ?`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("locking asset: %w", err)
	}
	if err := rowsAffected(res, "asset", id); err != nil {
		return nil, nil, err
	}

	old, err = getAsset(ctx, tx, id)
	if err != nil {
		return nil, nil, err
	}
	if old == nil {
		return nil, nil, notFound("asset", id)
	}
	if old.Status, err = assetStatus(ctx, tx, id); err != nil {
		return nil, nil, err
	}

	next := patch.Apply(*old)
	if err := cleanAsset(&next); err != nil {
		return nil, nil, err
	}

	change := audit.Diff(*old, next, assetFields, nil)
	if change.Empty() {
		return old, &next, nil
	}

	j, d := jewellery(next), document(next)
	_, err = tx.ExecContext(ctx,
		`UPDATE assets SET asset_type = ?, name = ?, worth_on_creation = ?, details = ?, creation_date = ?,
		                   material_type = ?, material_grade = ?, gifting_details = ?, document_type = ?,
		                   updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		next.Type, next.Name, next.Worth, nullString(next.Details), nullString(next.CreationDate),
		nullString(j.MaterialType), nullString(j.MaterialGrade), nullString(j.GiftingDetails),
		nullString(d.DocumentType), id,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("updating asset: %w", err)
	}

	if _, err := insertEdit(ctx, tx, id, editor, change); err != nil {
		return nil, nil, err
	}

	updated, err = getAsset(ctx, tx, id)
	if err != nil {
		return nil, nil, err
	}
	updated.Status = old.Status

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("committing asset update: %w", err)
	}
	return old, updated, nil
}

// DeleteAsset removes an asset. Its transactions and edit log entries go
// with it.
func DeleteAsset(ctx context.Context, db *sql.DB, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM assets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting asset: %w", err)
	}
	return rowsAffected(res, "asset", id)
}

func assetExists(ctx context.Context, q querier, id int64) error {
	ok, err := exists(ctx, q, `SELECT 1 FROM assets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("checking asset: %w", err)
	}
	if !ok {
		return notFound("asset", id)
	}
	return nil
}
