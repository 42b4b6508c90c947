package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/erazemk/sef/internal/audit"
	"github.com/erazemk/sef/internal/model"
)

// RecordEdit compares two versions of an asset and appends one edit log
// entry holding the old and new values of the fields that differ. It writes
// nothing and returns nil when the versions are equal.
func RecordEdit(ctx context.Context, db *sql.DB, assetID int64, editor string, old, updated model.Asset) (*model.EditLogEntry, error) {
	editor = strings.TrimSpace(editor)
	if editor == "" {
		return nil, invalid("edited_by", "required")
	}

	change := audit.Diff(old, updated, assetFields, nil)
	if change.Empty() {
		return nil, nil
	}
	return insertEdit(ctx, db, assetID, editor, change)
}

func insertEdit(ctx context.Context, q querier, assetID int64, editor string, change audit.Change) (*model.EditLogEntry, error) {
	fields, err := json.Marshal(change.Fields)
	if err != nil {
		return nil, fmt.Errorf("encoding edited fields: %w", err)
	}
	oldValues, err := json.Marshal(change.Old)
	if err != nil {
		return nil, fmt.Errorf("encoding old values: %w", err)
	}
	newValues, err := json.Marshal(change.New)
	if err != nil {
		return nil, fmt.Errorf("encoding new values: %w", err)
	}

	res, err := q.ExecContext(ctx,
		`INSERT INTO asset_edit_log (asset_id, edited_at, edited_by, edited_fields, old_values, new_values)
		 SELECT a.id,
		        MAX(?, COALESCE((SELECT MAX(edited_at) FROM asset_edit_log WHERE asset_id = a.id), 0) + 1),
		        ?, ?, ?, ?
		 FROM assets a WHERE a.id = ?`,
		time.Now().UnixNano(), editor, string(fields), string(oldValues), string(newValues), assetID,
	)
	if err != nil {
		return nil, fmt.Errorf("recording edit: %w", err)
	}
	if err := rowsAffected(res, "asset", assetID); err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting edit log id: %w", err)
	}

	e, err := scanEdit(q.QueryRowContext(ctx, editSelect+` WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("reading edit log entry: %w", err)
	}
	return &e, nil
}

const editSelect = `SELECT id, asset_id, edited_at, edited_by, edited_fields, old_values, new_values
	FROM asset_edit_log`

func scanEdit(s scanner) (model.EditLogEntry, error) {
	var e model.EditLogEntry
	var editedAt int64
	var fields, oldValues, newValues string
	if err := s.Scan(&e.ID, &e.AssetID, &editedAt, &e.EditedBy, &fields, &oldValues, &newValues); err != nil {
		return e, err
	}
	e.EditedAt = nanos(editedAt)

	if err := json.Unmarshal([]byte(fields), &e.EditedFields); err != nil {
		return e, fmt.Errorf("decoding edited fields: %w", err)
	}
	var err error
	if e.OldValues, err = decodeValues(oldValues); err != nil {
		return e, err
	}
	if e.NewValues, err = decodeValues(newValues); err != nil {
		return e, err
	}
	return e, nil
}

// decodeValues keeps numbers as json.Number so stored decimals come back
// exactly as written.
func decodeValues(s string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	values := map[string]any{}
	if err := dec.Decode(&values); err != nil {
		return nil, fmt.Errorf("decoding edit values: %w", err)
	}
	return values, nil
}

// ListEditHistory returns an asset's edit log oldest first.
func ListEditHistory(ctx context.Context, db *sql.DB, assetID int64) ([]model.EditLogEntry, error) {
	var entries []model.EditLogEntry
	err := readTx(ctx, db, func(tx *sql.Tx) error {
		if err := assetExists(ctx, tx, assetID); err != nil {
			return err
		}

		rows, err := tx.QueryContext(ctx,
			editSelect+` WHERE asset_id = ? ORDER BY edited_at, id`, assetID,
		)
		if err != nil {
			return fmt.Errorf("listing edit history: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			e, err := scanEdit(rows)
			if err != nil {
				return fmt.Errorf("scanning edit log entry: %w", err)
			}
			entries = append(entries, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
