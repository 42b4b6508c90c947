package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/sef/internal/model"
)

const lockerColumns = `id, name, location_name, address, created_at, updated_at`

// CreateLocker creates a new locker.
func CreateLocker(ctx context.Context, db *sql.DB, name, locationName, address string) (*model.Locker, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "required")
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO lockers (name, location_name, address) VALUES (?, ?, ?)`,
		name, locationName, address,
	)
	if err != nil {
		return nil, fmt.Errorf("creating locker: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting locker id: %w", err)
	}

	return GetLocker(ctx, db, id)
}

// GetLocker returns a locker by ID, or nil if there is none.
func GetLocker(ctx context.Context, db *sql.DB, id int64) (*model.Locker, error) {
	l := &model.Locker{}
	err := db.QueryRowContext(ctx,
		`SELECT `+lockerColumns+` FROM lockers WHERE id = ?`, id,
	).Scan(&l.ID, &l.Name, &l.LocationName, &l.Address, &l.CreatedAt, &l.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting locker: %w", err)
	}
	return l, nil
}

// ListLockers returns all lockers ordered by name.
func ListLockers(ctx context.Context, db *sql.DB) ([]model.Locker, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+lockerColumns+` FROM lockers ORDER BY name, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing lockers: %w", err)
	}
	defer rows.Close()

	var lockers []model.Locker
	for rows.Next() {
		var l model.Locker
		if err := rows.Scan(&l.ID, &l.Name, &l.LocationName, &l.Address, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning locker: %w", err)
		}
		lockers = append(lockers, l)
	}
	return lockers, rows.Err()
}

// UpdateLocker replaces a locker's descriptive fields.
func UpdateLocker(ctx context.Context, db *sql.DB, id int64, name, locationName, address string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return invalid("name", "required")
	}

	res, err := db.ExecContext(ctx,
		`UPDATE lockers SET name = ?, location_name = ?, address = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		name, locationName, address, id,
	)
	if err != nil {
		return fmt.Errorf("updating locker: %w", err)
	}
	return rowsAffected(res, "locker", id)
}

// DeleteLocker removes a locker together with its assets, their transactions
// and their edit history.
func DeleteLocker(ctx context.Context, db *sql.DB, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM lockers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting locker: %w", err)
	}
	return rowsAffected(res, "locker", id)
}

func lockerExists(ctx context.Context, q querier, id int64) error {
	ok, err := exists(ctx, q, `SELECT 1 FROM lockers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("checking locker: %w", err)
	}
	if !ok {
		return notFound("locker", id)
	}
	return nil
}
