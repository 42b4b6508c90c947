package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
//
// transactions.created_at and asset_edit_log.edited_at hold Unix nanoseconds
// so ordering by them is exact. Deleting an asset removes its transactions and
// edit log entries; deleting a locker removes its assets.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'manager', 'user')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS lockers (
    id            INTEGER PRIMARY KEY,
    name          TEXT NOT NULL,
    location_name TEXT NOT NULL DEFAULT '',
    address       TEXT NOT NULL DEFAULT '',
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS assets (
    id                INTEGER PRIMARY KEY,
    locker_id         INTEGER NOT NULL REFERENCES lockers(id) ON DELETE CASCADE,
    asset_type        TEXT NOT NULL CHECK (asset_type IN ('JEWELLERY', 'DOCUMENT', 'MISC')),
    name              TEXT NOT NULL,
    worth_on_creation TEXT,
    details           TEXT,
    creation_date     TEXT,
    material_type     TEXT,
    material_grade    TEXT,
    gifting_details   TEXT,
    document_type     TEXT,
    created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_assets_locker ON assets(locker_id);

CREATE TABLE IF NOT EXISTS transactions (
    id                 INTEGER PRIMARY KEY,
    asset_id           INTEGER NOT NULL REFERENCES assets(id) ON DELETE CASCADE,
    locker_id          INTEGER NOT NULL,
    transaction_type   TEXT NOT NULL CHECK (transaction_type IN ('DEPOSIT', 'WITHDRAW', 'PERMANENTLY_REMOVE')),
    reason             TEXT,
    responsible_person TEXT,
    transaction_date   TEXT NOT NULL,
    created_at         INTEGER NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_transactions_asset_created
    ON transactions(asset_id, created_at);
CREATE INDEX IF NOT EXISTS idx_transactions_locker_created
    ON transactions(locker_id, created_at DESC, id DESC);

CREATE TABLE IF NOT EXISTS asset_edit_log (
    id            INTEGER PRIMARY KEY,
    asset_id      INTEGER NOT NULL REFERENCES assets(id) ON DELETE CASCADE,
    edited_at     INTEGER NOT NULL,
    edited_by     TEXT NOT NULL,
    edited_fields TEXT NOT NULL,
    old_values    TEXT NOT NULL,
    new_values    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_asset_edit_log_asset
    ON asset_edit_log(asset_id, edited_at, id);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
