package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/erazemk/sef/internal/model"
)

func mustLocker(t *testing.T, database *sql.DB, name string) *model.Locker {
	t.Helper()
	l, err := CreateLocker(context.Background(), database, name, "Bank", "Main St 1")
	if err != nil {
		t.Fatalf("CreateLocker: %v", err)
	}
	return l
}

func mustAsset(t *testing.T, database *sql.DB, lockerID int64, name, assetType string) *model.Asset {
	t.Helper()
	a, err := CreateAsset(context.Background(), database, model.Asset{
		LockerID: lockerID,
		Name:     name,
		Type:     assetType,
	})
	if err != nil {
		t.Fatalf("CreateAsset: %v", err)
	}
	return a
}

func mustAppend(t *testing.T, database *sql.DB, assetID int64, kind model.TransactionKind) *model.Transaction {
	t.Helper()
	tx, err := AppendTransaction(context.Background(), database, model.NewTransaction{
		AssetID:         assetID,
		Kind:            string(kind),
		TransactionDate: "2024-05-01",
	})
	if err != nil {
		t.Fatalf("AppendTransaction: %v", err)
	}
	return tx
}
