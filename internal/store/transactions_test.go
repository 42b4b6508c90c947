package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/erazemk/sef/internal/db"
	"github.com/erazemk/sef/internal/model"
)

func TestAppendTransaction(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	l := mustLocker(t, database, "Vault")
	a := mustAsset(t, database, l.ID, "Ring", model.AssetTypeJewellery)

	tx, err := AppendTransaction(ctx, database, model.NewTransaction{
		AssetID:           a.ID,
		Kind:              "permanent_remove",
		Reason:            "sold",
		ResponsiblePerson: "Ana",
		TransactionDate:   "2024-03-15",
	})
	if err != nil {
		t.Fatalf("AppendTransaction: %v", err)
	}

	if tx.Kind != model.KindPermanentlyRemove {
		t.Errorf("expected legacy kind to be normalised, got %q", tx.Kind)
	}
	if tx.LockerID != l.ID {
		t.Errorf("expected locker %d, got %d", l.ID, tx.LockerID)
	}
	if tx.AssetName != "Ring" || tx.AssetType != model.AssetTypeJewellery {
		t.Errorf("expected joined asset fields, got %q %q", tx.AssetName, tx.AssetType)
	}
	if tx.Reason != "sold" || tx.ResponsiblePerson != "Ana" || tx.TransactionDate != "2024-03-15" {
		t.Errorf("unexpected transaction %+v", tx)
	}
	if tx.CreatedAt.IsZero() {
		t.Error("expected system timestamp to be set")
	}
}

func TestAppendTransactionRejects(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	l := mustLocker(t, database, "Vault")
	other := mustLocker(t, database, "Other")
	a := mustAsset(t, database, l.ID, "Ring", model.AssetTypeJewellery)

	tests := []struct {
		name     string
		nt       model.NewTransaction
		field    string
		notFound bool
	}{
		{"missing kind", model.NewTransaction{AssetID: a.ID, TransactionDate: "2024-01-01"}, "transaction_type", false},
		{"unknown kind", model.NewTransaction{AssetID: a.ID, Kind: "LEND", TransactionDate: "2024-01-01"}, "transaction_type", false},
		{"missing date", model.NewTransaction{AssetID: a.ID, Kind: "DEPOSIT"}, "transaction_date", false},
		{"bad date", model.NewTransaction{AssetID: a.ID, Kind: "DEPOSIT", TransactionDate: "2024-13-01"}, "transaction_date", false},
		{"missing asset", model.NewTransaction{AssetID: 999, Kind: "DEPOSIT", TransactionDate: "2024-01-01"}, "", true},
		{"asset in other locker", model.NewTransaction{AssetID: a.ID, LockerID: other.ID, Kind: "DEPOSIT", TransactionDate: "2024-01-01"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AppendTransaction(ctx, database, tt.nt)
			if tt.notFound {
				if !errors.Is(err, ErrNotFound) {
					t.Errorf("expected ErrNotFound, got %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Errorf("expected validation error on %s, got %v", tt.field, err)
			}
		})
	}

	txs, _ := ListAssetTransactions(ctx, database, a.ID)
	if len(txs) != 0 {
		t.Errorf("expected rejected appends to write nothing, found %d", len(txs))
	}
}

func TestStatusFollowsLedger(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	l := mustLocker(t, database, "Vault")
	a := mustAsset(t, database, l.ID, "Deed", model.AssetTypeDocument)

	status := func() model.AssetStatus {
		t.Helper()
		s, err := GetAssetStatus(ctx, database, a.ID)
		if err != nil {
			t.Fatalf("GetAssetStatus: %v", err)
		}
		return s
	}

	if got := status(); got != model.StatusInLocker {
		t.Errorf("no transactions: expected IN_LOCKER, got %q", got)
	}

	d1 := mustAppend(t, database, a.ID, model.KindDeposit)
	w := mustAppend(t, database, a.ID, model.KindWithdraw)
	d2 := mustAppend(t, database, a.ID, model.KindDeposit)
	if got := status(); got != model.StatusInLocker {
		t.Errorf("after D,W,D: expected IN_LOCKER, got %q", got)
	}

	if err := DeleteTransaction(ctx, database, d2.ID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if got := status(); got != model.StatusWithdrawn {
		t.Errorf("after removing last deposit: expected WITHDRAWN, got %q", got)
	}

	// Editing the kind of the latest transaction changes the status; its
	// place in the ledger does not move.
	updated, err := UpdateTransaction(ctx, database, w.ID, model.TransactionPatch{Kind: ptr("PERMANENTLY_REMOVE")})
	if err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	if !updated.CreatedAt.Equal(w.CreatedAt) || updated.AssetID != w.AssetID {
		t.Errorf("update moved the transaction: before %+v, after %+v", w, updated)
	}
	if got := status(); got != model.StatusPermanentlyRemoved {
		t.Errorf("after editing kind: expected PERMANENTLY_REMOVED, got %q", got)
	}

	if err := DeleteTransaction(ctx, database, w.ID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if got := status(); got != model.StatusInLocker {
		t.Errorf("after removing withdrawal: expected IN_LOCKER, got %q", got)
	}

	txs, err := ListAssetTransactions(ctx, database, a.ID)
	if err != nil {
		t.Fatalf("ListAssetTransactions: %v", err)
	}
	if len(txs) != 1 || txs[0].ID != d1.ID {
		t.Errorf("expected only the first deposit to remain, got %+v", txs)
	}

	if _, err := GetAssetStatus(ctx, database, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing asset, got %v", err)
	}
}

func TestUpdateTransactionFields(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	l := mustLocker(t, database, "Vault")
	a := mustAsset(t, database, l.ID, "Ring", model.AssetTypeJewellery)
	tx := mustAppend(t, database, a.ID, model.KindDeposit)

	updated, err := UpdateTransaction(ctx, database, tx.ID, model.TransactionPatch{
		Reason:          ptr("birthday"),
		TransactionDate: ptr("2024-06-01"),
	})
	if err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	if updated.Reason != "birthday" || updated.TransactionDate != "2024-06-01" || updated.Kind != model.KindDeposit {
		t.Errorf("unexpected transaction after update: %+v", updated)
	}

	var verr *ValidationError
	if _, err := UpdateTransaction(ctx, database, tx.ID, model.TransactionPatch{TransactionDate: ptr("")}); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for empty date, got %v", err)
	}
	if _, err := UpdateTransaction(ctx, database, tx.ID, model.TransactionPatch{Kind: ptr("LEND")}); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for unknown kind, got %v", err)
	}
	if _, err := UpdateTransaction(ctx, database, 999, model.TransactionPatch{Reason: ptr("x")}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := DeleteTransaction(ctx, database, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListAssetTransactionsAscending(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	l := mustLocker(t, database, "Vault")
	a := mustAsset(t, database, l.ID, "Ring", model.AssetTypeJewellery)

	for i := 0; i < 5; i++ {
		mustAppend(t, database, a.ID, model.KindDeposit)
	}

	txs, err := ListAssetTransactions(ctx, database, a.ID)
	if err != nil {
		t.Fatalf("ListAssetTransactions: %v", err)
	}
	for i := 1; i < len(txs); i++ {
		if !txs[i].CreatedAt.After(txs[i-1].CreatedAt) {
			t.Errorf("transactions not strictly ascending at %d", i)
		}
	}

	if _, err := ListAssetTransactions(ctx, database, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestConcurrentAppendsGetDistinctTimestamps(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	l := mustLocker(t, database, "Vault")
	a := mustAsset(t, database, l.ID, "Ring", model.AssetTypeJewellery)

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := AppendTransaction(ctx, database, model.NewTransaction{
				AssetID:         a.ID,
				Kind:            "DEPOSIT",
				TransactionDate: "2024-01-01",
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent append: %v", err)
		}
	}

	txs, err := ListAssetTransactions(ctx, database, a.ID)
	if err != nil {
		t.Fatalf("ListAssetTransactions: %v", err)
	}
	if len(txs) != n {
		t.Fatalf("expected %d transactions, got %d", n, len(txs))
	}
	for i := 1; i < len(txs); i++ {
		if !txs[i].CreatedAt.After(txs[i-1].CreatedAt) {
			t.Errorf("timestamps not strictly increasing at %d: %v then %v", i, txs[i-1].CreatedAt, txs[i].CreatedAt)
		}
	}
}

func TestListLockerTransactionsFilter(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	l := mustLocker(t, database, "Vault")
	other := mustLocker(t, database, "Other")

	ring := mustAsset(t, database, l.ID, "Ring", model.AssetTypeJewellery)
	deed := mustAsset(t, database, l.ID, "Deed", model.AssetTypeDocument)
	coin := mustAsset(t, database, other.ID, "Coin", model.AssetTypeMisc)

	r1 := mustAppend(t, database, ring.ID, model.KindDeposit)
	d1 := mustAppend(t, database, deed.ID, model.KindDeposit)
	r2 := mustAppend(t, database, ring.ID, model.KindWithdraw)
	mustAppend(t, database, coin.ID, model.KindDeposit)

	ids := func(txs []model.Transaction) []int64 {
		var out []int64
		for _, tx := range txs {
			out = append(out, tx.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		filter model.TransactionFilter
		want   []int64
	}{
		{"neither", model.TransactionFilter{}, []int64{r2.ID, d1.ID, r1.ID}},
		{"asset id", model.TransactionFilter{AssetID: ring.ID}, []int64{r2.ID, r1.ID}},
		{"asset type", model.TransactionFilter{AssetType: "document"}, []int64{d1.ID}},
		{"both, asset id wins", model.TransactionFilter{AssetID: ring.ID, AssetType: model.AssetTypeDocument}, []int64{r2.ID, r1.ID}},
		{"type with no assets", model.TransactionFilter{AssetType: model.AssetTypeMisc}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs, err := ListLockerTransactions(ctx, database, l.ID, tt.filter)
			if err != nil {
				t.Fatalf("ListLockerTransactions: %v", err)
			}
			got := ids(txs)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("expected %v, got %v", tt.want, got)
				}
			}
		})
	}

	if _, err := ListLockerTransactions(ctx, database, l.ID, model.TransactionFilter{AssetID: coin.ID}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for asset in another locker, got %v", err)
	}
	if _, err := ListLockerTransactions(ctx, database, 999, model.TransactionFilter{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing locker, got %v", err)
	}
	var verr *ValidationError
	if _, err := ListLockerTransactions(ctx, database, l.ID, model.TransactionFilter{AssetType: "CAR"}); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for unknown type, got %v", err)
	}
}
