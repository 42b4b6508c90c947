package ledger

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/erazemk/sef/internal/model"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func tx(id, assetID int64, kind model.TransactionKind, at int) model.Transaction {
	return model.Transaction{
		ID:              id,
		AssetID:         assetID,
		LockerID:        5,
		Kind:            kind,
		TransactionDate: "2024-05-01",
		CreatedAt:       t0.Add(time.Duration(at) * time.Second),
	}
}

func TestDeriveStatusNoTransactions(t *testing.T) {
	if got := DeriveStatus(nil); got != model.StatusInLocker {
		t.Errorf("expected IN_LOCKER for empty history, got %q", got)
	}
}

func TestDeriveStatusLastEventWins(t *testing.T) {
	tests := []struct {
		name string
		txs  []model.Transaction
		want model.AssetStatus
	}{
		{
			name: "deposit withdraw deposit",
			txs: []model.Transaction{
				tx(1, 1, model.KindDeposit, 1),
				tx(2, 1, model.KindWithdraw, 2),
				tx(3, 1, model.KindDeposit, 3),
			},
			want: model.StatusInLocker,
		},
		{
			name: "withdrawn",
			txs: []model.Transaction{
				tx(1, 1, model.KindDeposit, 1),
				tx(2, 1, model.KindWithdraw, 2),
			},
			want: model.StatusWithdrawn,
		},
		{
			name: "removed is not terminal",
			txs: []model.Transaction{
				tx(1, 1, model.KindPermanentlyRemove, 1),
				tx(2, 1, model.KindDeposit, 2),
			},
			want: model.StatusInLocker,
		},
		{
			name: "permanently removed",
			txs: []model.Transaction{
				tx(1, 1, model.KindDeposit, 1),
				tx(2, 1, model.KindPermanentlyRemove, 2),
			},
			want: model.StatusPermanentlyRemoved,
		},
		{
			name: "input order ignored",
			txs: []model.Transaction{
				tx(3, 1, model.KindWithdraw, 3),
				tx(1, 1, model.KindDeposit, 1),
				tx(2, 1, model.KindDeposit, 2),
			},
			want: model.StatusWithdrawn,
		},
		{
			name: "timestamp tie broken by id",
			txs: []model.Transaction{
				tx(7, 1, model.KindWithdraw, 1),
				tx(6, 1, model.KindDeposit, 1),
			},
			want: model.StatusWithdrawn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveStatus(tt.txs); got != tt.want {
				t.Errorf("DeriveStatus = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDeriveStatusAfterDeletes(t *testing.T) {
	history := []model.Transaction{
		tx(1, 1, model.KindDeposit, 1),
		tx(2, 1, model.KindWithdraw, 2),
		tx(3, 1, model.KindDeposit, 3),
	}

	withoutWithdraw := []model.Transaction{history[0], history[2]}
	if got := DeriveStatus(withoutWithdraw); got != model.StatusInLocker {
		t.Errorf("after removing WITHDRAW: got %q, want IN_LOCKER", got)
	}

	withoutLastDeposit := []model.Transaction{history[0], history[1]}
	if got := DeriveStatus(withoutLastDeposit); got != model.StatusWithdrawn {
		t.Errorf("after removing last DEPOSIT: got %q, want WITHDRAWN", got)
	}
}

// The status always equals the kind of the transaction with the greatest
// system timestamp, whatever happened to the rest of the history.
func TestDeriveStatusMatchesLatestKind(t *testing.T) {
	kinds := []model.TransactionKind{model.KindDeposit, model.KindWithdraw, model.KindPermanentlyRemove}
	rng := rand.New(rand.NewPCG(1, 2))

	for round := 0; round < 200; round++ {
		var history []model.Transaction
		n := rng.IntN(12)
		for i := 0; i < n; i++ {
			history = append(history, tx(int64(i+1), 1, kinds[rng.IntN(len(kinds))], i))
		}

		// Edit non-identity fields of a random entry.
		if len(history) > 0 {
			i := rng.IntN(len(history))
			history[i].Kind = kinds[rng.IntN(len(kinds))]
			history[i].Reason = "edited"
		}
		// Delete a random entry that is not the latest.
		if len(history) > 1 {
			i := rng.IntN(len(history) - 1)
			history = append(history[:i], history[i+1:]...)
		}
		rng.Shuffle(len(history), func(i, j int) { history[i], history[j] = history[j], history[i] })

		want := model.StatusInLocker
		var maxAt time.Time
		for _, h := range history {
			if h.CreatedAt.After(maxAt) || maxAt.IsZero() {
				maxAt = h.CreatedAt
				want = h.Kind.Status()
			}
		}

		first := DeriveStatus(history)
		if first != want {
			t.Fatalf("round %d: DeriveStatus = %q, want %q", round, first, want)
		}
		if second := DeriveStatus(history); second != first {
			t.Fatalf("round %d: derivation not idempotent: %q then %q", round, first, second)
		}
	}
}

func TestComputeTotalsSingleAsset(t *testing.T) {
	assets := []model.Asset{{ID: 1, LockerID: 5, Name: "A", Type: model.AssetTypeMisc}}
	txs := []model.Transaction{
		tx(1, 1, model.KindDeposit, 1),
		tx(2, 1, model.KindWithdraw, 2),
		tx(3, 1, model.KindDeposit, 3),
	}

	got := ComputeTotals(assets, txs)
	want := model.LockerTotals{TotalDeposited: 1, CurrentlyInLocker: 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("totals mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeTotalsExcludesAssetsWithoutHistory(t *testing.T) {
	assets := []model.Asset{
		{ID: 1, Name: "untouched"},
		{ID: 2, Name: "withdrawn"},
		{ID: 3, Name: "removed"},
		{ID: 4, Name: "present"},
	}
	txs := []model.Transaction{
		tx(1, 2, model.KindDeposit, 1),
		tx(2, 2, model.KindWithdraw, 2),
		tx(3, 3, model.KindDeposit, 3),
		tx(4, 3, model.KindPermanentlyRemove, 4),
		tx(5, 4, model.KindDeposit, 5),
		tx(6, 4, model.KindDeposit, 6),
		// Belongs to an asset outside the list.
		tx(7, 99, model.KindDeposit, 7),
	}

	got := ComputeTotals(assets, txs)
	want := model.LockerTotals{TotalDeposited: 3, CurrentlyInLocker: 1, Withdrawn: 1, PermanentlyRemoved: 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("totals mismatch (-want +got):\n%s", diff)
	}
	if got.TotalDeposited != got.CurrentlyInLocker+got.Withdrawn+got.PermanentlyRemoved {
		t.Errorf("totals do not add up: %+v", got)
	}
}

func TestAttachStatus(t *testing.T) {
	assets := []model.Asset{{ID: 1}, {ID: 2}}
	AttachStatus(assets, []model.Transaction{tx(1, 2, model.KindWithdraw, 1)})

	if assets[0].Status != model.StatusInLocker {
		t.Errorf("asset 1: got %q", assets[0].Status)
	}
	if assets[1].Status != model.StatusWithdrawn {
		t.Errorf("asset 2: got %q", assets[1].Status)
	}
}

func TestBuildDashboardRecentLimitAndOrder(t *testing.T) {
	assets := []model.Asset{
		{ID: 1, Name: "Ring", Type: model.AssetTypeJewellery},
		{ID: 2, Name: "Deed", Type: model.AssetTypeDocument},
	}
	var txs []model.Transaction
	for i := 1; i <= 15; i++ {
		assetID := int64(1 + i%2)
		txs = append(txs, tx(int64(i), assetID, model.KindDeposit, i))
	}
	// Orphaned history: the asset is gone from the registry.
	txs = append(txs, tx(16, 3, model.KindWithdraw, 16))

	d := BuildDashboard(Snapshot{LockerID: 5, Assets: assets, Transactions: txs}, 0)

	if len(d.RecentTransactions) != DefaultRecentLimit {
		t.Fatalf("expected %d recent transactions, got %d", DefaultRecentLimit, len(d.RecentTransactions))
	}
	for i := 1; i < len(d.RecentTransactions); i++ {
		if !d.RecentTransactions[i-1].After(d.RecentTransactions[i]) {
			t.Fatalf("recent transactions not newest first at %d", i)
		}
	}

	newest := d.RecentTransactions[0]
	if newest.ID != 16 || newest.AssetName != model.UnknownAssetName || newest.AssetType != model.UnknownAssetType {
		t.Errorf("expected orphan labelled unknown, got %+v", newest)
	}
	for _, r := range d.RecentTransactions[1:] {
		if r.AssetName == "" || r.AssetName == model.UnknownAssetName {
			t.Errorf("transaction %d not joined: %+v", r.ID, r)
		}
	}

	if d.Totals.TotalDeposited != 2 || d.Totals.CurrentlyInLocker != 2 {
		t.Errorf("unexpected totals %+v", d.Totals)
	}
}

func TestRecentTieBrokenByID(t *testing.T) {
	txs := []model.Transaction{
		tx(1, 1, model.KindDeposit, 1),
		tx(2, 1, model.KindWithdraw, 1),
	}
	got := Recent(txs, nil, 10)
	if got[0].ID != 2 || got[1].ID != 1 {
		t.Errorf("expected ids [2 1], got [%d %d]", got[0].ID, got[1].ID)
	}
	// Input must not be reordered or annotated.
	if txs[0].ID != 1 || txs[0].AssetName != "" {
		t.Errorf("input slice was modified: %+v", txs[0])
	}
}
