package store

import (
	"context"
	"testing"
	"time"

	"github.com/erazemk/sef/internal/db"
)

func TestRevocationIsPerToken(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if err := RevokeToken(ctx, database, "a", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}
	// Revoking twice is harmless.
	if err := RevokeToken(ctx, database, "a", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("RevokeToken again: %v", err)
	}

	for jti, want := range map[string]bool{"a": true, "b": false} {
		got, err := IsTokenRevoked(ctx, database, jti)
		if err != nil {
			t.Fatalf("IsTokenRevoked(%q): %v", jti, err)
		}
		if got != want {
			t.Errorf("token %q: expected revoked=%v, got %v", jti, want, got)
		}
	}
}

func TestExpiredRevocationsArePruned(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	// A non-UTC zone must not confuse the comparison.
	zone := time.FixedZone("CEST", 2*60*60)
	if err := RevokeToken(ctx, database, "old", time.Now().Add(-time.Minute).In(zone)); err != nil {
		t.Fatalf("RevokeToken old: %v", err)
	}
	if err := RevokeToken(ctx, database, "live", time.Now().Add(time.Hour).In(zone)); err != nil {
		t.Fatalf("RevokeToken live: %v", err)
	}

	revoked, err := IsTokenRevoked(ctx, database, "old")
	if err != nil {
		t.Fatalf("IsTokenRevoked: %v", err)
	}
	if revoked {
		t.Error("expected the expired entry to be pruned")
	}

	revoked, err = IsTokenRevoked(ctx, database, "live")
	if err != nil {
		t.Fatalf("IsTokenRevoked: %v", err)
	}
	if !revoked {
		t.Error("expected the unexpired entry to survive pruning")
	}

	var n int
	if err := database.QueryRowContext(ctx, `SELECT COUNT(*) FROM revoked_tokens`).Scan(&n); err != nil {
		t.Fatalf("counting: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 stored revocation, got %d", n)
	}
}
