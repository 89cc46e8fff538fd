package testsupport

import (
	"context"
	"testing"

	"ufdr/internal/config"
	"ufdr/internal/ledger"
)

// MustOpenLedger opens the run ledger named by cfg and registers cleanup.
func MustOpenLedger(t testing.TB, cfg *config.Config) *ledger.Store {
	t.Helper()

	store, err := ledger.Open(context.Background(), cfg.Ledger.Path)
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
