package testsupport

import (
	"testing"

	"frame/internal/config"
	"frame/internal/localstore"
)

// MustOpenStore opens a localstore.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *localstore.Store {
	t.Helper()

	store, err := localstore.Open(cfg)
	if err != nil {
		t.Fatalf("localstore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
