package testsupport

import (
	"testing"

	"framextract/internal/config"
	"framextract/internal/manifest"
)

// MustOpenManifest opens the manifest store configured in cfg for tests and
// registers cleanup.
func MustOpenManifest(t testing.TB, cfg *config.Config) *manifest.Store {
	t.Helper()

	store, err := manifest.Open(cfg.Manifest.Path)
	if err != nil {
		t.Fatalf("manifest.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
