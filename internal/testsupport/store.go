package testsupport

import (
	"context"
	"fmt"
	"testing"

	"darkroom/internal/config"
	"darkroom/internal/ledger"
)

// MustOpenStore opens a ledger.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *ledger.Store {
	t.Helper()

	store, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SeedPhoto registers a photo for tests using the provided store.
func SeedPhoto(t testing.TB, store *ledger.Store, sourceRef string) *ledger.Photo {
	t.Helper()

	photo, _, err := store.Add(context.Background(), sourceRef, "")
	if err != nil {
		t.Fatalf("store.Add: %v", err)
	}
	return photo
}

// SeedPhotos registers count photos with generated refs and returns them.
func SeedPhotos(t testing.TB, store *ledger.Store, count int) []*ledger.Photo {
	t.Helper()

	photos := make([]*ledger.Photo, 0, count)
	for i := 0; i < count; i++ {
		photos = append(photos, SeedPhoto(t, store, fmt.Sprintf("photos/%03d.jpg", i)))
	}
	return photos
}
