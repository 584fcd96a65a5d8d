package fsstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"model-bundle-service/internal/core/domain"
	"model-bundle-service/internal/core/ports/output"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir())
	require.NoError(t, err)
	return store
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testBundle(name, version string) *domain.Bundle {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.Bundle{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
		Name:      name,
		Version:   version,
		State:     domain.BundleStateActive,
		Labels:    map[string]string{"team": "ml"},
	}
}

func TestStore_SaveAndLoad(t *testing.T) {
	store := newTestStore(t)
	dir := t.TempDir()

	bundle := testBundle("iris-classifier", "20250101120000_ABCDEF")
	artifacts := []ports.PackedArtifact{
		{Slot: "model", Framework: "sklearn", Path: writeFile(t, dir, "model.pkl", "weights")},
	}

	require.NoError(t, store.Save(context.Background(), bundle, artifacts))

	assert.NotEmpty(t, bundle.Path)
	_, err := os.Stat(filepath.Join(bundle.Path, headerName))
	require.NoError(t, err)
	require.Len(t, bundle.Artifacts, 1)
	assert.Equal(t, int64(len("weights")), bundle.Artifacts[0].Size)

	loaded, err := store.Load("iris-classifier", "20250101120000_ABCDEF")
	require.NoError(t, err)
	assert.Equal(t, bundle.ID, loaded.ID)
	assert.Equal(t, bundle.Name, loaded.Name)
	assert.Equal(t, bundle.Version, loaded.Version)
	assert.Equal(t, bundle.Digest, loaded.Digest)
	assert.Equal(t, bundle.Artifacts, loaded.Artifacts)
	assert.Equal(t, "ml", loaded.Labels["team"])
	assert.True(t, bundle.CreatedAt.Equal(loaded.CreatedAt))
}

func TestStore_SaveConflict(t *testing.T) {
	store := newTestStore(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "model.pkl", "weights")

	bundle := testBundle("iris-classifier", "20250101120000_ABCDEF")
	require.NoError(t, store.Save(context.Background(), bundle, []ports.PackedArtifact{
		{Slot: "model", Path: path},
	}))

	dup := testBundle("iris-classifier", "20250101120000_ABCDEF")
	err := store.Save(context.Background(), dup, []ports.PackedArtifact{
		{Slot: "model", Path: path},
	})
	assert.ErrorIs(t, err, domain.ErrBundleExists)
}

func TestStore_BlobDeduplication(t *testing.T) {
	store := newTestStore(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "model.pkl", "same-content")

	b1 := testBundle("a", "1")
	b2 := testBundle("b", "1")
	require.NoError(t, store.Save(context.Background(), b1, []ports.PackedArtifact{{Slot: "model", Path: path}}))
	require.NoError(t, store.Save(context.Background(), b2, []ports.PackedArtifact{{Slot: "model", Path: path}}))

	assert.Equal(t, b1.Artifacts[0].Digest, b2.Artifacts[0].Digest)

	entries, err := os.ReadDir(filepath.Join(store.Root(), blobsDir, "sha256"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStore_Verify(t *testing.T) {
	store := newTestStore(t)
	dir := t.TempDir()

	bundle := testBundle("iris-classifier", "1")
	require.NoError(t, store.Save(context.Background(), bundle, []ports.PackedArtifact{
		{Slot: "model", Path: writeFile(t, dir, "model.pkl", "weights")},
	}))

	require.NoError(t, store.Verify(bundle))

	// Corrupt the blob in place.
	blobPath, err := store.blobPath(bundle.Artifacts[0].Digest)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(blobPath, []byte("tampered"), 0o644))

	err = store.Verify(bundle)
	assert.ErrorIs(t, err, domain.ErrDigestMismatch)
}

func TestStore_Scan(t *testing.T) {
	store := newTestStore(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "model.pkl", "weights")

	require.NoError(t, store.Save(context.Background(), testBundle("a", "1"), []ports.PackedArtifact{{Slot: "model", Path: path}}))
	require.NoError(t, store.Save(context.Background(), testBundle("a", "2"), []ports.PackedArtifact{{Slot: "model", Path: path}}))
	require.NoError(t, store.Save(context.Background(), testBundle("b", "1"), []ports.PackedArtifact{{Slot: "model", Path: path}}))

	bundles, err := store.Scan()
	require.NoError(t, err)
	assert.Len(t, bundles, 3)
}

func TestStore_Remove(t *testing.T) {
	store := newTestStore(t)
	dir := t.TempDir()

	bundle := testBundle("iris-classifier", "1")
	require.NoError(t, store.Save(context.Background(), bundle, []ports.PackedArtifact{
		{Slot: "model", Path: writeFile(t, dir, "model.pkl", "weights")},
	}))

	require.NoError(t, store.Remove("iris-classifier", "1"))

	_, err := store.Load("iris-classifier", "1")
	assert.ErrorIs(t, err, domain.ErrHeaderNotFound)

	assert.ErrorIs(t, store.Remove("iris-classifier", "1"), domain.ErrHeaderNotFound)
}

func TestStore_RejectsVersionTraversal(t *testing.T) {
	parent := t.TempDir()
	store, err := New(filepath.Join(parent, "store"))
	require.NoError(t, err)

	victim := filepath.Join(parent, "victim")
	require.NoError(t, os.MkdirAll(victim, 0o755))

	err = store.Remove("iris-classifier", "../../../victim")
	assert.Error(t, err)

	// The directory outside the store root is untouched.
	_, err = os.Stat(victim)
	require.NoError(t, err)

	_, err = store.Load("iris-classifier", "../../../victim")
	assert.Error(t, err)

	err = store.Save(context.Background(), testBundle("iris-classifier", "../escape"), nil)
	assert.Error(t, err)
}

func TestStore_RejectsUnsafeVersions(t *testing.T) {
	store := newTestStore(t)

	for _, version := range []string{"..", ".", "a/b", `a\b`, ""} {
		_, err := store.Load("iris-classifier", version)
		assert.Error(t, err, "version %q", version)

		err = store.Remove("iris-classifier", version)
		assert.Error(t, err, "version %q", version)
	}
}

func TestStore_RejectsNameTraversal(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load("../../etc", "v1")
	assert.Error(t, err)

	err = store.Remove("../../etc", "v1")
	assert.Error(t, err)
}

func TestStore_LoadMissing(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Load("nope", "1")
	assert.ErrorIs(t, err, domain.ErrHeaderNotFound)
}

func TestStore_SaveMissingArtifact(t *testing.T) {
	store := newTestStore(t)

	bundle := testBundle("iris-classifier", "1")
	err := store.Save(context.Background(), bundle, []ports.PackedArtifact{
		{Slot: "model", Path: filepath.Join(t.TempDir(), "nope.pkl")},
	})
	assert.Error(t, err)

	// Nothing half-written left behind.
	bundles, scanErr := store.Scan()
	require.NoError(t, scanErr)
	assert.Empty(t, bundles)
}
